package calendar

import "errors"

var (
	// ErrFeedUnavailable означает, что фид не удалось скачать: сеть, таймаут или не-2xx ответ.
	ErrFeedUnavailable = errors.New("календарь недоступен")

	// ErrFeedMalformed означает, что тело ответа не является iCalendar.
	ErrFeedMalformed = errors.New("некорректный формат календаря")

	// ErrEventMalformed относится к одному событию; такое событие пропускается.
	ErrEventMalformed = errors.New("некорректное событие")
)
