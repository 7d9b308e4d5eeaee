package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/apognu/gocal"
)

// icalLayout — формат DATE-TIME из RFC 5545 без зоны.
const icalLayout = "20060102T150405"

// Event — занятый интервал из фида. Кроме UID и времени ничего не нужно.
type Event struct {
	UID   string
	Start time.Time
	End   time.Time
}

// ParseDateTime разбирает значение DTSTART/DTEND.
//
// Принимаются плавающее время (20250101T120000) и время с суффиксом Z
// (20250101T120000Z). Z отбрасывается без пересчёта: цифры трактуются как
// локальное время в loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(value), "Z", "")
	t, err := time.ParseInLocation(icalLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: дата %q: %w", ErrEventMalformed, value, err)
	}
	return t, nil
}

// parseEvent достаёт из события gocal два типизированных поля. Время берётся
// из исходных строк DTSTART/DTEND; вместо DTEND допускается DURATION.
func parseEvent(e gocal.Event, loc *time.Location) (Event, error) {
	ev := Event{UID: e.Uid}

	if e.RawStart.Value == "" {
		return Event{}, fmt.Errorf("%w: нет DTSTART", ErrEventMalformed)
	}

	var err error
	if ev.Start, err = ParseDateTime(e.RawStart.Value, loc); err != nil {
		return Event{}, err
	}

	switch {
	case e.RawEnd.Value != "":
		if ev.End, err = ParseDateTime(e.RawEnd.Value, loc); err != nil {
			return Event{}, err
		}
	case e.Duration != nil:
		ev.End = ev.Start.Add(*e.Duration)
	default:
		return Event{}, fmt.Errorf("%w: нет DTEND", ErrEventMalformed)
	}

	if ev.Start.After(ev.End) {
		return Event{}, fmt.Errorf("%w: начало %s позже конца %s", ErrEventMalformed,
			ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339))
	}
	return ev, nil
}
