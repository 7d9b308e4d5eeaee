// Package availability считает свободные слоты: сетка рабочих часов минус
// занятые интервалы из календаря, сгруппированная по дням.
package availability

import (
	"fmt"
	"time"
)

// Settings — неизменяемые параметры расчёта. Передаются в конструктор,
// глобальных констант нет.
type Settings struct {
	Location         *time.Location
	WorkDayStartHour int
	WorkDayEndHour   int
	DaysAhead        int
	SlotDuration     time.Duration
}

// DefaultSettings повторяют исходную конфигурацию бота.
func DefaultSettings() Settings {
	loc, err := time.LoadLocation("Asia/Yekaterinburg")
	if err != nil {
		loc = time.FixedZone("YEKT", 5*60*60)
	}
	return Settings{
		Location:         loc,
		WorkDayStartHour: 9,
		WorkDayEndHour:   23,
		DaysAhead:        7,
		SlotDuration:     time.Hour,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.Location == nil:
		return fmt.Errorf("не задан часовой пояс")
	case s.WorkDayStartHour < 0 || s.WorkDayStartHour > 23:
		return fmt.Errorf("начало рабочего дня вне 0..23: %d", s.WorkDayStartHour)
	case s.WorkDayEndHour <= s.WorkDayStartHour || s.WorkDayEndHour > 24:
		return fmt.Errorf("конец рабочего дня должен быть в (%d..24]: %d", s.WorkDayStartHour, s.WorkDayEndHour)
	case s.DaysAhead < 1:
		return fmt.Errorf("горизонт должен быть не меньше дня: %d", s.DaysAhead)
	case s.SlotDuration <= 0:
		return fmt.Errorf("длительность слота должна быть положительной: %s", s.SlotDuration)
	}
	return nil
}

// workDay возвращает границы рабочего окна для календарной даты t.
func (s Settings) workDay(t time.Time) (start, end time.Time) {
	y, m, d := t.In(s.Location).Date()
	start = time.Date(y, m, d, s.WorkDayStartHour, 0, 0, 0, s.Location)
	end = time.Date(y, m, d, s.WorkDayEndHour, 0, 0, 0, s.Location)
	return start, end
}

// TimeSlot — полуоткрытый интервал [Start, End).
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// Overlaps: касание концами пересечением не считается.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && s.End.After(o.Start)
}

func (s TimeSlot) String() string {
	return s.Start.Format("02.01 15:04") + "-" + s.End.Format("15:04")
}
