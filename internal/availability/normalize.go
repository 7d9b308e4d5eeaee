package availability

import (
	"time"

	"tg-slots-bot/internal/calendar"
)

// BusySlots обрезает события по рабочим часам и отбрасывает пустые.
//
// Обрезка переносит границу не дальше соседнего дня: события длиннее
// одной ночи не разбиваются по дням.
func BusySlots(events []calendar.Event, s Settings) []TimeSlot {
	busy := make([]TimeSlot, 0, len(events))
	for _, ev := range events {
		if ev.Start.After(ev.End) {
			continue
		}

		start := s.clipStart(ev.Start.In(s.Location))
		end := s.clipEnd(ev.End.In(s.Location))
		if !start.Before(end) {
			continue
		}
		busy = append(busy, TimeSlot{Start: start, End: end})
	}
	return busy
}

func (s Settings) clipStart(t time.Time) time.Time {
	workStart, workEnd := s.workDay(t)
	switch {
	case t.Before(workStart):
		return workStart
	case t.After(workEnd):
		next, _ := s.workDay(t.AddDate(0, 0, 1))
		return next
	}
	return t
}

func (s Settings) clipEnd(t time.Time) time.Time {
	workStart, workEnd := s.workDay(t)
	switch {
	case t.After(workEnd):
		return workEnd
	case t.Before(workStart):
		_, prev := s.workDay(t.AddDate(0, 0, -1))
		return prev
	}
	return t
}
