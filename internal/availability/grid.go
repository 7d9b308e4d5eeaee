package availability

import "time"

// CandidateSlots строит сетку слотов на DaysAhead дней, начиная с сегодня.
// Первый слот дня — не раньше начала рабочего дня и не раньше ближайшего
// полного часа после now. Слот, вылезающий за конец дня, не добавляется.
// Для настроек, не прошедших Validate, возвращает nil.
func CandidateSlots(now time.Time, s Settings) []TimeSlot {
	if s.Validate() != nil {
		return nil
	}
	now = now.In(s.Location)
	first := ceilHour(now)

	var slots []TimeSlot
	for i := 0; i < s.DaysAhead; i++ {
		dayStart, dayEnd := s.workDay(now.AddDate(0, 0, i))

		start := dayStart
		if first.After(start) {
			start = first
		}

		for {
			end := start.Add(s.SlotDuration)
			if end.After(dayEnd) {
				break
			}
			slots = append(slots, TimeSlot{Start: start, End: end})
			start = end
		}
	}
	return slots
}

// ceilHour округляет вверх до полного часа по местным часам; ровный час не меняется.
func ceilHour(t time.Time) time.Time {
	y, m, d := t.Date()
	h := time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	if h.Before(t) {
		h = h.Add(time.Hour)
	}
	return h
}
