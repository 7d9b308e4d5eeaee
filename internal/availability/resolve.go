package availability

// FreeSlots оставляет кандидатов внутри рабочих часов, не пересекающихся
// ни с одним занятым интервалом. Занятых мало, поэтому перебор в лоб.
func FreeSlots(candidates, busy []TimeSlot, s Settings) []TimeSlot {
	var free []TimeSlot
	for _, slot := range candidates {
		if !s.withinWorkHours(slot) {
			continue
		}
		if overlapsAny(slot, busy) {
			continue
		}
		free = append(free, slot)
	}
	return free
}

func overlapsAny(slot TimeSlot, busy []TimeSlot) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

func (s Settings) withinWorkHours(slot TimeSlot) bool {
	start, end := slot.Start.In(s.Location), slot.End.In(s.Location)
	return start.Hour() >= s.WorkDayStartHour && end.Hour() <= s.WorkDayEndHour
}
