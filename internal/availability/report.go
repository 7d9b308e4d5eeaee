package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Range — непрерывный свободный промежуток после склейки соседних слотов.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) String() string {
	return r.Start.Format("15:04") + "-" + r.End.Format("15:04")
}

// Day — свободные промежутки одной календарной даты.
type Day struct {
	Date   time.Time
	Ranges []Range
}

// Header — «Понедельник, 15.07.2024».
func (d Day) Header() string {
	return russianWeekday(d.Date.Weekday()) + ", " + d.Date.Format("02.01.2006")
}

// Report — свободные слоты по дням, от ранних к поздним.
type Report struct {
	DaysAhead int
	Days      []Day
}

// BuildReport группирует свободные слоты по датам и склеивает смежные.
func BuildReport(free []TimeSlot, s Settings) Report {
	byDate := make(map[string][]TimeSlot)
	for _, slot := range free {
		key := slot.Start.In(s.Location).Format("2006-01-02")
		byDate[key] = append(byDate[key], slot)
	}

	report := Report{DaysAhead: s.DaysAhead, Days: make([]Day, 0, len(byDate))}
	for _, slots := range byDate {
		y, m, d := slots[0].Start.In(s.Location).Date()
		report.Days = append(report.Days, Day{
			Date:   time.Date(y, m, d, 0, 0, 0, 0, s.Location),
			Ranges: mergeSlots(slots, s.Location),
		})
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date.Before(report.Days[j].Date)
	})
	return report
}

// mergeSlots: 09:00-10:00 и 10:00-11:00 превращаются в 09:00-11:00.
func mergeSlots(slots []TimeSlot, loc *time.Location) []Range {
	if len(slots) == 0 {
		return nil
	}

	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	cur := Range{Start: sorted[0].Start.In(loc), End: sorted[0].End.In(loc)}
	var ranges []Range
	for _, slot := range sorted[1:] {
		if slot.Start.Equal(cur.End) {
			cur.End = slot.End.In(loc)
			continue
		}
		ranges = append(ranges, cur)
		cur = Range{Start: slot.Start.In(loc), End: slot.End.In(loc)}
	}
	return append(ranges, cur)
}

// Empty — свободных слотов нет ни в одном дне горизонта.
func (r Report) Empty() bool {
	return len(r.Days) == 0
}

// RangeCount — число склеенных промежутков во всём отчёте.
func (r Report) RangeCount() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Ranges)
	}
	return n
}

// String отрисовывает отчёт: заголовок и по блоку на день через пустую строку.
func (r Report) String() string {
	if r.Empty() {
		return fmt.Sprintf("Нет свободных слотов в ближайшие %d дней", r.DaysAhead)
	}

	sections := make([]string, 0, len(r.Days))
	for _, day := range r.Days {
		ranges := make([]string, 0, len(day.Ranges))
		for _, rg := range day.Ranges {
			ranges = append(ranges, rg.String())
		}
		sections = append(sections, day.Header()+": "+strings.Join(ranges, ", "))
	}

	return fmt.Sprintf("Свободные слоты на ближайшие %d дней:\n\n", r.DaysAhead) +
		strings.Join(sections, "\n\n")
}

func russianWeekday(w time.Weekday) string {
	days := []string{"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"}
	return days[w]
}
