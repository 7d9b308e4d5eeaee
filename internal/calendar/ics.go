package calendar

import (
	"fmt"
	"strings"
)

// Свойства повторения. Фид читается по исходным DTSTART/DTEND, поэтому
// правила убираются до разбора и gocal не разворачивает экземпляры.
var recurrenceProps = map[string]bool{
	"RRULE":  true,
	"RDATE":  true,
	"EXRULE": true,
	"EXDATE": true,
}

// placeholderStamp подставляется в события без DTSTAMP: gocal без него
// событие отбрасывает, а для занятости метка не нужна.
const placeholderStamp = "19700101T000000Z"

// placeholderUID ставится событиям без UID и после разбора стирается.
const placeholderUID = "slots-bot-placeholder"

// vevent — один блок BEGIN:VEVENT..END:VEVENT, готовый к разбору.
type vevent struct {
	lines  []string
	hasUID bool
}

// splitEvents режет тело фида на блоки VEVENT. Вложенные компоненты
// (VALARM) остаются внутри блока. Незакрытый или вложенный VEVENT и END
// без пары означают битый фид.
func splitEvents(body []byte) ([]vevent, error) {
	var (
		events []vevent
		cur    *vevent
		depth  int
		skip   bool
	)

	for n, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")

		folded := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		if folded {
			if cur != nil && !skip {
				cur.lines = append(cur.lines, line)
			}
			continue
		}
		skip = false

		name := propertyName(line)
		value := strings.ToUpper(strings.TrimSpace(propertyValue(line)))

		switch {
		case name == "BEGIN" && value == "VEVENT":
			if cur != nil {
				return nil, fmt.Errorf("%w: вложенный VEVENT в строке %d", ErrFeedMalformed, n+1)
			}
			cur = &vevent{}
			depth = 0
			cur.lines = append(cur.lines, "BEGIN:VEVENT")
			continue
		case name == "END" && value == "VEVENT":
			if cur == nil || depth != 0 {
				return nil, fmt.Errorf("%w: END:VEVENT без пары в строке %d", ErrFeedMalformed, n+1)
			}
			cur.lines = append(cur.lines, "END:VEVENT")
			events = append(events, cur.finish())
			cur = nil
			continue
		}

		if cur == nil {
			continue
		}

		switch {
		case name == "BEGIN":
			depth++
		case name == "END":
			if depth == 0 {
				return nil, fmt.Errorf("%w: END:%s без пары в строке %d", ErrFeedMalformed, value, n+1)
			}
			depth--
		case depth == 0 && recurrenceProps[name]:
			skip = true
			continue
		case depth == 0 && name == "UID":
			cur.hasUID = true
		}
		cur.lines = append(cur.lines, line)
	}

	if cur != nil {
		return nil, fmt.Errorf("%w: незакрытый VEVENT", ErrFeedMalformed)
	}
	return events, nil
}

// finish дописывает UID и DTSTAMP, без которых gocal событие не примет.
func (v *vevent) finish() vevent {
	var extra []string
	if !v.hasUID {
		extra = append(extra, "UID:"+placeholderUID)
	}
	if !v.hasProp("DTSTAMP") {
		extra = append(extra, "DTSTAMP:"+placeholderStamp)
	}
	if len(extra) > 0 {
		lines := make([]string, 0, len(v.lines)+len(extra))
		lines = append(lines, v.lines[0])
		lines = append(lines, extra...)
		lines = append(lines, v.lines[1:]...)
		v.lines = lines
	}
	return *v
}

func (v *vevent) hasProp(name string) bool {
	depth := 0
	for _, l := range v.lines[1 : len(v.lines)-1] {
		if strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t") {
			continue
		}
		switch p := propertyName(l); {
		case p == "BEGIN":
			depth++
		case p == "END":
			depth--
		case depth == 0 && p == name:
			return true
		}
	}
	return false
}

// calendar оборачивает блок в отдельный VCALENDAR для gocal.
func (v vevent) calendar() string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n" + strings.Join(v.lines, "\r\n") + "\r\nEND:VCALENDAR\r\n"
}

// propertyName — имя свойства до первого ':' или ';' в верхнем регистре.
func propertyName(line string) string {
	if i := strings.IndexAny(line, ":;"); i >= 0 {
		line = line[:i]
	}
	return strings.ToUpper(strings.TrimSpace(line))
}

func propertyValue(line string) string {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return line[i+1:]
	}
	return ""
}
