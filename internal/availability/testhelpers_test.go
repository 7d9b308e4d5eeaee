package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) Settings {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Yekaterinburg")
	require.NoError(t, err)
	return Settings{
		Location:         loc,
		WorkDayStartHour: 9,
		WorkDayEndHour:   23,
		DaysAhead:        7,
		SlotDuration:     time.Hour,
	}
}

// at — момент 2026-10-(19+day) hh:mm в зоне настроек; 19.10.2026 — понедельник.
func at(s Settings, day, hh, mm int) time.Time {
	return time.Date(2026, 10, 19+day, hh, mm, 0, 0, s.Location)
}

func slot(s Settings, day, fromH, toH int) TimeSlot {
	return TimeSlot{Start: at(s, day, fromH, 0), End: at(s, day, toH, 0)}
}
