package availability

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-slots-bot/internal/calendar"
	"tg-slots-bot/internal/metrics"
)

type fakeFeed struct {
	events   []calendar.Event
	err      error
	from, to time.Time
	calls    int
}

func (f *fakeFeed) Fetch(_ context.Context, from, to time.Time) ([]calendar.Event, error) {
	f.calls++
	f.from, f.to = from, to
	return f.events, f.err
}

func newTestService(t *testing.T, feed Feed, s Settings, now time.Time, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithClock(func() time.Time { return now }))
	svc, err := NewService(feed, s, opts...)
	require.NoError(t, err)
	return svc
}

func TestService_ComputeReport(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 2
	feed := &fakeFeed{events: []calendar.Event{
		{UID: "standup", Start: at(s, 0, 12, 0), End: at(s, 0, 13, 0)},
		{UID: "night", Start: at(s, 0, 22, 0), End: at(s, 1, 10, 0)},
		{UID: "lunch", Start: at(s, 1, 13, 30), End: at(s, 1, 14, 0)},
	}}

	svc := newTestService(t, feed, s, at(s, 0, 10, 15))
	got, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)

	want := "Свободные слоты на ближайшие 2 дней:\n\n" +
		"Понедельник, 19.10.2026: 11:00-12:00, 13:00-22:00\n\n" +
		"Вторник, 20.10.2026: 10:00-13:00, 14:00-23:00"
	assert.Equal(t, want, got)
	assert.Equal(t, 1, feed.calls)
}

func TestService_FetchWindowCoversHorizon(t *testing.T) {
	s := testSettings(t)
	feed := &fakeFeed{}

	_, err := newTestService(t, feed, s, at(s, 0, 10, 15)).ComputeReport(context.Background())
	require.NoError(t, err)

	assert.True(t, feed.from.Equal(at(s, -1, 0, 0)), "from %s", feed.from)
	assert.True(t, feed.to.Equal(at(s, 8, 0, 0)), "to %s", feed.to)
}

func TestService_Idempotent(t *testing.T) {
	s := testSettings(t)
	feed := &fakeFeed{events: []calendar.Event{
		{Start: at(s, 3, 9, 0), End: at(s, 3, 18, 0)},
	}}
	svc := newTestService(t, feed, s, at(s, 0, 16, 40))

	first, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)
	second, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, feed.calls)
}

func TestService_NoAvailability(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 1
	m := metrics.New()

	svc := newTestService(t, &fakeFeed{}, s, at(s, 0, 23, 10), WithMetrics(m))
	got, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Нет свободных слотов в ближайшие 1 дней", got)
}

func TestService_FullyBooked(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 2
	feed := &fakeFeed{events: []calendar.Event{
		{Start: at(s, 0, 0, 0), End: at(s, 0, 23, 59)},
		{Start: at(s, 1, 8, 0), End: at(s, 1, 23, 30)},
	}}

	got, err := newTestService(t, feed, s, at(s, 0, 9, 0)).ComputeReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Нет свободных слотов в ближайшие 2 дней", got)
}

func TestService_FeedErrors(t *testing.T) {
	s := testSettings(t)

	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{"unavailable", fmt.Errorf("%w: timeout", calendar.ErrFeedUnavailable), metrics.StatusUnavailable},
		{"malformed", fmt.Errorf("%w: garbage", calendar.ErrFeedMalformed), metrics.StatusMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			svc := newTestService(t, &fakeFeed{err: tt.err}, s, at(s, 0, 10, 0), WithMetrics(m))

			got, err := svc.ComputeReport(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, got)

			expected := fmt.Sprintf(`
# HELP slots_bot_reports_total Построенные отчёты о свободных слотах по статусу.
# TYPE slots_bot_reports_total counter
slots_bot_reports_total{status=%q} 1
`, tt.wantStatus)
			assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "slots_bot_reports_total"))
		})
	}
}

func TestService_WithCalendarClient(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 1

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\n" +
			"VERSION:2.0\n" +
			"BEGIN:VEVENT\n" +
			"UID:busy\n" +
			"DTSTART:20261019T140000Z\n" +
			"DTEND:20261019T160000Z\n" +
			"SUMMARY:Занят\n" +
			"END:VEVENT\n" +
			"END:VCALENDAR\n"))
	}))
	defer srv.Close()

	svc := newTestService(t, calendar.NewClient(srv.URL, s.Location), s, at(s, 0, 12, 0))
	got, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)

	// 14:00Z остаётся 14:00 местного времени.
	assert.Equal(t, "Свободные слоты на ближайшие 1 дней:\n\n"+
		"Понедельник, 19.10.2026: 12:00-14:00, 16:00-23:00", got)
}

func TestService_PartialFeed(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 1
	m := metrics.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\n" +
			"BEGIN:VEVENT\n" +
			"UID:busy\n" +
			"DTSTART:20261019T140000\n" +
			"DTEND:20261019T160000\n" +
			"END:VEVENT\n" +
			"BEGIN:VEVENT\n" +
			"UID:broken\n" +
			"DTSTART:2026-10-19 18:00\n" +
			"DTEND:20261019T190000\n" +
			"END:VEVENT\n" +
			"END:VCALENDAR\n"))
	}))
	defer srv.Close()

	feed := calendar.NewClient(srv.URL, s.Location, calendar.WithDroppedHook(m.EventDropped))
	svc := newTestService(t, feed, s, at(s, 0, 12, 0), WithMetrics(m))
	got, err := svc.ComputeReport(context.Background())
	require.NoError(t, err)

	// Битое событие 18:00-19:00 пропущено, его время считается свободным.
	assert.Equal(t, "Свободные слоты на ближайшие 1 дней:\n\n"+
		"Понедельник, 19.10.2026: 12:00-14:00, 16:00-23:00", got)

	expected := `
# HELP slots_bot_dropped_events_total События фида, пропущенные из-за некорректных дат.
# TYPE slots_bot_dropped_events_total counter
slots_bot_dropped_events_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "slots_bot_dropped_events_total"))
}

func TestService_UnreachableFeed(t *testing.T) {
	s := testSettings(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := newTestService(t, calendar.NewClient(url, s.Location), s, at(s, 0, 12, 0))
	got, err := svc.ComputeReport(context.Background())
	assert.ErrorIs(t, err, calendar.ErrFeedUnavailable)
	assert.Empty(t, got)
}

func TestNewService_InvalidSettings(t *testing.T) {
	s := testSettings(t)
	s.DaysAhead = 0
	_, err := NewService(&fakeFeed{}, s)
	assert.Error(t, err)
}
