package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeReporter struct {
	report string
	err    error
}

func (f fakeReporter) ComputeReport(context.Context) (string, error) {
	return f.report, f.err
}

func newTestScheduler(t *testing.T, reporter fakeReporter) (*Scheduler, *fakeSender, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Yekaterinburg")
	require.NoError(t, err)

	tg := &fakeSender{}
	s := New(Config{ChatID: -100, DigestTime: "09:00", Location: loc}, tg, reporter, zap.NewNop())
	return s, tg, loc
}

func TestScheduler_DigestOncePerDay(t *testing.T) {
	s, tg, loc := newTestScheduler(t, fakeReporter{report: "Нет свободных слотов в ближайшие 7 дней"})
	ctx := context.Background()

	assert.False(t, s.checkDigest(ctx, time.Date(2026, 10, 19, 8, 59, 0, 0, loc)))
	assert.True(t, s.checkDigest(ctx, time.Date(2026, 10, 19, 9, 0, 0, 0, loc)))
	assert.False(t, s.checkDigest(ctx, time.Date(2026, 10, 19, 9, 0, 30, 0, loc)))
	assert.True(t, s.checkDigest(ctx, time.Date(2026, 10, 20, 9, 0, 5, 0, loc)))

	require.Len(t, tg.sent, 2)
	assert.Equal(t, int64(-100), tg.sent[0].ChatID)
	assert.Contains(t, tg.sent[0].Text, "19 октября 2026")
	assert.Contains(t, tg.sent[1].Text, "20 октября 2026")
}

func TestScheduler_UsesOperationalZone(t *testing.T) {
	s, tg, _ := newTestScheduler(t, fakeReporter{report: "ok"})

	// 04:00 UTC = 09:00 по Екатеринбургу
	assert.True(t, s.checkDigest(context.Background(), time.Date(2026, 10, 19, 4, 0, 0, 0, time.UTC)))
	assert.Len(t, tg.sent, 1)
}

func TestScheduler_ReportError(t *testing.T) {
	s, tg, loc := newTestScheduler(t, fakeReporter{err: errors.New("feed down")})

	assert.True(t, s.checkDigest(context.Background(), time.Date(2026, 10, 19, 9, 0, 0, 0, loc)))
	require.Len(t, tg.sent, 1)
	assert.Contains(t, tg.sent[0].Text, "Не удалось получить свободные слоты")
	assert.NotContains(t, tg.sent[0].Text, "feed down")
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, _, _ := newTestScheduler(t, fakeReporter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не остановился после отмены контекста")
	}
}
