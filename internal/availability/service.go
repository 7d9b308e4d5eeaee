package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tg-slots-bot/internal/calendar"
	"tg-slots-bot/internal/metrics"
)

// Feed — источник занятых событий. *calendar.Client подходит.
type Feed interface {
	Fetch(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// Service — весь конвейер: загрузка фида и сетка параллельно, затем
// обрезка, вычитание и отрисовка. Состояния между вызовами нет.
type Service struct {
	feed     Feed
	settings Settings
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

// WithClock подменяет текущее время.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(feed Feed, settings Settings, opts ...Option) (*Service, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		feed:     feed,
		settings: settings,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ComputeReport строит текстовый отчёт на текущий момент.
// Ошибки фида возвращаются как есть; их можно проверить через errors.Is
// с calendar.ErrFeedUnavailable и calendar.ErrFeedMalformed.
func (s *Service) ComputeReport(ctx context.Context) (string, error) {
	report, err := s.ReportAt(ctx, s.now())
	if err != nil {
		return "", err
	}
	return report.String(), nil
}

// ReportAt строит отчёт для заданного момента now.
func (s *Service) ReportAt(ctx context.Context, now time.Time) (Report, error) {
	free, err := s.FreeSlotsAt(ctx, now)
	if err != nil {
		s.metrics.ReportFailed(failureStatus(err))
		return Report{}, err
	}

	report := BuildReport(free, s.settings)
	s.metrics.ReportBuilt(report.RangeCount())
	return report, nil
}

// FreeSlotsAt возвращает свободные слоты без группировки.
func (s *Service) FreeSlotsAt(ctx context.Context, now time.Time) ([]TimeSlot, error) {
	now = now.In(s.settings.Location)
	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	var (
		events     []calendar.Event
		candidates []TimeSlot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := s.fetchWindow(now)
		started := time.Now()
		var err error
		events, err = s.feed.Fetch(gctx, from, to)
		s.metrics.ObserveFetch(time.Since(started))
		return err
	})
	g.Go(func() error {
		candidates = CandidateSlots(now, s.settings)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn("❌ Не удалось получить календарь", zap.Error(err))
		return nil, fmt.Errorf("получение занятости: %w", err)
	}

	busy := BusySlots(events, s.settings)
	free := FreeSlots(candidates, busy, s.settings)

	logger.Info("📅 Свободные слоты посчитаны",
		zap.Int("events", len(events)),
		zap.Int("busy", len(busy)),
		zap.Int("candidates", len(candidates)),
		zap.Int("free", len(free)),
	)
	return free, nil
}

// fetchWindow берёт горизонт с запасом в сутки с каждой стороны; точную
// границу потом задаёт сетка.
func (s *Service) fetchWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, s.settings.Location)
	return today.AddDate(0, 0, -1), today.AddDate(0, 0, s.settings.DaysAhead+1)
}

func failureStatus(err error) string {
	switch {
	case errors.Is(err, calendar.ErrFeedUnavailable):
		return metrics.StatusUnavailable
	case errors.Is(err, calendar.ErrFeedMalformed):
		return metrics.StatusMalformed
	}
	return metrics.StatusError
}
