package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tg-slots-bot/internal/availability"
	"tg-slots-bot/internal/calendar"
	"tg-slots-bot/internal/config"
	"tg-slots-bot/internal/logging"
	"tg-slots-bot/internal/metrics"
)

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "bot",
		Short: "Telegram-бот со свободными слотами из календаря",
		Long: `Бот показывает свободные часовые слоты на ближайшие дни: рабочие часы
минус занятость из iCalendar-фида.

Без подкоманды запускается serve.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSlotsCmd())
	return root
}

// app — общая сборка зависимостей для подкоманд.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	service *availability.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	feed := calendar.NewClient(cfg.CalendarURL, cfg.Location,
		calendar.WithTimeout(cfg.FetchTimeout),
		calendar.WithLogger(logger.Named("calendar")),
		calendar.WithDroppedHook(m.EventDropped),
	)

	service, err := availability.NewService(feed, cfg.Availability(),
		availability.WithLogger(logger.Named("availability")),
		availability.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, metrics: m, service: service}, nil
}
