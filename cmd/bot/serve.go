package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tg-slots-bot/internal/bot"
	"tg-slots-bot/internal/metrics"
	"tg-slots-bot/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить бота (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	a.logger.Info("🚀 Запуск бота...")

	tg, err := tgbotapi.NewBotAPI(a.cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("ошибка Telegram: %w", err)
	}
	a.logger.Info("✅ Бот запущен", zap.String("username", tg.Self.UserName))

	handler := bot.NewHandler(tg, a.service, bot.HandlerConfig{
		OwnerContactURL: a.cfg.OwnerContactURL,
		ReloadInterval:  a.cfg.ReloadInterval,
		ReportTimeout:   a.cfg.FetchTimeout * 2,
		Location:        a.cfg.Location,
	}, a.logger.Named("bot"), a.metrics)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := tg.GetUpdatesChan(u)
		go func() {
			<-gctx.Done()
			tg.StopReceivingUpdates()
		}()
		handler.Run(gctx, updates)
		return nil
	})

	if a.cfg.DigestEnabled() {
		sched := scheduler.New(scheduler.Config{
			ChatID:     a.cfg.DigestChatID,
			DigestTime: a.cfg.DigestTime,
			Location:   a.cfg.Location,
		}, tg, a.service, a.logger.Named("scheduler"))
		g.Go(func() error {
			sched.Run(gctx)
			return nil
		})
	}

	if a.cfg.MetricsAddr != "" {
		srv, err := metrics.NewServer(a.cfg.MetricsAddr, a.metrics, a.logger.Named("metrics"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	err = g.Wait()
	a.logger.Info("👋 Бот остановлен")
	return err
}
