package scheduler

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tg-slots-bot/internal/bot"
)

type Config struct {
	ChatID     int64
	DigestTime string // ЧЧ:ММ
	Location   *time.Location
}

// Scheduler раз в день присылает отчёт о свободных слотах в заданный чат.
type Scheduler struct {
	cfg      Config
	tg       bot.Sender
	reporter bot.Reporter
	logger   *zap.Logger

	mu       sync.Mutex
	lastSent string
}

func New(cfg Config, tg bot.Sender, reporter bot.Reporter, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		tg:       tg,
		reporter: reporter,
		logger:   logger,
	}
}

// Run блокируется до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("✅ Планировщик запущен",
		zap.Int64("chat_id", s.cfg.ChatID), zap.String("digest_time", s.cfg.DigestTime))

	minuteTicker := time.NewTicker(1 * time.Minute)
	defer minuteTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-minuteTicker.C:
			s.checkDigest(ctx, t)
		}
	}
}

// checkDigest отправляет сводку, если сейчас DigestTime и сегодня её ещё не было.
func (s *Scheduler) checkDigest(ctx context.Context, t time.Time) bool {
	now := t.In(s.cfg.Location)
	if now.Format("15:04") != s.cfg.DigestTime {
		return false
	}

	today := now.Format("2006-01-02")
	s.mu.Lock()
	if s.lastSent == today {
		s.mu.Unlock()
		return false
	}
	s.lastSent = today
	s.mu.Unlock()

	s.logger.Info("📅 Отправляю сводку свободных слотов")

	report, err := s.reporter.ComputeReport(ctx)
	if err != nil {
		s.logger.Error("❌ Ошибка получения слотов для сводки", zap.Error(err))
		s.send(bot.FormatError(now))
		return true
	}

	s.send(bot.FormatDigest(report, now))
	return true
}

func (s *Scheduler) send(text string) {
	msg := tgbotapi.NewMessage(s.cfg.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	if _, err := s.tg.Send(msg); err != nil {
		s.logger.Error("Ошибка отправки", zap.Error(err), zap.String("text", text))
	}
}
