package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tg-slots-bot/internal/metrics"
)

// Sender — часть *tgbotapi.BotAPI, которой пользуется бот.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Reporter считает отчёт о свободных слотах.
type Reporter interface {
	ComputeReport(ctx context.Context) (string, error)
}

type HandlerConfig struct {
	OwnerContactURL string
	// ReloadInterval — минимальный интервал между обновлениями меню в одном чате.
	ReloadInterval time.Duration
	ReportTimeout  time.Duration
	Location       *time.Location
}

// Handler обрабатывает обновления Telegram. Расчёт слотов — только через Reporter.
type Handler struct {
	tg       Sender
	reporter Reporter
	cfg      HandlerConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu       sync.Mutex
	limiters map[int64]*chatLimiter
}

type chatLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewHandler(tg Sender, reporter Reporter, cfg HandlerConfig, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ReportTimeout <= 0 {
		cfg.ReportTimeout = 30 * time.Second
	}
	return &Handler{
		tg:       tg,
		reporter: reporter,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
		limiters: make(map[int64]*chatLimiter),
	}
}

// Run читает обновления до закрытия канала или отмены ctx.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	h.logger.Info("✅ Обработчик сообщений запущен")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.Handle(ctx, update)
		}
	}
}

func (h *Handler) Handle(ctx context.Context, update tgbotapi.Update) {
	cmd := Route(update)
	h.metrics.UpdateHandled(cmd.Action.String())

	switch cmd.Action {
	case ActionShowMenu:
		h.logger.Info("📨 Команда /start", zap.Int64("chat_id", cmd.ChatID))
		h.sendMenu(ctx, cmd.ChatID)
		h.deleteMessage(cmd.ChatID, cmd.MessageID)

	case ActionReload:
		if !h.allow(cmd.ChatID) {
			h.answerCallback(cmd.CallbackID, throttledText)
			return
		}
		h.logger.Info("🔄 Обновление меню", zap.Int64("chat_id", cmd.ChatID))
		h.answerCallback(cmd.CallbackID, "")
		h.sendMenu(ctx, cmd.ChatID)
		h.deleteMessage(cmd.ChatID, cmd.MessageID)

	case ActionDismiss:
		h.deleteMessage(cmd.ChatID, cmd.MessageID)

	default:
		if cmd.CallbackID != "" {
			h.answerCallback(cmd.CallbackID, "")
		}
	}
}

func (h *Handler) sendMenu(ctx context.Context, chatID int64) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.ReportTimeout)
	defer cancel()

	now := h.now().In(h.cfg.Location)
	report, err := h.reporter.ComputeReport(ctx)

	var text string
	if err != nil {
		h.logger.Error("❌ Ошибка расчёта слотов", zap.Int64("chat_id", chatID), zap.Error(err))
		text = FormatError(now)
	} else {
		text = FormatMenu(report, now)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = MenuKeyboard(h.cfg.OwnerContactURL)
	if _, err := h.tg.Send(msg); err != nil {
		h.logger.Error("Ошибка отправки", zap.Int64("chat_id", chatID), zap.Error(err), zap.String("text", text))
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := h.tg.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Warn("Ошибка удаления сообщения",
			zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
	}
}

func (h *Handler) answerCallback(id, text string) {
	if id == "" {
		return
	}
	if _, err := h.tg.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Warn("Ошибка ответа на callback", zap.String("callback_id", id), zap.Error(err))
	}
}

// allow ограничивает частоту «Перезагрузить»: каждый раз — новый поход за фидом.
func (h *Handler) allow(chatID int64) bool {
	if h.cfg.ReloadInterval <= 0 {
		return true
	}

	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()

	cl, ok := h.limiters[chatID]
	if !ok {
		h.evictIdle(now)
		cl = &chatLimiter{lim: rate.NewLimiter(rate.Every(h.cfg.ReloadInterval), 1)}
		h.limiters[chatID] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

// evictIdle убирает лимитеры чатов, молчавших дольше ReloadInterval: их
// ведро уже полное, и новый лимитер ведёт себя так же.
func (h *Handler) evictIdle(now time.Time) {
	for id, cl := range h.limiters {
		if now.Sub(cl.seen) > h.cfg.ReloadInterval {
			delete(h.limiters, id)
		}
	}
}
