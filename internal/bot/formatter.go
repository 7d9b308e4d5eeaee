package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	reloadButtonText  = "Перезагрузить"
	contactButtonText = "Записаться"

	errorText     = "⚠️ Не удалось получить свободные слоты, попробуйте позже"
	throttledText = "Слишком часто, подождите пару секунд"
)

// FormatMenu — текст главного сообщения: время среза и отчёт.
func FormatMenu(report string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 *Свободные записи на данный момент* \\(%s\\)\n\n", EscMD(now.Format("02.01 15:04"))))
	sb.WriteString(EscMD(report))
	return sb.String()
}

// FormatError не раскрывает причину: подробности остаются в логах.
func FormatError(now time.Time) string {
	return fmt.Sprintf("%s \\(%s\\)", EscMD(errorText), EscMD(now.Format("02.01 15:04")))
}

// FormatDigest — ежедневная рассылка.
func FormatDigest(report string, now time.Time) string {
	return fmt.Sprintf("☀️ *%s*\n\n%s", EscMD(russianDate(now)), EscMD(report))
}

// MenuKeyboard: «Перезагрузить» и, если задан контакт, «Записаться».
func MenuKeyboard(ownerURL string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(reloadButtonText, CallbackReload)),
	}
	if ownerURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(contactButtonText, ownerURL)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func russianDate(t time.Time) string {
	months := []string{
		"", "января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()], t.Year())
}

// EscMD экранирует спецсимволы для Telegram MarkdownV2
func EscMD(s string) string {
	return mdReplacer.Replace(s)
}

var mdReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)
