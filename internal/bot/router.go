package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CommandStart   = "start"
	CallbackReload = "reload"
)

type Action int

const (
	ActionNone Action = iota
	// ActionShowMenu — прислать меню и удалить сообщение пользователя.
	ActionShowMenu
	// ActionReload — прислать меню заново и удалить старое.
	ActionReload
	// ActionDismiss — просто удалить сообщение.
	ActionDismiss
)

func (a Action) String() string {
	switch a {
	case ActionShowMenu:
		return "show_menu"
	case ActionReload:
		return "reload"
	case ActionDismiss:
		return "dismiss"
	}
	return "none"
}

// Command — что сделать в ответ на обновление.
type Command struct {
	Action     Action
	ChatID     int64
	MessageID  int
	CallbackID string
}

// Route раскладывает обновление Telegram в одно из действий.
func Route(update tgbotapi.Update) Command {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Text == "" || msg.Chat == nil {
			return Command{Action: ActionNone}
		}
		cmd := Command{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		if msg.IsCommand() && msg.Command() == CommandStart {
			cmd.Action = ActionShowMenu
		} else {
			cmd.Action = ActionDismiss
		}
		return cmd

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Data != CallbackReload || cb.Message == nil || cb.Message.Chat == nil {
			return Command{Action: ActionNone, CallbackID: cb.ID}
		}
		return Command{
			Action:     ActionReload,
			ChatID:     cb.Message.Chat.ID,
			MessageID:  cb.Message.MessageID,
			CallbackID: cb.ID,
		}
	}
	return Command{Action: ActionNone}
}
