package notify

import (
	"context"
	"fmt"
	"strings"

	"altiora-api/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts intake events to a Telegram chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

// NewTelegramNotifier logs the bot in. It fails when the token is rejected.
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, event Event) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatEvent(event))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	// The bot client has no context support, so the send is abandoned rather than cancelled.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatEvent renders an event as Telegram HTML.
func FormatEvent(event Event) string {
	a := event.Record.Applicant
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeHTML, s) }

	var b strings.Builder
	switch event.Kind {
	case KindUpdated:
		b.WriteString("✏️ <b>Application updated</b>\n")
	default:
		b.WriteString("🆕 <b>New application</b>\n")
	}
	fmt.Fprintf(&b, "%s %s (%s)\n", esc(a.FirstName), esc(a.LastName), esc(a.Email))
	if a.Phone != "" {
		fmt.Fprintf(&b, "📞 %s\n", esc(a.Phone))
	}
	if a.Year != "" || a.Major != "" {
		fmt.Fprintf(&b, "🎓 %s %s\n", esc(a.Year), esc(a.Major))
	}
	if len(a.Divisions) > 0 {
		fmt.Fprintf(&b, "🧭 %s\n", esc(strings.Join(a.Divisions, ", ")))
	}
	if len(event.ChangedFields) > 0 {
		fmt.Fprintf(&b, "Changed: %s\n", esc(strings.Join(event.ChangedFields, ", ")))
	}
	fmt.Fprintf(&b, "ID: <code>%s</code>", a.ID)
	return b.String()
}
