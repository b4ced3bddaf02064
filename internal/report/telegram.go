package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// TelegramTracker pushes task failures to a Telegram chat. It is the
// operator-facing error sink: one short message per failure, no threading,
// no interaction.
type TelegramTracker struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// NewTelegramTracker validates the token against the Bot API (getMe) and
// returns a send-only tracker targeting chatID.
func NewTelegramTracker(token string, chatID int64) (*TelegramTracker, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: nil, // send-only, we never receive updates
	})
	if err != nil {
		return nil, fmt.Errorf("telegram tracker: %w", err)
	}
	return &TelegramTracker{bot: b, chat: &tele.Chat{ID: chatID}}, nil
}

func (t *TelegramTracker) Capture(ctx context.Context, f Failure) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 task %s failed\n", f.Task)
	if !f.At.IsZero() {
		fmt.Fprintf(&b, "started: %s\n", f.At.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "error: %v", f.Err)
	if f.Stack != "" {
		// Keep messages Telegram-sized; the full stack is in the logs.
		fmt.Fprintf(&b, "\n\n%s", firstLines(f.Stack, 8))
	}

	_, err := t.bot.Send(t.chat, b.String(), &tele.SendOptions{DisableWebPagePreview: true})
	return err
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + "\n…"
}
