package telegram

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"extension_sunset/internal/domain/sunset"
	domainTelegram "extension_sunset/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Telegram rejects photo captions longer than this.
const maxCaptionLen = 1024

// Notifier displays sunset notifications as Telegram messages in a single chat.
type Notifier struct {
	client domainTelegram.Client
	chatID int64
}

var _ sunset.Notifier = (*Notifier)(nil)

func NewNotifier(client domainTelegram.Client, chatID int64) *Notifier {
	return &Notifier{client: client, chatID: chatID}
}

func (n *Notifier) Notify(ctx context.Context, note sunset.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := formatNotification(note)
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML}

	if file, ok := iconFile(note.IconURL); ok && len(text) <= maxCaptionLen {
		photo := &telebot.Photo{File: file, Caption: text}
		if err := n.client.SendPhoto(n.chatID, photo, opts); err != nil {
			return fmt.Errorf("failed to send sunset notification %s as photo: %w", note.ID, err)
		}
		return nil
	}

	if err := n.client.SendMessage(n.chatID, text, opts); err != nil {
		return fmt.Errorf("failed to send sunset notification %s: %w", note.ID, err)
	}
	return nil
}

func formatNotification(note sunset.Notification) string {
	var b strings.Builder
	if note.Title != "" {
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(note.Title))
		b.WriteString("</b>")
	}
	if note.Message != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(html.EscapeString(note.Message))
	}
	return b.String()
}

// iconFile resolves the icon to something Telegram can upload or fetch.
// Icons that are neither URLs nor readable files are skipped.
func iconFile(icon string) (telebot.File, bool) {
	switch {
	case icon == "":
		return telebot.File{}, false
	case strings.HasPrefix(icon, "http://"), strings.HasPrefix(icon, "https://"):
		return telebot.FromURL(icon), true
	}
	if st, err := os.Stat(icon); err == nil && !st.IsDir() {
		return telebot.FromDisk(icon), true
	}
	return telebot.File{}, false
}
