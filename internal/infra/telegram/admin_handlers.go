package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"extension_sunset/internal/app"
	"extension_sunset/internal/domain/sunset"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const dateFormat = "2006-01-02 15:04 MST"

// RegisterAdminHandlers registers handlers for admin commands.
// Authorization is checked by the admin service.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/status",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		report, err := adminService.Status(ctx, c.Sender().ID)
		if err != nil {
			return replyError(c, handlerLogger, err)
		}
		return c.Send(FormatStatus(report))
	})

	b.Handle("/check", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/check",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		decision, err := adminService.CheckNow(ctx, c.Sender().ID)
		if err != nil {
			return replyError(c, handlerLogger, err)
		}
		handlerLogger.WithField("action", decision.Action.String()).Info("Manual sunset check completed")
		return c.Send(FormatDecision(decision))
	})

	b.Handle("/help", func(c telebot.Context) error {
		return c.Send("Commands:\n/status - show sunset progress\n/check - evaluate the timeline now")
	})
}

func replyError(c telebot.Context, logger *logrus.Entry, err error) error {
	logWithError := logger.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized), errors.Is(err, app.ErrAdminNotConfigured):
		logWithError.Warn("Unauthorized access attempt")
		return c.Send("Error: you are not allowed to run this command.")
	case errors.Is(err, app.ErrUninstalled):
		return c.Send("The extension has already been uninstalled.")
	default:
		logWithError.Error("Command failed")
		return c.Send(fmt.Sprintf("Command failed: %s", err.Error()))
	}
}

// FormatStatus renders a status report for chat.
func FormatStatus(r app.StatusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sunset stage %d of %d", r.Index, r.Stages-1)
	if r.Terminal {
		b.WriteString(" (uninstall pending)")
	}
	b.WriteString("\n")

	switch {
	case r.Uninstalled:
		b.WriteString("Extension uninstalled.\n")
	case r.Reset:
		b.WriteString("No valid progress stored; the first notification goes out on the next tick.\n")
	default:
		fmt.Fprintf(&b, "Last notification: %s\n", formatTime(r.LastShown))
		fmt.Fprintf(&b, "Timeline threshold: %s\n", formatTime(r.TimelineThreshold))
		fmt.Fprintf(&b, "Spacing threshold: %s\n", formatTime(r.OffsetThreshold))
		fmt.Fprintf(&b, "Next eligible: %s\n", formatTime(r.NextEligible))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatDecision renders the outcome of a manual check.
func FormatDecision(d sunset.Decision) string {
	switch d.Action {
	case sunset.ActionShow:
		return fmt.Sprintf("Notification for stage %d shown.", d.Stage)
	case sunset.ActionUninstall:
		return "Terminal stage reached, extension uninstalled."
	default:
		return fmt.Sprintf("Stage %d is not due yet.", d.Stage)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateFormat)
}
