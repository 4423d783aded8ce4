package lognotify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"extension_sunset/internal/domain/sunset"

	"github.com/sirupsen/logrus"
)

func TestNotify_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	n := New(logrus.NewEntry(l))
	err := n.Notify(context.Background(), sunset.Notification{
		ID: "2", Type: sunset.NotificationTypeBasic, IconURL: "icon.png", Title: "Retiring", Message: "Goodbye soon",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("bad log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Goodbye soon" || entry["notification_id"] != "2" || entry["title"] != "Retiring" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
