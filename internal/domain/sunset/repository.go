// internal/domain/sunset/repository.go
package sunset

import "context"

// StateStore persists progress in a durable key-value store.
type StateStore interface {
	// Load returns whatever is stored. Absent keys come back as empty strings, not an error.
	Load(ctx context.Context) (RawState, error)
	Save(ctx context.Context, p Progress) error
}

// Notifier displays a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Uninstaller removes the running extension. After it returns the scheduler is gone.
type Uninstaller interface {
	Uninstall(ctx context.Context) error
}
