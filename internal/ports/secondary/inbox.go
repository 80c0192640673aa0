package secondary

import "context"

// Inbox defines the secondary port for the directory vendor drops land in.
type Inbox interface {
	// Scan returns the drops already present, oldest name first.
	Scan(ctx context.Context) ([]string, error)

	// Watch calls fn for every drop created or rewritten until ctx is done.
	// Rapid successive events for one file are delivered once.
	Watch(ctx context.Context, fn func(ctx context.Context, path string)) error
}
