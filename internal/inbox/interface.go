// Package inbox converts recordings dropped into a directory.
package inbox

import "context"

type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// Handler processes one new file.
type Handler func(ctx context.Context, path string) error
