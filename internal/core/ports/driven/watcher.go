package driven

import "context"

// FolderWatcher reports filesystem changes under the watched folder.
type FolderWatcher interface {
	// Watch starts watching path and returns a channel that receives a
	// signal after changes settle (implementations debounce bursts).
	// The channel closes when the context is cancelled or the watcher
	// is closed.
	Watch(ctx context.Context, path string) (<-chan struct{}, error)

	// Close stops the watcher.
	Close() error
}
