package ports

import (
	"context"
	"iter"
)

// WatchOp classifies a change below the watched root.
type WatchOp uint8

// Operations reported by a Watcher. Renames are reported on the old path.
const (
	OpCreate WatchOp = iota
	OpWrite
	OpRemove
	OpRename
)

var watchOpNames = [...]string{"create", "write", "remove", "rename"}

func (op WatchOp) String() string {
	if int(op) < len(watchOpNames) {
		return watchOpNames[op]
	}
	return "unknown"
}

// WatchEvent is one change to a file or directory.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports changes to the files of a project so that watch mode can
// regenerate their outputs.
type Watcher interface {
	// Start watches root and every directory below it, including directories
	// created later. A Watcher can be started once.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher and ends the event sequence. It is idempotent.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
