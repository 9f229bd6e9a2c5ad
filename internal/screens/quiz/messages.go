package quiz

import (
	sess "github.com/abhisek/vocabquiz/internal/session"
)

// opDoneMsg is sent when a machine operation that touches the store has
// finished. Snap is taken right after the operation.
type opDoneMsg struct {
	Op   string
	Snap sess.Snapshot
	Err  error
}
