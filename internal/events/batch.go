package events

import "time"

// BatchDispatch is emitted when the dispatcher begins flushing accumulated
// batch groups.
type BatchDispatch struct {
	Groups int
	At     time.Time
}
