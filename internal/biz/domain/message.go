package domain

import "time"

// Message is one chat message inside a fetched window.
type Message struct {
	ID     int64
	Text   string
	Sender string
	FromMe bool
	SentAt time.Time
}

// Window is an ordered slice of recent messages, oldest first.
type Window []Message

// LatestID returns the highest message ID in the window.
func (w Window) LatestID() int64 {
	var max int64
	for _, m := range w {
		if m.ID > max {
			max = m.ID
		}
	}
	return max
}

// EndsWithOwn reports whether the newest message was sent by the operator
// account. When true there is usually nothing to reply to.
func (w Window) EndsWithOwn() bool {
	if len(w) == 0 {
		return false
	}
	return w[len(w)-1].FromMe
}
