package store

import "chatsync/entity"

// IsLastInGroup reports whether the message at index i closes a display
// group: it is the last message, or the next message comes from a
// different sender identity. The presentation layer uses this to decide
// avatar stacking; it never computes it itself.
func IsLastInGroup(msgs []entity.Message, i int) bool {
	if i < 0 || i >= len(msgs) {
		return false
	}
	if i == len(msgs)-1 {
		return true
	}
	return msgs[i].SenderKey() != msgs[i+1].SenderKey()
}
