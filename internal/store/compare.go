package store

import (
	"time"

	"chatsync/entity"
)

// EffectiveTime returns the timestamp a message is ordered by: SentAt
// when it is present and earlier than CreatedAt, otherwise CreatedAt.
//
// SentAt comes from the sending client's clock and can land after the
// server's CreatedAt due to clock drift; only skew in the "client
// thought it was earlier" direction is trusted. Every ordering decision
// goes through this function.
func EffectiveTime(m entity.Message) time.Time {
	if m.SentAt != nil && m.SentAt.Before(m.CreatedAt) {
		return *m.SentAt
	}
	return m.CreatedAt
}

// less orders messages by effective timestamp.
func less(a, b entity.Message) bool {
	return EffectiveTime(a).Before(EffectiveTime(b))
}
