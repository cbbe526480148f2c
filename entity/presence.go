package entity

// PresenceDiff is the incremental presence update delivered by the
// transport: customer ids that connected and disconnected since the
// previous diff.
type PresenceDiff struct {
	Joins  []string `json:"joins"`
	Leaves []string `json:"leaves"`
}
