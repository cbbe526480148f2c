// Package nav computes next/previous conversation selection for
// keyboard-driven triage. All functions are pure: no state, no side
// effects, identical output for identical input. An empty id means
// nothing is selected.
package nav

// Next returns the conversation after selectedID in validIDs, clamped
// at the end (no wraparound). When nothing is selected, or the selected
// id is no longer in the list, it returns the first element. Empty list
// returns "".
func Next(selectedID string, validIDs []string) string {
	if len(validIDs) == 0 {
		return ""
	}
	idx := indexOf(selectedID, validIDs)
	if idx < 0 {
		return validIDs[0]
	}
	if idx+1 >= len(validIDs) {
		return validIDs[len(validIDs)-1]
	}
	return validIDs[idx+1]
}

// Previous returns the conversation before selectedID, clamped at the
// start.
func Previous(selectedID string, validIDs []string) string {
	if len(validIDs) == 0 {
		return ""
	}
	idx := indexOf(selectedID, validIDs)
	if idx < 0 {
		return validIDs[0]
	}
	if idx <= 0 {
		return validIDs[0]
	}
	return validIDs[idx-1]
}

// ResolveNextSelection picks the conversation to select when the
// current one drops out of the visible list, e.g. it was closed while
// the "open" filter is active. Preference order: next, then previous,
// then first; the first candidate that exists and differs from the
// removed selection wins. Returns "" when nothing qualifies
// (single-element list).
func ResolveNextSelection(selectedID string, validIDs []string) string {
	if len(validIDs) == 0 {
		return ""
	}
	idx := indexOf(selectedID, validIDs)
	if idx < 0 {
		return validIDs[0]
	}

	var candidates []string
	switch {
	case idx == 0:
		candidates = []string{Next(selectedID, validIDs)}
	case idx == len(validIDs)-1:
		candidates = []string{Previous(selectedID, validIDs)}
	default:
		candidates = []string{
			Next(selectedID, validIDs),
			Previous(selectedID, validIDs),
			validIDs[0],
		}
	}

	for _, c := range candidates {
		if c != "" && c != selectedID {
			return c
		}
	}
	return ""
}

func indexOf(id string, ids []string) int {
	if id == "" {
		return -1
	}
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
