package model

// CompatibilityDelta lists the conflict and slot-filter additions for one item.
type CompatibilityDelta struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	IsNew            bool                `json:"is_new"`
	ConflictingItems []string            `json:"conflictingItems"`
	CompatibleItems  map[string][]string `json:"compatibleItems"`
}

// Empty reports whether the delta adds nothing.
func (d *CompatibilityDelta) Empty() bool {
	return len(d.ConflictingItems) == 0 && len(d.CompatibleItems) == 0
}
