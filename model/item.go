package model

// Item is a concrete item instance, as stored in trader assorts and presets.
type Item struct {
	ID       string `json:"_id"`
	Tpl      string `json:"_tpl"`
	ParentID string `json:"parentId,omitempty"`
	SlotID   string `json:"slotId,omitempty"`
	Upd      *Upd   `json:"upd,omitempty"`
}

// Upd carries the per-instance stock state.
type Upd struct {
	UnlimitedCount        bool `json:"UnlimitedCount,omitempty"`
	StackObjectsCount     int  `json:"StackObjectsCount,omitempty"`
	BuyRestrictionMax     *int `json:"BuyRestrictionMax,omitempty"`
	BuyRestrictionCurrent *int `json:"BuyRestrictionCurrent,omitempty"`
}

// Preset is a pre-assembled item (weapon build, gear set).
type Preset struct {
	ID               string  `json:"_id"`
	Type             string  `json:"_type"`
	ChangeWeaponName bool    `json:"_changeWeaponName"`
	Name             string  `json:"_name"`
	Parent           string  `json:"_parent"`
	Items            []*Item `json:"_items"`
	Encyclopedia     string  `json:"_encyclopedia,omitempty"`
}
