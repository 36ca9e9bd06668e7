package model

import "encoding/json"

// TemplateItem is an item template in the host catalog format. The same shape
// is used for the supplemental pack's candidate items.
type TemplateItem struct {
	ID        string     `json:"_id"`
	Name      string     `json:"_name"`
	Parent    string     `json:"_parent"`
	Type      string     `json:"_type"`
	Prototype string     `json:"_proto,omitempty"`
	Props     *ItemProps `json:"_props,omitempty"`
}

// ItemProps holds the template properties the pipeline reads. Every other key
// is kept in Extra and written back unchanged.
type ItemProps struct {
	Slots            []*Slot  `json:"Slots,omitempty"`
	ConflictingItems []string `json:"ConflictingItems,omitempty"`
	Prefab           *Prefab  `json:"Prefab,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownPropKeys = []string{"Slots", "ConflictingItems", "Prefab"}

func (p *ItemProps) UnmarshalJSON(data []byte) error {
	type plain ItemProps
	var known plain
	extra, err := splitExtra(data, &known, knownPropKeys)
	if err != nil {
		return err
	}
	*p = ItemProps(known)
	p.Extra = extra
	return nil
}

func (p ItemProps) MarshalJSON() ([]byte, error) {
	type plain ItemProps
	return joinExtra(plain(p), p.Extra)
}

// splitExtra decodes data into known and returns every key not listed in
// knownKeys, or nil when there are none.
func splitExtra(data []byte, known interface{}, knownKeys []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// joinExtra encodes known and merges extra keys back in. Known fields win.
func joinExtra(known interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	out := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Prefab points at the asset bundle that renders the item.
type Prefab struct {
	Path string `json:"path"`
	RCID string `json:"rcid"`
}

// Slot is a named mount point on an item. Filters[0].Filter lists the
// templates that may be installed in it.
type Slot struct {
	Name                  string    `json:"_name"`
	ID                    string    `json:"_id"`
	Parent                string    `json:"_parent"`
	Props                 SlotProps `json:"_props"`
	Required              bool      `json:"_required"`
	MergeSlotWithChildren bool      `json:"_mergeSlotWithChildren"`
	Prototype             string    `json:"_proto"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownSlotKeys = []string{"_name", "_id", "_parent", "_props", "_required", "_mergeSlotWithChildren", "_proto"}

func (s *Slot) UnmarshalJSON(data []byte) error {
	type plain Slot
	var known plain
	extra, err := splitExtra(data, &known, knownSlotKeys)
	if err != nil {
		return err
	}
	*s = Slot(known)
	s.Extra = extra
	return nil
}

func (s Slot) MarshalJSON() ([]byte, error) {
	type plain Slot
	return joinExtra(plain(s), s.Extra)
}

type SlotProps struct {
	Filters []*SlotFilter `json:"filters"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (p *SlotProps) UnmarshalJSON(data []byte) error {
	type plain SlotProps
	var known plain
	extra, err := splitExtra(data, &known, []string{"filters"})
	if err != nil {
		return err
	}
	*p = SlotProps(known)
	p.Extra = extra
	return nil
}

func (p SlotProps) MarshalJSON() ([]byte, error) {
	type plain SlotProps
	return joinExtra(plain(p), p.Extra)
}

// SlotFilter keeps host keys such as locked, Plate or armorColliders in Extra.
type SlotFilter struct {
	Shift  int      `json:"Shift"`
	Filter []string `json:"Filter"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (f *SlotFilter) UnmarshalJSON(data []byte) error {
	type plain SlotFilter
	var known plain
	extra, err := splitExtra(data, &known, []string{"Shift", "Filter"})
	if err != nil {
		return err
	}
	*f = SlotFilter(known)
	f.Extra = extra
	return nil
}

func (f SlotFilter) MarshalJSON() ([]byte, error) {
	type plain SlotFilter
	return joinExtra(plain(f), f.Extra)
}

// FilterIDs returns the compatible template IDs of the slot's first filter.
func (s *Slot) FilterIDs() []string {
	if len(s.Props.Filters) == 0 || s.Props.Filters[0] == nil {
		return nil
	}
	return s.Props.Filters[0].Filter
}

// AppendFilterIDs appends ids to the first filter, creating it when absent.
func (s *Slot) AppendFilterIDs(ids ...string) {
	if len(s.Props.Filters) == 0 || s.Props.Filters[0] == nil {
		s.Props.Filters = []*SlotFilter{{}}
	}
	s.Props.Filters[0].Filter = append(s.Props.Filters[0].Filter, ids...)
}

// ConflictingItems returns the declared conflicts, or nil when the item has no props.
func (t *TemplateItem) ConflictingItems() []string {
	if t.Props == nil {
		return nil
	}
	return t.Props.ConflictingItems
}

// Slots returns the declared slots, or nil when the item has no props.
func (t *TemplateItem) Slots() []*Slot {
	if t.Props == nil {
		return nil
	}
	return t.Props.Slots
}

// SlotByName returns the slot with the given name, or nil.
func (t *TemplateItem) SlotByName(name string) *Slot {
	for _, s := range t.Slots() {
		if s != nil && s.Name == name {
			return s
		}
	}
	return nil
}

// PrefabPath returns the asset path, or "" if the item declares none.
func (t *TemplateItem) PrefabPath() string {
	if t.Props == nil || t.Props.Prefab == nil {
		return ""
	}
	return t.Props.Prefab.Path
}

// Clone returns a deep copy so the host catalog never shares slices with the
// reference snapshot.
func (t *TemplateItem) Clone() (*TemplateItem, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	out := &TemplateItem{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
