package merge

import (
	"errors"
	"slices"

	"github.com/kasuganosora/contentbackport/audit"
	"github.com/kasuganosora/contentbackport/catalog"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Merge stages, in the order they are applied.
const (
	StageItem   = "item"
	StagePreset = "preset"
	StageCompat = "compat"
	StageAssort = "assort"
)

// Recorder receives one entry per merged entity.
type Recorder interface {
	Log(entry audit.Entry)
}

// Input is everything one run wants merged into the host catalog.
type Input struct {
	Details []*model.ItemDetail
	Presets []*model.Preset
	Deltas  []*model.CompatibilityDelta
	Assort  []*model.AssortEntry
}

// Failure is one entity whose merge was aborted.
type Failure struct {
	Stage    string `json:"stage"`
	EntityID string `json:"entityId"`
	Error    string `json:"error"`
}

// Report counts what a merge did.
type Report struct {
	RunID            string    `json:"runId"`
	ItemsCreated     int       `json:"itemsCreated"`
	ItemsSkipped     int       `json:"itemsSkipped"`
	PresetsAdded     int       `json:"presetsAdded"`
	PresetsSkipped   int       `json:"presetsSkipped"`
	DeltasApplied    int       `json:"deltasApplied"`
	ConflictsAdded   int       `json:"conflictsAdded"`
	SlotFiltersAdded int       `json:"slotFiltersAdded"`
	AssortAdded      int       `json:"assortAdded"`
	AssortSkipped    int       `json:"assortSkipped"`
	Failures         []Failure `json:"failures"`
}

// Applier writes resolved items, presets, compatibility deltas and assort
// entries into the host catalog. A failing entity is reported and skipped; the
// rest still merge.
type Applier struct {
	host   catalog.Catalog
	rec    Recorder
	logger *zap.Logger
}

// NewApplier creates an Applier. rec may be nil.
func NewApplier(host catalog.Catalog, rec Recorder, logger *zap.Logger) *Applier {
	return &Applier{host: host, rec: rec, logger: logger}
}

// Apply merges in into the host. Running it again with the same input adds
// nothing.
func (svc *Applier) Apply(runID string, in Input) *Report {
	rep := &Report{RunID: runID, Failures: []Failure{}}
	for _, d := range in.Details {
		svc.applyItem(rep, d)
	}
	for _, p := range in.Presets {
		svc.applyPreset(rep, p)
	}
	for _, d := range in.Deltas {
		svc.applyDelta(rep, d)
	}
	for _, e := range in.Assort {
		svc.applyAssort(rep, e)
	}
	svc.logger.Info("merge applied",
		zap.String("run_id", runID),
		zap.Int("items_created", rep.ItemsCreated),
		zap.Int("deltas_applied", rep.DeltasApplied),
		zap.Int("assort_added", rep.AssortAdded),
		zap.Int("failures", len(rep.Failures)))
	return rep
}

func (svc *Applier) applyItem(rep *Report, d *model.ItemDetail) {
	id := d.ItemID()
	err := svc.host.CreateItem(d)
	switch {
	case errors.Is(err, model.ErrItemExists):
		rep.ItemsSkipped++
		svc.record(rep, StageItem, id, model.OutcomeSkipped, nil, nil)
	case err != nil:
		svc.fail(rep, StageItem, id, err)
	default:
		rep.ItemsCreated++
		svc.record(rep, StageItem, id, model.OutcomeApplied, nil, map[string]interface{}{
			"price":          d.FleaPriceRoubles,
			"handbookParent": d.HandbookParentID,
		})
	}
}

func (svc *Applier) applyPreset(rep *Report, p *model.Preset) {
	added, err := svc.host.AddPreset(p)
	switch {
	case err != nil:
		svc.fail(rep, StagePreset, p.ID, err)
	case !added:
		rep.PresetsSkipped++
		svc.record(rep, StagePreset, p.ID, model.OutcomeSkipped, nil, nil)
	default:
		rep.PresetsAdded++
		svc.record(rep, StagePreset, p.ID, model.OutcomeApplied, nil, nil)
	}
}

func (svc *Applier) applyDelta(rep *Report, d *model.CompatibilityDelta) {
	slots := lo.Keys(d.CompatibleItems)
	slices.Sort(slots)
	if err := svc.checkDelta(d, slots); err != nil {
		svc.fail(rep, StageCompat, d.ID, err)
		return
	}

	conflicts, err := svc.host.AppendConflictingItems(d.ID, d.ConflictingItems)
	if err != nil {
		svc.fail(rep, StageCompat, d.ID, err)
		return
	}
	filters := 0
	for _, slot := range slots {
		n, err := svc.host.AppendSlotFilter(d.ID, slot, d.CompatibleItems[slot])
		if err != nil {
			svc.fail(rep, StageCompat, d.ID, err)
			return
		}
		filters += n
	}

	rep.ConflictsAdded += conflicts
	rep.SlotFiltersAdded += filters
	outcome := model.OutcomeSkipped
	if conflicts+filters > 0 {
		rep.DeltasApplied++
		outcome = model.OutcomeApplied
	}
	svc.record(rep, StageCompat, d.ID, outcome, nil, map[string]int{"conflicts": conflicts, "slotFilters": filters})
}

// checkDelta verifies the target item and every slot exist before anything is
// appended, so a bad delta leaves the item untouched.
func (svc *Applier) checkDelta(d *model.CompatibilityDelta, slots []string) error {
	it, ok := svc.host.Item(d.ID)
	if !ok {
		return &model.DanglingReferenceError{Kind: model.RefItem, OwnerID: "compatibility delta", RefID: d.ID}
	}
	for _, slot := range slots {
		if it.SlotByName(slot) == nil {
			return &model.DanglingReferenceError{Kind: model.RefSlot, OwnerID: d.ID, RefID: slot}
		}
	}
	return nil
}

func (svc *Applier) applyAssort(rep *Report, e *model.AssortEntry) {
	id := ""
	if e.Item != nil {
		id = e.Item.ID
	}
	if !svc.host.HasTrader(e.TraderID) {
		svc.fail(rep, StageAssort, id, &model.DanglingReferenceError{Kind: model.RefTrader, OwnerID: id, RefID: e.TraderID})
		return
	}
	added, err := svc.host.AddAssortEntry(e)
	switch {
	case err != nil:
		svc.fail(rep, StageAssort, id, err)
	case !added:
		rep.AssortSkipped++
		svc.record(rep, StageAssort, id, model.OutcomeSkipped, nil, nil)
	default:
		rep.AssortAdded++
		svc.record(rep, StageAssort, id, model.OutcomeApplied, nil, map[string]interface{}{
			"traderId": e.TraderID,
			"tpl":      e.Item.Tpl,
			"level":    e.LoyaltyLevel,
		})
	}
}

func (svc *Applier) fail(rep *Report, stage, entityID string, err error) {
	svc.logger.Warn("merge failed",
		zap.String("stage", stage),
		zap.String("entity_id", entityID),
		zap.Error(err))
	rep.Failures = append(rep.Failures, Failure{Stage: stage, EntityID: entityID, Error: err.Error()})
	svc.record(rep, stage, entityID, model.OutcomeFailed, err, nil)
}

func (svc *Applier) record(rep *Report, stage, entityID, outcome string, err error, detail interface{}) {
	if svc.rec == nil {
		return
	}
	svc.rec.Log(audit.Entry{
		RunID:    rep.RunID,
		Stage:    stage,
		EntityID: entityID,
		Outcome:  outcome,
		Err:      err,
		Detail:   detail,
	})
}
