package compat

import (
	"slices"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/resource"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ItemIndex answers whether a template is registered in the host catalog.
type ItemIndex interface {
	HasItem(id string) bool
}

// Novelty reports which candidates resolved to new items.
type Novelty interface {
	IsNew(id string) bool
}

// Builder computes conflict and slot-compatibility additions per candidate.
// Only IDs the host does not know yet are ever part of a delta.
type Builder struct {
	ref    *resource.ReferenceDataSet
	host   ItemIndex
	logger *zap.Logger
}

func NewBuilder(ref *resource.ReferenceDataSet, host ItemIndex, logger *zap.Logger) *Builder {
	return &Builder{ref: ref, host: host, logger: logger}
}

type slotRef struct {
	slot string
	id   string
}

// Build returns one delta per new candidate and one per existing candidate with
// at least one addition. Candidates that are neither registered nor resolved
// are skipped, and a delta naming an unknown ID is dropped with an error.
func (svc *Builder) Build(candidates []*model.TemplateItem, novelty Novelty) ([]*model.CompatibilityDelta, []error) {
	var (
		deltas []*model.CompatibilityDelta
		errs   []error
	)
	for _, c := range candidates {
		isNew := novelty.IsNew(c.ID)
		if !isNew && !svc.host.HasItem(c.ID) {
			svc.logger.Debug("compat skipped unresolved item", zap.String("item_id", c.ID))
			continue
		}
		d := svc.delta(c, isNew)
		if err := svc.checkRefs(d); err != nil {
			svc.logger.Warn("compat delta dropped", zap.String("item_id", c.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if !isNew && d.Empty() {
			continue
		}
		deltas = append(deltas, d)
	}
	svc.logger.Info("compat deltas built", zap.Int("deltas", len(deltas)), zap.Int("dropped", len(errs)))
	return deltas, errs
}

func (svc *Builder) delta(c *model.TemplateItem, isNew bool) *model.CompatibilityDelta {
	conflicts := lo.Uniq(lo.Filter(c.ConflictingItems(), func(id string, _ int) bool {
		return !svc.host.HasItem(id)
	}))

	refs := lo.FlatMap(c.Slots(), func(s *model.Slot, _ int) []slotRef {
		if s == nil {
			return nil
		}
		return lo.FilterMap(s.FilterIDs(), func(id string, _ int) (slotRef, bool) {
			return slotRef{slot: s.Name, id: id}, !svc.host.HasItem(id)
		})
	})
	grouped := lo.GroupBy(refs, func(r slotRef) string { return r.slot })
	compatible := lo.MapValues(grouped, func(rs []slotRef, _ string) []string {
		return lo.Uniq(lo.Map(rs, func(r slotRef, _ int) string { return r.id }))
	})

	if conflicts == nil {
		conflicts = []string{}
	}
	return &model.CompatibilityDelta{
		ID:               c.ID,
		Name:             c.Name,
		IsNew:            isNew,
		ConflictingItems: conflicts,
		CompatibleItems:  compatible,
	}
}

// checkRefs requires every delta ID to be a pack item, since none are in the host.
func (svc *Builder) checkRefs(d *model.CompatibilityDelta) error {
	for _, id := range d.ConflictingItems {
		if !svc.ref.HasItem(id) {
			return &model.DanglingReferenceError{Kind: model.RefConflict, OwnerID: d.ID, RefID: id}
		}
	}
	slots := lo.Keys(d.CompatibleItems)
	slices.Sort(slots)
	for _, slot := range slots {
		for _, id := range d.CompatibleItems[slot] {
			if !svc.ref.HasItem(id) {
				return &model.DanglingReferenceError{Kind: model.RefCompatible, OwnerID: d.ID + "/" + slot, RefID: id}
			}
		}
	}
	return nil
}
