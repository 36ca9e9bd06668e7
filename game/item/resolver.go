package item

import (
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/resource"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// HostIndex is the read side of the host catalog used for novelty and handbook
// placement.
type HostIndex interface {
	HasItem(id string) bool
	HandbookParent(id string) string
}

// Resolution is the outcome of resolving one batch of in-scope candidates.
type Resolution struct {
	Details  []*model.ItemDetail
	NewIDs   []string // IDs with a detail, in candidate order
	Existing []string // candidates already registered in the host
	Errors   []error  // one per failed new candidate

	newSet map[string]struct{}
}

// IsNew reports whether id resolved to a new item.
func (r *Resolution) IsNew(id string) bool {
	_, ok := r.newSet[id]
	return ok
}

// NewSet returns a copy of the resolved new-item IDs as a set.
func (r *Resolution) NewSet() map[string]struct{} {
	out := make(map[string]struct{}, len(r.newSet))
	for id := range r.newSet {
		out[id] = struct{}{}
	}
	return out
}

// Resolver classifies candidates as new or existing and derives the detail
// record of each new one.
type Resolver struct {
	ref     *resource.ReferenceDataSet
	host    HostIndex
	locales []string
	logger  *zap.Logger
}

// NewResolver creates a Resolver requiring a name for every locale listed.
func NewResolver(ref *resource.ReferenceDataSet, host HostIndex, locales []string, logger *zap.Logger) *Resolver {
	return &Resolver{ref: ref, host: host, locales: lo.Uniq(locales), logger: logger}
}

// Resolve processes candidates in order. A failing candidate is reported in
// Errors and does not affect the others.
func (svc *Resolver) Resolve(candidates []*model.TemplateItem) *Resolution {
	res := &Resolution{newSet: map[string]struct{}{}}
	for _, c := range candidates {
		if svc.host.HasItem(c.ID) {
			res.Existing = append(res.Existing, c.ID)
			continue
		}
		d, err := svc.ResolveItem(c)
		if err != nil {
			svc.logger.Warn("item not resolved", zap.String("item_id", c.ID), zap.Error(err))
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Details = append(res.Details, d)
		res.NewIDs = append(res.NewIDs, c.ID)
		res.newSet[c.ID] = struct{}{}
	}
	svc.logger.Info("items resolved",
		zap.Int("new", len(res.Details)),
		zap.Int("existing", len(res.Existing)),
		zap.Int("failed", len(res.Errors)))
	return res
}

// ResolveItem builds the detail record of a single new candidate.
func (svc *Resolver) ResolveItem(c *model.TemplateItem) (*model.ItemDetail, error) {
	price, ok := svc.ref.Price(c.ID)
	if !ok {
		return nil, &model.MissingPriceError{ItemID: c.ID}
	}

	locales := make(map[string]model.LocaleDetails, len(svc.locales))
	for _, lang := range svc.locales {
		loc, ok := svc.ref.Locale(lang, c.ID)
		if !ok {
			return nil, &model.MissingLocaleError{ItemID: c.ID, Locale: lang}
		}
		locales[lang] = loc.Details()
	}

	// An unknown prototype has no handbook entry and yields an empty parent.
	var parent string
	if c.Prototype != "" {
		parent = svc.host.HandbookParent(c.Prototype)
	}
	return &model.ItemDetail{
		NewItem:              c,
		FleaPriceRoubles:     price,
		HandbookPriceRoubles: price,
		HandbookParentID:     parent,
		Locales:              locales,
	}, nil
}
