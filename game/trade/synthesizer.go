package trade

import (
	"math"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/mongoid"
	"github.com/kasuganosora/contentbackport/resource"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Well-known host IDs.
const (
	RefTraderID = "6617beeaa9cfa777ca915b7c"
	GPCoinTpl   = "5d235b4d86f7742e017bc88a"
	RoublesTpl  = "5449016a4bdc2d6f028b456f"

	DefaultGPCoinPrice = 7500
)

// Host is the read side of the host catalog the synthesizer checks against.
type Host interface {
	HasItem(id string) bool
	TraderHasTemplate(traderID, tpl string) bool
}

// Options tune which items are stocked and how instance IDs are made.
type Options struct {
	// AssortCategories limits stocked items to these parent categories.
	// Empty stocks every new item.
	AssortCategories []string
	// NewID generates instance IDs. Defaults to mongoid.New.
	NewID mongoid.Generator
}

// Synthesizer turns trader cash offers and barters for new items into assort
// entries.
type Synthesizer struct {
	ref    *resource.ReferenceDataSet
	host   Host
	cats   map[string]struct{}
	newID  mongoid.Generator
	logger *zap.Logger
}

func NewSynthesizer(ref *resource.ReferenceDataSet, host Host, opts Options, logger *zap.Logger) *Synthesizer {
	if opts.NewID == nil {
		opts.NewID = mongoid.New
	}
	cats := make(map[string]struct{}, len(opts.AssortCategories))
	for _, c := range opts.AssortCategories {
		cats[c] = struct{}{}
	}
	return &Synthesizer{ref: ref, host: host, cats: cats, newID: opts.NewID, logger: logger}
}

// Synthesize produces one entry per cash offer or barter whose reward is in
// newIDs. Trades for other items are skipped silently; trades whose currency or
// required items resolve nowhere are reported and dropped.
func (svc *Synthesizer) Synthesize(newIDs []string) ([]*model.AssortEntry, []error) {
	stock := svc.stockable(newIDs)
	var (
		entries []*model.AssortEntry
		errs    []error
	)
	for _, tc := range svc.ref.Traders() {
		for _, offer := range tc.CashOffers {
			if _, ok := stock[offer.Item.ID]; !ok {
				continue
			}
			if !svc.resolves(offer.CurrencyItem.ID) {
				errs = append(errs, &model.DanglingReferenceError{Kind: model.RefCurrency, OwnerID: tc.ID + "/" + offer.Item.ID, RefID: offer.CurrencyItem.ID})
				continue
			}
			scheme := []model.BarterScheme{{Count: float64(offer.Price), Tpl: offer.CurrencyItem.ID}}
			entries = append(entries, svc.entry(tc.ID, offer.Item.ID, offer.BuyLimit, offer.Level, scheme))
		}
		for _, barter := range tc.Barters {
			if len(barter.RewardItems) == 0 {
				continue
			}
			reward := barter.RewardItems[0].Item.ID
			if !mongoid.Valid(reward) {
				continue
			}
			if _, ok := stock[reward]; !ok {
				continue
			}
			scheme, err := svc.barterScheme(tc.ID, reward, barter.RequiredItems)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			entries = append(entries, svc.entry(tc.ID, reward, barter.BuyLimit, barter.Level, scheme))
		}
	}
	for _, err := range errs {
		svc.logger.Warn("assort entry dropped", zap.Error(err))
	}
	svc.logger.Info("assort synthesized", zap.Int("entries", len(entries)), zap.Int("dropped", len(errs)))
	return entries, errs
}

// GPCoinOffer returns an unlimited LL1 GP coin entry at Ref for price roubles,
// or false when Ref already stocks GP coins.
func (svc *Synthesizer) GPCoinOffer(price int) (*model.AssortEntry, bool) {
	if svc.host.TraderHasTemplate(RefTraderID, GPCoinTpl) {
		return nil, false
	}
	if price <= 0 {
		price = DefaultGPCoinPrice
	}
	return &model.AssortEntry{
		TraderID: RefTraderID,
		Item: &model.Item{
			ID:       svc.newID(),
			Tpl:      GPCoinTpl,
			ParentID: model.AssortParentID,
			SlotID:   model.AssortSlotID,
			Upd:      &model.Upd{UnlimitedCount: true, StackObjectsCount: model.UnboundedStack},
		},
		SubItems:     []*model.Item{},
		BarterScheme: []model.BarterScheme{{Count: float64(price), Tpl: RoublesTpl}},
		LoyaltyLevel: 1,
	}, true
}

func (svc *Synthesizer) stockable(newIDs []string) map[string]struct{} {
	ids := newIDs
	if len(svc.cats) > 0 {
		ids = lo.Filter(newIDs, func(id string, _ int) bool {
			it, ok := svc.ref.Item(id)
			if !ok {
				return false
			}
			_, in := svc.cats[it.Parent]
			return in
		})
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (svc *Synthesizer) resolves(id string) bool {
	return svc.ref.HasItem(id) || svc.host.HasItem(id)
}

func (svc *Synthesizer) barterScheme(traderID, reward string, required []model.BarterItem) ([]model.BarterScheme, error) {
	scheme := make([]model.BarterScheme, 0, len(required))
	for _, req := range required {
		if !svc.resolves(req.Item.ID) {
			return nil, &model.DanglingReferenceError{Kind: model.RefRequired, OwnerID: traderID + "/" + reward, RefID: req.Item.ID}
		}
		scheme = append(scheme, model.BarterScheme{Count: RoundCount(req.Count), Tpl: req.Item.ID})
	}
	return scheme, nil
}

func (svc *Synthesizer) entry(traderID, tpl string, buyLimit, level int, scheme []model.BarterScheme) *model.AssortEntry {
	limit := buyLimit
	current := 0
	return &model.AssortEntry{
		TraderID: traderID,
		Item: &model.Item{
			ID:       svc.newID(),
			Tpl:      tpl,
			ParentID: model.AssortParentID,
			SlotID:   model.AssortSlotID,
			Upd: &model.Upd{
				UnlimitedCount:        true,
				StackObjectsCount:     model.UnboundedStack,
				BuyRestrictionMax:     &limit,
				BuyRestrictionCurrent: &current,
			},
		},
		SubItems:     []*model.Item{},
		BarterScheme: scheme,
		LoyaltyLevel: level,
	}
}

// RoundCount rounds a barter quantity half to even: 2.5 → 2, 3.5 → 4.
func RoundCount(n float64) float64 {
	return math.RoundToEven(n)
}
