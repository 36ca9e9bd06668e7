package category

import (
	"github.com/kasuganosora/contentbackport/model"
	"github.com/samber/lo"
)

// Filter admits candidates whose parent category is on an ordered whitelist.
// Membership is exact ID equality; the category tree is not walked.
type Filter struct {
	whitelist []string
	members   map[string]struct{}
}

// NewFilter builds a Filter over whitelist. Duplicates are ignored.
func NewFilter(whitelist []string) *Filter {
	wl := lo.Uniq(whitelist)
	members := make(map[string]struct{}, len(wl))
	for _, id := range wl {
		members[id] = struct{}{}
	}
	return &Filter{whitelist: wl, members: members}
}

// Allows reports whether parent is on the whitelist.
func (f *Filter) Allows(parent string) bool {
	_, ok := f.members[parent]
	return ok
}

// Apply returns the candidates in scope, keeping input order.
func (f *Filter) Apply(candidates []*model.TemplateItem) []*model.TemplateItem {
	return lo.Filter(candidates, func(it *model.TemplateItem, _ int) bool {
		return it != nil && f.Allows(it.Parent)
	})
}

// Whitelist returns the deduplicated whitelist in configured order.
func (f *Filter) Whitelist() []string {
	return append([]string(nil), f.whitelist...)
}

func (f *Filter) Empty() bool { return len(f.whitelist) == 0 }
