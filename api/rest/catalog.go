package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/contentbackport/catalog"
	mw "github.com/kasuganosora/contentbackport/middleware"
	"github.com/kasuganosora/contentbackport/model"
)

// CatalogHandler serves read-only views of the merged host catalog.
type CatalogHandler struct {
	host *catalog.Tables
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(host *catalog.Tables) *CatalogHandler {
	return &CatalogHandler{host: host}
}

type itemView struct {
	Item     *model.TemplateItem            `json:"item"`
	Handbook *catalog.HandbookItem          `json:"handbook,omitempty"`
	Price    *int                           `json:"price,omitempty"`
	Locales  map[string]model.LocaleDetails `json:"locales"`
}

// Item handles GET /api/items/:id.
func (h *CatalogHandler) Item(c *gin.Context) {
	id := c.Param("id")
	it, ok := h.host.Item(id)
	if !ok {
		mw.Abort(c, http.StatusNotFound, "item not found")
		return
	}
	view := itemView{Item: it, Locales: map[string]model.LocaleDetails{}}
	if hi, ok := h.host.HandbookItem(id); ok {
		view.Handbook = &hi
	}
	if p, ok := h.host.Price(id); ok {
		view.Price = &p
	}
	for _, lang := range h.host.Languages() {
		if text, ok := h.host.LocaleText(lang, id); ok {
			view.Locales[lang] = text
		}
	}
	c.JSON(http.StatusOK, view)
}

// TraderAssort handles GET /api/traders/:id/assort.
func (h *CatalogHandler) TraderAssort(c *gin.Context) {
	tr, ok := h.host.TraderAssort(c.Param("id"))
	if !ok {
		mw.Abort(c, http.StatusNotFound, "trader not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trader":            tr.Base,
		"items":             tr.Assort.Items,
		"barter_scheme":     tr.Assort.BarterScheme,
		"loyal_level_items": tr.Assort.LoyalLevelItems,
	})
}

// Preset handles GET /api/presets/:id.
func (h *CatalogHandler) Preset(c *gin.Context) {
	p, ok := h.host.Preset(c.Param("id"))
	if !ok {
		mw.Abort(c, http.StatusNotFound, "preset not found")
		return
	}
	c.JSON(http.StatusOK, p)
}
