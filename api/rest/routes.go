package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/contentbackport/middleware"
)

// Register mounts the read API on r. The backport routes only answer to
// adminIPs.
func Register(r gin.IRouter, cat *CatalogHandler, bp *BackportHandler, adminIPs []string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/items/:id", cat.Item)
	api.GET("/traders/:id/assort", cat.TraderAssort)
	api.GET("/presets/:id", cat.Preset)

	admin := api.Group("/backport", mw.IPWhitelist(adminIPs))
	admin.GET("/report", bp.Report)
	admin.GET("/status", bp.Status)
	admin.GET("/runs/:id/logs", bp.RunLogs)
}
