package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"en", "ru"}, cfg.Backport.Locales)
	assert.Equal(t, []string{"moduleCategories", "weaponCategories"}, cfg.Backport.CategorySets)
	assert.Equal(t, 7500, cfg.Backport.GPCoinPrice)
	assert.True(t, cfg.Backport.RefSellsGPCoin)
	assert.Equal(t, 5*time.Minute, cfg.Backport.LockTTL)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MySQLMaxLife)
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalGCInterval)
	assert.Equal(t, 200, cfg.Security.RateLimitBurst)
	assert.Empty(t, cfg.Security.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
data:
  pack_path: /srv/pack
  host_path: /srv/host
backport:
  locales: [en]
  assort_categories: [cat_scope]
  dry_run: true
  lock_ttl: 30s
database:
  mode: mysql
  mysql_dsn: user:pass@tcp(db:3306)/backport
cache:
  redis_addr: redis:6379
security:
  admin_ips: [10.0.0.1]
  trusted_proxies: [10.0.0.254]
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/pack", cfg.Data.PackPath)
	assert.Equal(t, "/srv/host", cfg.Data.HostPath)
	assert.Equal(t, []string{"en"}, cfg.Backport.Locales)
	assert.Equal(t, []string{"cat_scope"}, cfg.Backport.AssortCategories)
	assert.True(t, cfg.Backport.DryRun)
	assert.Equal(t, 30*time.Second, cfg.Backport.LockTTL)
	assert.Equal(t, "mysql", cfg.Database.Mode)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Security.AdminIPs)
	assert.Equal(t, []string{"10.0.0.254"}, cfg.Security.TrustedProxies)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "./data/out", cfg.Data.OutputPath)
}
