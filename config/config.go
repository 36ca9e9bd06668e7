package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Backport BackportConfig `mapstructure:"backport"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
	Serve bool `mapstructure:"serve"` // keep the read API running after the merge
}

type DataConfig struct {
	PackPath   string `mapstructure:"pack_path"`   // supplemental content pack
	HostPath   string `mapstructure:"host_path"`   // host database directory
	OutputPath string `mapstructure:"output_path"` // generator output; empty disables it
}

type BackportConfig struct {
	Locales          []string      `mapstructure:"locales"`
	CategorySets     []string      `mapstructure:"category_sets"`
	AssortCategories []string      `mapstructure:"assort_categories"`
	RefSellsGPCoin   bool          `mapstructure:"ref_sells_gp_coin"`
	GPCoinPrice      int           `mapstructure:"gp_coin_price"`
	DryRun           bool          `mapstructure:"dry_run"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	RedisKeyPrefix  string        `mapstructure:"redis_key_prefix"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	AdminIPs       []string `mapstructure:"admin_ips"`
	// TrustedProxies may set X-Forwarded-For and X-Real-IP. Empty trusts none.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.serve", false)
	v.SetDefault("data.pack_path", "./data/pack")
	v.SetDefault("data.host_path", "./data/host")
	v.SetDefault("data.output_path", "")
	v.SetDefault("backport.locales", []string{"en", "ru"})
	v.SetDefault("backport.category_sets", []string{"moduleCategories", "weaponCategories"})
	v.SetDefault("backport.assort_categories", []string{})
	v.SetDefault("backport.ref_sells_gp_coin", true)
	v.SetDefault("backport.gp_coin_price", 7500)
	v.SetDefault("backport.dry_run", false)
	v.SetDefault("backport.lock_ttl", "5m")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/backport.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("security.admin_ips", []string{"127.0.0.1", "::1"})
	v.SetDefault("security.trusted_proxies", []string{})

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
