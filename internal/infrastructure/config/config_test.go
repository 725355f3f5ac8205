package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.WooCommerce.BaseURL = "https://shop.example.com"
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "sales-analytics", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "api", cfg.Source.Mode)
	assert.Equal(t, 100, cfg.WooCommerce.PerPage)
	assert.Equal(t, []string{"completed"}, cfg.WooCommerce.Statuses)
	assert.Equal(t, "city", cfg.Store.IdentificationMethod)
	assert.Equal(t, "_store_id", cfg.Store.MetadataField)
	assert.Equal(t, "EUR", cfg.Report.Currency)
	assert.Equal(t, 10, cfg.Report.TopProducts)
	assert.Equal(t, 10, cfg.Report.TopStores)
	assert.Equal(t, 20, cfg.Report.TopCombinations)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestApplyDefaults_ProductionLogFormat(t *testing.T) {
	cfg := &Config{}
	cfg.App.Env = "production"
	cfg.WooCommerce.BaseURL = "https://shop.example.com"
	applyDefaults(cfg)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			"bad source mode",
			func(c *Config) { c.Source.Mode = "ftp" },
			"source.mode",
		},
		{
			"csv mode without path",
			func(c *Config) { c.Source.Mode = "csv"; c.Source.CSVPath = "" },
			"source.csv_path",
		},
		{
			"api mode without base url",
			func(c *Config) { c.WooCommerce.BaseURL = "" },
			"woocommerce.base_url",
		},
		{
			"invalid base url",
			func(c *Config) { c.WooCommerce.BaseURL = "not a url" },
			"not a valid URL",
		},
		{
			"bad identification method",
			func(c *Config) { c.Store.IdentificationMethod = "zipcode" },
			"identification_method",
		},
		{
			"bad currency",
			func(c *Config) { c.Report.Currency = "EURO" },
			"report.currency",
		},
		{
			"bad cache backend",
			func(c *Config) { c.Cache.Backend = "memcached" },
			"cache.backend",
		},
		{
			"bad database driver",
			func(c *Config) { c.Database.Driver = "mysql" },
			"database.driver",
		},
		{
			"mapping without store",
			func(c *Config) {
				c.Store.Mappings = []StoreMapping{{CityPattern: "Paris"}}
			},
			"store mapping",
		},
		{
			"mapping without any pattern",
			func(c *Config) {
				c.Store.Mappings = []StoreMapping{{Store: "Paris Store"}}
			},
			"store mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_AcceptsMappings(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Mappings = []StoreMapping{
		{CityPattern: "Paris*", Store: "Paris Store"},
		{StatePattern: "IDF", Store: "Paris Store"},
	}
	assert.NoError(t, cfg.validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "sales",
		Password: "secret",
		DBName:   "analytics",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=sales password=secret dbname=analytics sslmode=require",
		d.DSN(),
	)
}
