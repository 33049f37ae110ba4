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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
data_service:
  driver: soap
  client_url: http://erp.local/DataService.asmx
  timeout: 5s
portal:
  timezone: UTC
  notice_buffer: 10
logger:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, "http://erp.local/DataService.asmx", cfg.DataService.ClientURL)
	assert.Equal(t, 5*time.Second, cfg.DataService.Timeout)
	assert.Equal(t, "VENDOR_MASTER", cfg.DataService.SupplierModel)
	assert.Equal(t, "INVT_PURCHASE_QUOTMASTER", cfg.DataService.QuotationModel)
	assert.Equal(t, "SELECTED_VENDOR", cfg.DataService.VendorColumn)
	assert.Equal(t, "02-Jan-2006", cfg.Portal.DateLayout)
	assert.Equal(t, 10, cfg.Portal.NoticeBuffer)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "rfq-portal", cfg.Logger.Service)

	loc, err := cfg.Portal.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RFQ_DATA_SERVICE_DRIVER", "sqlite")
	t.Setenv("RFQ_DATABASE_PATH", "/tmp/portal.db")
	t.Setenv("RFQ_LOGGER_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DataService.Driver)
	assert.Equal(t, "/tmp/portal.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_ClientURLAlias(t *testing.T) {
	t.Setenv("CLIENT_URL", "http://alias.local/ws")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://alias.local/ws", cfg.DataService.ClientURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			DataService: DataServiceConfig{
				Driver:         DriverSOAP,
				ClientURL:      "http://erp.local",
				SupplierModel:  "VENDOR_MASTER",
				QuotationModel: "INVT_PURCHASE_QUOTMASTER",
				VendorColumn:   "SELECTED_VENDOR",
			},
			Database: DatabaseConfig{Path: "data/rfq.db"},
			Portal:   PortalConfig{Timezone: "UTC", DateLayout: "02-Jan-2006", NoticeBuffer: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid soap", func(c *Config) {}, false},
		{"valid sqlite without url", func(c *Config) { c.DataService.Driver = DriverSQLite; c.DataService.ClientURL = "" }, false},
		{"soap without url", func(c *Config) { c.DataService.ClientURL = "" }, true},
		{"unknown driver", func(c *Config) { c.DataService.Driver = "rest" }, true},
		{"sqlite without path", func(c *Config) { c.DataService.Driver = DriverSQLite; c.Database.Path = "" }, true},
		{"bad timezone", func(c *Config) { c.Portal.Timezone = "Mars/Olympus" }, true},
		{"zero notice buffer", func(c *Config) { c.Portal.NoticeBuffer = 0 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing vendor column", func(c *Config) { c.DataService.VendorColumn = "" }, true},
		{"vendor column not an identifier", func(c *Config) { c.DataService.VendorColumn = "VENDOR; DROP" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
