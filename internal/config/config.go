package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/rfq-portal/pkg/utils"
)

// Data service drivers
const (
	DriverSOAP   = "soap"
	DriverSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	DataService DataServiceConfig `mapstructure:"data_service"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Portal      PortalConfig      `mapstructure:"portal"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DataServiceConfig selects and configures the backend the portal reads from
type DataServiceConfig struct {
	Driver         string        `mapstructure:"driver"`
	ClientURL      string        `mapstructure:"client_url"`
	SOAPNamespace  string        `mapstructure:"soap_namespace"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SupplierModel  string        `mapstructure:"supplier_model"`
	QuotationModel string        `mapstructure:"quotation_model"`
	VendorColumn   string        `mapstructure:"vendor_column"`
}

// DatabaseConfig holds the local sqlite store used by the sqlite driver
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty uses the embedded schema
	FixturesPath    string        `mapstructure:"fixtures_path"`
}

// PortalConfig holds presentation settings
type PortalConfig struct {
	Timezone     string `mapstructure:"timezone"`
	DateLayout   string `mapstructure:"date_layout"`
	NoticeBuffer int    `mapstructure:"notice_buffer"`
	LoadOnStart  bool   `mapstructure:"load_on_start"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
	Service    string `mapstructure:"service"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment keys use the RFQ_ prefix, e.g. RFQ_DATA_SERVICE_DRIVER.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RFQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("data_service.driver", DriverSOAP)
	v.SetDefault("data_service.soap_namespace", "http://tempuri.org/")
	v.SetDefault("data_service.timeout", 30*time.Second)
	v.SetDefault("data_service.supplier_model", "VENDOR_MASTER")
	v.SetDefault("data_service.quotation_model", "INVT_PURCHASE_QUOTMASTER")
	v.SetDefault("data_service.vendor_column", "SELECTED_VENDOR")

	v.SetDefault("database.path", "data/rfq.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")
	v.SetDefault("database.fixtures_path", "")

	v.SetDefault("portal.timezone", "Local")
	v.SetDefault("portal.date_layout", "02-Jan-2006")
	v.SetDefault("portal.notice_buffer", 50)
	v.SetDefault("portal.load_on_start", true)

	logDefaults := utils.DefaultLoggerConfig()
	v.SetDefault("logger.level", logDefaults.Level)
	v.SetDefault("logger.output_path", logDefaults.OutputPath)
	v.SetDefault("logger.format", logDefaults.Format)
	v.SetDefault("logger.service", logDefaults.Service)
}

// bindEnvVars binds the unprefixed CLIENT_URL used by existing deployments
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("data_service.client_url", "RFQ_DATA_SERVICE_CLIENT_URL", "CLIENT_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.DataService.Driver {
	case DriverSOAP:
		if c.DataService.ClientURL == "" {
			return fmt.Errorf("data_service.client_url is required for the soap driver")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown data_service.driver %q", c.DataService.Driver)
	}

	if c.DataService.SupplierModel == "" || c.DataService.QuotationModel == "" {
		return fmt.Errorf("data_service supplier_model and quotation_model are required")
	}
	if err := utils.ValidateIdentifier(c.DataService.VendorColumn); err != nil {
		return fmt.Errorf("data_service.vendor_column: %w", err)
	}

	if _, err := c.Portal.Location(); err != nil {
		return err
	}
	if c.Portal.DateLayout == "" {
		return fmt.Errorf("portal.date_layout is required")
	}
	if c.Portal.NoticeBuffer <= 0 {
		return fmt.Errorf("portal.notice_buffer must be positive")
	}

	return nil
}

// Location resolves the configured timezone. "Local" and "" mean time.Local.
func (p PortalConfig) Location() (*time.Location, error) {
	if p.Timezone == "" || p.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid portal.timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// Address returns the HTTP listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
