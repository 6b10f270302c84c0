package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ordering system
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Payment    PaymentConfig    `yaml:"payment"`
	Dashboards DashboardsConfig `yaml:"dashboards"`
	Printing   PrintingConfig   `yaml:"printing"`
	Access     AccessConfig     `yaml:"access"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig selects and configures the record store backend
type StorageConfig struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PaymentConfig holds payment gateway configuration
type PaymentConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	AccessToken string `yaml:"access_token"`
}

// DashboardsConfig holds poll intervals for the operator dashboards
// and the address of the API service they talk to. Dashboards never
// open the store themselves; all reads and transitions go through the
// API so concurrent operators are serialized in one place.
type DashboardsConfig struct {
	APIURL             string `yaml:"api_url"`
	KitchenPollSeconds int    `yaml:"kitchen_poll_seconds"`
	DriverPollSeconds  int    `yaml:"driver_poll_seconds"`
}

// PrintingConfig holds kitchen-ticket printing configuration
type PrintingConfig struct {
	AutoPrint bool `yaml:"auto_print"`
}

// AccessConfig holds the placeholder access gating values
type AccessConfig struct {
	AdminSecret string   `yaml:"admin_secret"`
	DriverIDs   []string `yaml:"driver_ids"`
}

// Load reads configuration from a YAML file. Values of the form ${VAR}
// are expanded from the environment, so secrets stay out of the file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal([]byte(os.Expand(string(data), os.Getenv)), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "jsonfile"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Payment.BaseURL == "" {
		c.Payment.BaseURL = "https://api.mercadopago.com"
	}
	if c.Dashboards.KitchenPollSeconds == 0 {
		c.Dashboards.KitchenPollSeconds = 5
	}
	if c.Dashboards.DriverPollSeconds == 0 {
		c.Dashboards.DriverPollSeconds = 20
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "jsonfile", "postgres":
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Database.Host == "" {
		return fmt.Errorf("database.host is required for the postgres backend")
	}
	return nil
}

// KitchenPollInterval returns the kitchen dashboard refresh interval
func (c *Config) KitchenPollInterval() time.Duration {
	return time.Duration(c.Dashboards.KitchenPollSeconds) * time.Second
}

// DriverPollInterval returns the driver dashboard refresh interval
func (c *Config) DriverPollInterval() time.Duration {
	return time.Duration(c.Dashboards.DriverPollSeconds) * time.Second
}

// APIBaseURL returns the address the dashboards use to reach the API
// service, defaulting to the configured server port on localhost
func (c *Config) APIBaseURL() string {
	if c.Dashboards.APIURL != "" {
		return c.Dashboards.APIURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
