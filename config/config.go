// Package config provides configuration management for the ePay checkout
// connector. Configuration can be loaded from YAML files and overridden by
// environment variables.
package config

import (
	"fmt"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"

	"epaygate/entity"
)

// Config holds all configuration for the connector. Values can be set via
// YAML configuration file or environment variables; environment variables
// take precedence over YAML values. The gateway section is only a fallback:
// persisted settings from the settings store win when present.
type Config struct {
	IsDebug    bool  `yaml:"is_debug" env:"DEBUG" env-default:"false"`
	LogRecords int64 `yaml:"log_records" env:"LOG_RECORDS" env-default:"0"`
	Listen     struct {
		BindIP   string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"PORT" env-default:"5200"`
		TLS      bool   `yaml:"tls_enabled" env:"TLS_ENABLED" env-default:"false"`
		CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE" env-default:""`
		KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE" env-default:""`
	} `yaml:"listen"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:""`
	} `yaml:"mongo"`
	Gateway struct {
		MerchantNumber          string  `yaml:"merchant_number" env:"GATEWAY_MERCHANT_NUMBER" env-default:""`
		DealerEmail             string  `yaml:"dealer_email" env:"GATEWAY_DEALER_EMAIL" env-default:""`
		SecretKey               string  `yaml:"secret_key" env:"GATEWAY_SECRET_KEY" env-default:""`
		UseSandbox              bool    `yaml:"use_sandbox" env:"GATEWAY_USE_SANDBOX" env-default:"true"`
		EnableEpay              bool    `yaml:"enable_epay" env:"GATEWAY_ENABLE_EPAY" env-default:"true"`
		EnableEasyPay           bool    `yaml:"enable_easypay" env:"GATEWAY_ENABLE_EASYPAY" env-default:"true"`
		ExpiryDays              int     `yaml:"expiry_days" env:"GATEWAY_EXPIRY_DAYS" env-default:"1"`
		AdditionalFee           float64 `yaml:"additional_fee" env:"GATEWAY_ADDITIONAL_FEE" env-default:"0"`
		AdditionalFeePercentage bool    `yaml:"additional_fee_percentage" env:"GATEWAY_ADDITIONAL_FEE_PERCENTAGE" env-default:"false"`
		Language                string  `yaml:"language" env:"GATEWAY_LANGUAGE" env-default:"bg"`
		PrimaryCurrency         string  `yaml:"primary_currency" env:"PRIMARY_CURRENCY" env-default:"BGN"`
		StoreUrl                string  `yaml:"store_url" env:"STORE_URL" env-default:"http://localhost:5200"`
		OrderDescription        string  `yaml:"order_description" env:"GATEWAY_ORDER_DESCRIPTION" env-default:"Payment for order "`
	} `yaml:"gateway"`
}

var instance *Config
var once sync.Once

// GetConfig loads configuration from the specified YAML file path.
// Configuration values can be overridden by environment variables.
// This function uses a singleton pattern and only loads the config once.
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("load config: %w; %s", err, desc)
			instance = nil
		}
	})
	return instance, err
}

// GatewaySettings maps the gateway section to the settings entity. Used as a
// fallback when no persisted settings exist in the settings store.
func (c *Config) GatewaySettings() *entity.GatewaySettings {
	return &entity.GatewaySettings{
		MerchantNumber:          c.Gateway.MerchantNumber,
		DealerEmail:             c.Gateway.DealerEmail,
		SecretKey:               c.Gateway.SecretKey,
		UseSandbox:              c.Gateway.UseSandbox,
		EnableEpay:              c.Gateway.EnableEpay,
		EnableEasyPay:           c.Gateway.EnableEasyPay,
		ExpiryDays:              c.Gateway.ExpiryDays,
		AdditionalFee:           c.Gateway.AdditionalFee,
		AdditionalFeePercentage: c.Gateway.AdditionalFeePercentage,
		Language:                c.Gateway.Language,
		StoreUrl:                c.Gateway.StoreUrl,
		OrderDescription:        c.Gateway.OrderDescription,
	}
}
