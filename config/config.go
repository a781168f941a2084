package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port string `json:"port" envconfig:"FINPAY_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"FINPAY_DATA_SOURCE_DNS"`
}

// GatewayConfig carries the BIND API credentials and endpoints.
type GatewayConfig struct {
	ClientID           string `json:"client_id" envconfig:"FINPAY_BIND_CLIENT_ID"`
	ClientSecret       string `json:"client_secret" envconfig:"FINPAY_BIND_CLIENT_SECRET"`
	TokenURL           string `json:"token_url" envconfig:"FINPAY_BIND_TOKEN_URL"`
	APIURL             string `json:"api_url" envconfig:"FINPAY_BIND_API_URL"`
	Scope              string `json:"scope" envconfig:"FINPAY_BIND_SCOPE"`
	OriginCVU          string `json:"origin_cvu" envconfig:"FINPAY_BIND_ORIGIN_CVU"`
	EnableRealTransfer bool   `json:"enable_real_transfer" envconfig:"FINPAY_BIND_ENABLE_REAL_TRANSFER"`
	TokenTTLSeconds    int    `json:"token_ttl_seconds" envconfig:"FINPAY_BIND_TOKEN_TTL_SECONDS"`
}

// SettlementConfig holds the tax parameters applied by the fund split
// calculator. VATPercent applies to the manufacturer subsidy deduction.
type SettlementConfig struct {
	VATPercent  float64 `json:"vat_percent" envconfig:"FINPAY_SETTLEMENT_VAT_PERCENT"`
	SubsidyName string  `json:"subsidy_name" envconfig:"FINPAY_SETTLEMENT_SUBSIDY_NAME"`
}

// SweepConfig configures the daily balance sweep: the funding account is
// drained, commission and VAT are retained, 90% of the net goes to the
// partner account and the remainder to the platform account.
type SweepConfig struct {
	OriginCVU         string  `json:"origin_cvu" envconfig:"FINPAY_SWEEP_ORIGIN_CVU"`
	PartnerCVU        string  `json:"partner_cvu" envconfig:"FINPAY_SWEEP_PARTNER_CVU"`
	PlatformCVU       string  `json:"platform_cvu" envconfig:"FINPAY_SWEEP_PLATFORM_CVU"`
	CommissionPercent float64 `json:"commission_percent" envconfig:"FINPAY_SWEEP_COMMISSION_PERCENT"`
	VATPercent        float64 `json:"vat_percent" envconfig:"FINPAY_SWEEP_VAT_PERCENT"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"FINPAY_SLACK_WEBHOOK_URL"`
}

type EmailConfig struct {
	Host        string `json:"host" envconfig:"FINPAY_MAIL_HOST"`
	Port        int    `json:"port" envconfig:"FINPAY_MAIL_PORT"`
	Username    string `json:"username" envconfig:"FINPAY_MAIL_USERNAME"`
	Password    string `json:"password" envconfig:"FINPAY_MAIL_PASSWORD"`
	Destination string `json:"destination" envconfig:"FINPAY_MAIL_DESTINATION"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
	Email EmailConfig  `json:"email"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"FINPAY_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Gateway      GatewayConfig    `json:"gateway"`
	Settlement   SettlementConfig `json:"settlement"`
	Sweep        SweepConfig      `json:"sweep"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("finpay", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called finpay.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "FinPay Settlement"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Gateway.TokenURL == "" {
		log.Println("Error: Gateway token URL is empty. It's a required field.")
		return errors.New("gateway token URL is required")
	}

	if cnf.Gateway.APIURL == "" {
		log.Println("Error: Gateway API URL is empty. It's a required field.")
		return errors.New("gateway API URL is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Gateway.APIURL = strings.TrimSpace(cnf.Gateway.APIURL)
	cnf.Gateway.TokenURL = strings.TrimSpace(cnf.Gateway.TokenURL)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Settlement.VATPercent == 0 {
		cnf.Settlement.VATPercent = 21
		log.Println("Warning: Settlement VAT not specified. Setting default value: 21")
	}

	if cnf.Settlement.SubsidyName == "" {
		cnf.Settlement.SubsidyName = "Subsidio Fabricante"
	}

	if cnf.Gateway.TokenTTLSeconds == 0 {
		cnf.Gateway.TokenTTLSeconds = 3600
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
