package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Missing data source DNS
	cnf := Configuration{
		ProjectName: "",
		DataSource:  DataSourceConfig{Dns: ""},
		Gateway: GatewayConfig{
			TokenURL: "https://sandbox.bind.com.ar/oauth/token",
			APIURL:   "https://sandbox.bind.com.ar",
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	// Missing gateway token URL
	cnf = Configuration{
		ProjectName: "",
		DataSource:  DataSourceConfig{Dns: "postgres://localhost:5432"},
		Gateway:     GatewayConfig{APIURL: "https://sandbox.bind.com.ar"},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "gateway token URL is required" {
		t.Errorf("Expected gateway token URL required error, got %v", err)
	}

	// All required fields filled, expect no error
	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource:  DataSourceConfig{Dns: "some-dns"},
		Gateway: GatewayConfig{
			TokenURL: "https://sandbox.bind.com.ar/oauth/token",
			APIURL:   "https://sandbox.bind.com.ar",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Default port setting
	cnf.Server.Port = ""
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}

	// Settlement defaults
	if cnf.Settlement.VATPercent != 21 {
		t.Errorf("Expected default VAT 21, got %v", cnf.Settlement.VATPercent)
	}
	if cnf.Gateway.TokenTTLSeconds != 3600 {
		t.Errorf("Expected default token TTL 3600, got %d", cnf.Gateway.TokenTTLSeconds)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "finpay.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up after the test

	// Sample configuration to write to the temp file
	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource:  DataSourceConfig{Dns: "temp-dns"},
		Gateway: GatewayConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     "https://sandbox.bind.com.ar/oauth/token",
			APIURL:       "https://sandbox.bind.com.ar",
			OriginCVU:    "0000058100000000000001",
		},
	}

	data, err := json.Marshal(sampleConfig)
	if err != nil {
		t.Fatalf("Unable to marshal sample config: %v", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Unable to close temporary file: %v", err)
	}

	err = loadConfigFromFile(tmpFile.Name())
	if err != nil {
		t.Fatalf("loadConfigFromFile returned error: %v", err)
	}

	fetched, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fetched.ProjectName != "Temp Project" {
		t.Errorf("Expected project name 'Temp Project', got %s", fetched.ProjectName)
	}
	if fetched.Gateway.OriginCVU != "0000058100000000000001" {
		t.Errorf("Unexpected origin CVU: %s", fetched.Gateway.OriginCVU)
	}
}
