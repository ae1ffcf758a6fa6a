package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validMint = "So11111111111111111111111111111111111111112"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
scan:
  mint: `+validMint+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.PageSize != 1000 {
		t.Errorf("scan.page_size = %d, want 1000", cfg.Scan.PageSize)
	}
	if cfg.Scan.BatchSize != 45 {
		t.Errorf("scan.batch_size = %d, want 45", cfg.Scan.BatchSize)
	}
	if cfg.Scan.Threshold != 2000000 {
		t.Errorf("scan.threshold = %v, want 2000000", cfg.Scan.Threshold)
	}
	if cfg.Enrichment.MinBalance != 20000 {
		t.Errorf("enrichment.min_balance = %v, want 20000", cfg.Enrichment.MinBalance)
	}
	if cfg.Enrichment.OwnersPerSec != 30 {
		t.Errorf("enrichment.owners_per_sec = %d, want 30", cfg.Enrichment.OwnersPerSec)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("storage.backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Pricing.BaseURL != "https://api.jup.ag/price/v2" {
		t.Errorf("pricing.base_url = %q, want the quote-service default", cfg.Pricing.BaseURL)
	}
}

func TestLoadEmptyPricingURLFatal(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
scan:
  mint: `+validMint+`
pricing:
  base_url: ""
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty pricing.base_url")
	}
}

func TestLoadMissingEndpointFatal(t *testing.T) {
	path := writeConfig(t, `
scan:
  mint: `+validMint+`
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing rpc.endpoint")
	}
}

func TestLoadMissingMintFatal(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing scan.mint")
	}
}

func TestLoadInvalidMintFatal(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
scan:
  mint: not-a-mint
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed scan.mint")
	}
}

func TestLoadPostgresBackendNeedsDSN(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
scan:
  mint: `+validMint+`
storage:
  backend: postgres
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for postgres backend without dsn")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
rpc:
  endpoint: https://rpc.example.com
scan:
  mint: `+validMint+`
  threshold: 500000
  window_secs: 3600
enrichment:
  top_holdings: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.Threshold != 500000 {
		t.Errorf("scan.threshold = %v, want 500000", cfg.Scan.Threshold)
	}
	if cfg.Scan.WindowSecs != 3600 {
		t.Errorf("scan.window_secs = %d, want 3600", cfg.Scan.WindowSecs)
	}
	if cfg.Enrichment.TopHoldings != 5 {
		t.Errorf("enrichment.top_holdings = %d, want 5", cfg.Enrichment.TopHoldings)
	}
}
