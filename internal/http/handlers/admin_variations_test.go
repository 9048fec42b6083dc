package handlers

import (
	"encoding/json"
	"testing"

	"party-on-delivery/internal/appconfig"
)

func TestNormalizeVariationConfig(t *testing.T) {
	out, err := normalizeVariationConfig(nil)
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	var cfg appconfig.Config
	if err := json.Unmarshal(out, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Version != appconfig.CurrentVersion {
		t.Fatalf("expected version %d, got %d", appconfig.CurrentVersion, cfg.Version)
	}
}

func TestNormalizeVariationConfigKeepsVersion(t *testing.T) {
	out, err := normalizeVariationConfig(json.RawMessage(`{"version":1,"tabs":[{"key":"beer","label":"Beer","collectionHandle":"beer"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cfg appconfig.Config
	if err := json.Unmarshal(out, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected version 1 preserved, got %d", cfg.Version)
	}
	if len(cfg.Tabs) != 1 || cfg.Tabs[0].CollectionHandle != "beer" {
		t.Fatalf("tabs not preserved: %+v", cfg.Tabs)
	}
}

func TestNormalizeVariationConfigRejectsGarbage(t *testing.T) {
	if _, err := normalizeVariationConfig(json.RawMessage(`{"version":"two"}`)); err == nil {
		t.Fatalf("expected error for invalid version type")
	}
	if _, err := normalizeVariationConfig(json.RawMessage(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
