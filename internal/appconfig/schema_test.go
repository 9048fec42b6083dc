package appconfig

import "testing"

func TestResolveEmptyYieldsDefaults(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("null"), []byte("{}")} {
		resolved := Resolve(raw)
		if resolved.Version != CurrentVersion {
			t.Fatalf("expected version %d, got %d", CurrentVersion, resolved.Version)
		}
		if len(resolved.Tabs) == 0 {
			t.Fatalf("defaults must include tabs")
		}
		if resolved.Branding.PrimaryColor == "" {
			t.Fatalf("defaults must include branding colors")
		}
	}
}

func TestResolveMergesPartialConfig(t *testing.T) {
	raw := []byte(`{
		"version": 2,
		"mainApp": {"heroHeading": "Margarita March"},
		"branding": {"accentColor": "#00ff00"}
	}`)

	resolved := Resolve(raw)
	if resolved.MainApp.HeroHeading != "Margarita March" {
		t.Fatalf("expected overridden heading, got %q", resolved.MainApp.HeroHeading)
	}
	if resolved.MainApp.HeroSubheading == "" {
		t.Fatalf("unset fields must fall back to defaults")
	}
	if resolved.Branding.AccentColor != "#00ff00" {
		t.Fatalf("expected overridden accent color")
	}
	if resolved.Branding.PrimaryColor != Defaults().Branding.PrimaryColor {
		t.Fatalf("unset branding fields must fall back to defaults")
	}
}

func TestResolveLegacyConfig(t *testing.T) {
	raw := []byte(`{"tabs": ["seltzers", "wine"], "primaryColor": "#123456", "thankYouText": "Cheers!"}`)

	resolved := Resolve(raw)
	if len(resolved.Tabs) != 2 || resolved.Tabs[0].CollectionHandle != "seltzers" {
		t.Fatalf("expected legacy tabs converted, got %+v", resolved.Tabs)
	}
	if resolved.Tabs[0].Label != "seltzers" {
		t.Fatalf("legacy tabs take their handle as label")
	}
	if resolved.Branding.PrimaryColor != "#123456" {
		t.Fatalf("expected legacy primary color")
	}
	if resolved.PostCheckout.Message != "Cheers!" {
		t.Fatalf("expected legacy thank-you text in post-checkout message")
	}
}

func TestResolveMalformedFallsBack(t *testing.T) {
	resolved := Resolve([]byte(`{"tabs": "not-an-array"`))
	if resolved.Version != CurrentVersion || len(resolved.Tabs) == 0 {
		t.Fatalf("malformed config must resolve to defaults")
	}
}

func TestResolveDropsTabsWithoutHandles(t *testing.T) {
	raw := []byte(`{"version": 2, "tabs": [{"key": "x", "label": "X"}, {"collectionHandle": "beer"}]}`)
	resolved := Resolve(raw)
	if len(resolved.Tabs) != 1 || resolved.Tabs[0].CollectionHandle != "beer" {
		t.Fatalf("expected only the tab with a handle, got %+v", resolved.Tabs)
	}
}
