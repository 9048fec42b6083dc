// Package appconfig defines the versioned configuration blob stored on a
// delivery app variation. Stored configs may be partial or from an older
// schema version; Resolve always yields a fully populated config by filling
// gaps with defaults instead of failing.
package appconfig

import (
	"encoding/json"
	"strings"
)

const CurrentVersion = 2

type StartScreen struct {
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	ButtonLabel string `json:"buttonLabel"`
}

type MainApp struct {
	HeroHeading    string `json:"heroHeading"`
	HeroSubheading string `json:"heroSubheading"`
	HeroImageURL   string `json:"heroImageUrl"`
}

type PostCheckout struct {
	Heading        string `json:"heading"`
	Message        string `json:"message"`
	ShowGroupShare bool   `json:"showGroupShare"`
}

type Tab struct {
	Key              string `json:"key"`
	Label            string `json:"label"`
	CollectionHandle string `json:"collectionHandle"`
	Hidden           bool   `json:"hidden,omitempty"`
}

type Branding struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	LogoURL        string `json:"logoUrl,omitempty"`
}

// Config is the stored shape. Pointer sections distinguish "absent" from
// "present but zero" so partial configs merge cleanly over defaults.
type Config struct {
	Version      int           `json:"version"`
	StartScreen  *StartScreen  `json:"startScreen,omitempty"`
	MainApp      *MainApp      `json:"mainApp,omitempty"`
	PostCheckout *PostCheckout `json:"postCheckout,omitempty"`
	Tabs         []Tab         `json:"tabs,omitempty"`
	Branding     *Branding     `json:"branding,omitempty"`
}

// Resolved is a fully populated config ready for rendering clients.
type Resolved struct {
	Version      int          `json:"version"`
	StartScreen  StartScreen  `json:"startScreen"`
	MainApp      MainApp      `json:"mainApp"`
	PostCheckout PostCheckout `json:"postCheckout"`
	Tabs         []Tab        `json:"tabs"`
	Branding     Branding     `json:"branding"`
}

func Defaults() Resolved {
	return Resolved{
		Version: CurrentVersion,
		StartScreen: StartScreen{
			Enabled:     false,
			Title:       "Party On Delivery",
			Subtitle:    "Drinks delivered to your door",
			ButtonLabel: "Start Your Order",
		},
		MainApp: MainApp{
			HeroHeading:    "Let's get this party started",
			HeroSubheading: "Beer, wine and spirits in about an hour",
		},
		PostCheckout: PostCheckout{
			Heading:        "Order confirmed!",
			Message:        "We're packing your order now. You'll get a text when your driver is on the way.",
			ShowGroupShare: true,
		},
		Tabs: []Tab{
			{Key: "spirits", Label: "Spirits", CollectionHandle: "spirits"},
			{Key: "beer", Label: "Beer", CollectionHandle: "beer"},
			{Key: "wine", Label: "Wine", CollectionHandle: "wine"},
			{Key: "mixers", Label: "Mixers & More", CollectionHandle: "mixers"},
		},
		Branding: Branding{
			PrimaryColor:   "#1a1a2e",
			SecondaryColor: "#e94560",
			AccentColor:    "#f5d042",
		},
	}
}

// legacyConfig is the pre-versioning shape: tabs were bare collection
// handles and branding colors lived at the top level.
type legacyConfig struct {
	Tabs         []string `json:"tabs"`
	PrimaryColor string   `json:"primaryColor"`
	AccentColor  string   `json:"accentColor"`
	ThankYouText string   `json:"thankYouText"`
}

// Resolve decodes a stored config blob and merges it over the defaults.
// Empty, partial, malformed and legacy payloads all resolve; malformed
// sections fall back rather than erroring the whole variation.
func Resolve(raw []byte) Resolved {
	out := Defaults()
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return out
	}

	if cfg.Version < CurrentVersion {
		if legacy := resolveLegacy(raw); legacy != nil {
			return *legacy
		}
	}

	if cfg.StartScreen != nil {
		merged := out.StartScreen
		merged.Enabled = cfg.StartScreen.Enabled
		if cfg.StartScreen.Title != "" {
			merged.Title = cfg.StartScreen.Title
		}
		if cfg.StartScreen.Subtitle != "" {
			merged.Subtitle = cfg.StartScreen.Subtitle
		}
		if cfg.StartScreen.ButtonLabel != "" {
			merged.ButtonLabel = cfg.StartScreen.ButtonLabel
		}
		out.StartScreen = merged
	}

	if cfg.MainApp != nil {
		merged := out.MainApp
		if cfg.MainApp.HeroHeading != "" {
			merged.HeroHeading = cfg.MainApp.HeroHeading
		}
		if cfg.MainApp.HeroSubheading != "" {
			merged.HeroSubheading = cfg.MainApp.HeroSubheading
		}
		if cfg.MainApp.HeroImageURL != "" {
			merged.HeroImageURL = cfg.MainApp.HeroImageURL
		}
		out.MainApp = merged
	}

	if cfg.PostCheckout != nil {
		merged := out.PostCheckout
		if cfg.PostCheckout.Heading != "" {
			merged.Heading = cfg.PostCheckout.Heading
		}
		if cfg.PostCheckout.Message != "" {
			merged.Message = cfg.PostCheckout.Message
		}
		merged.ShowGroupShare = cfg.PostCheckout.ShowGroupShare
		out.PostCheckout = merged
	}

	if len(cfg.Tabs) > 0 {
		tabs := make([]Tab, 0, len(cfg.Tabs))
		for _, tab := range cfg.Tabs {
			if strings.TrimSpace(tab.CollectionHandle) == "" {
				continue
			}
			if tab.Key == "" {
				tab.Key = tab.CollectionHandle
			}
			if tab.Label == "" {
				tab.Label = tab.CollectionHandle
			}
			tabs = append(tabs, tab)
		}
		if len(tabs) > 0 {
			out.Tabs = tabs
		}
	}

	if cfg.Branding != nil {
		merged := out.Branding
		if cfg.Branding.PrimaryColor != "" {
			merged.PrimaryColor = cfg.Branding.PrimaryColor
		}
		if cfg.Branding.SecondaryColor != "" {
			merged.SecondaryColor = cfg.Branding.SecondaryColor
		}
		if cfg.Branding.AccentColor != "" {
			merged.AccentColor = cfg.Branding.AccentColor
		}
		if cfg.Branding.LogoURL != "" {
			merged.LogoURL = cfg.Branding.LogoURL
		}
		out.Branding = merged
	}

	return out
}

// resolveLegacy maps the flat pre-versioning payload onto the current
// schema. Returns nil when the blob does not look legacy at all.
func resolveLegacy(raw []byte) *Resolved {
	var legacy legacyConfig
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil
	}
	if len(legacy.Tabs) == 0 && legacy.PrimaryColor == "" && legacy.ThankYouText == "" {
		return nil
	}

	out := Defaults()
	if len(legacy.Tabs) > 0 {
		tabs := make([]Tab, 0, len(legacy.Tabs))
		for _, handle := range legacy.Tabs {
			handle = strings.TrimSpace(handle)
			if handle == "" {
				continue
			}
			tabs = append(tabs, Tab{Key: handle, Label: handle, CollectionHandle: handle})
		}
		if len(tabs) > 0 {
			out.Tabs = tabs
		}
	}
	if legacy.PrimaryColor != "" {
		out.Branding.PrimaryColor = legacy.PrimaryColor
	}
	if legacy.AccentColor != "" {
		out.Branding.AccentColor = legacy.AccentColor
	}
	if legacy.ThankYouText != "" {
		out.PostCheckout.Message = legacy.ThankYouText
	}
	return &out
}
