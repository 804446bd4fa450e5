package i18n

import (
	"testing"
)

func TestLoad(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	codes := b.Locales()
	if len(codes) < 2 {
		t.Fatalf("Locales() = %v, want at least en and de", codes)
	}
	if codes[0] != "en" {
		t.Errorf("default locale %q not first in %v", "en", codes)
	}
}

func TestLoad_MissingDefault(t *testing.T) {
	if _, err := Load("zz"); err == nil {
		t.Error("Load() accepted a default locale with no dictionary")
	}
}

func TestResolve(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name      string
		preferred []string
		wantKey   string
		want      string
	}{
		{
			name:      "exact match",
			preferred: []string{"de"},
			wantKey:   "nav.dashboard",
			want:      "Übersicht",
		},
		{
			name:      "region narrows to base language",
			preferred: []string{"de-AT"},
			wantKey:   "nav.dashboard",
			want:      "Übersicht",
		},
		{
			name:      "accept-language header with weights",
			preferred: []string{"fr-CH, fr;q=0.9, en;q=0.8"},
			wantKey:   "nav.settings",
			want:      "Paramètres",
		},
		{
			name:      "unknown language falls back to default",
			preferred: []string{"ja"},
			wantKey:   "nav.dashboard",
			want:      "Dashboard",
		},
		{
			name:      "no preference",
			preferred: nil,
			wantKey:   "nav.dashboard",
			want:      "Dashboard",
		},
		{
			name:      "garbage input",
			preferred: []string{";;;"},
			wantKey:   "nav.dashboard",
			want:      "Dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := b.Resolve(tt.preferred...)
			if got := b.Translate(loc, tt.wantKey); got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.wantKey, got, tt.want)
			}
		})
	}
}

func TestTranslate_Fallbacks(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	de := b.Resolve("de")

	t.Run("missing key falls back to key itself", func(t *testing.T) {
		if got := b.Translate(de, "nav.reports"); got != "nav.reports" {
			t.Errorf("Translate() = %q, want the key back", got)
		}
	})

	t.Run("nil locale uses default", func(t *testing.T) {
		if got := b.Translate(nil, "auth.sign_in"); got != "Sign in" {
			t.Errorf("Translate() = %q", got)
		}
	})

	t.Run("flattened nested keys", func(t *testing.T) {
		if got := b.Translate(de, "invite.invalid"); got != "Diese Einladung ist ungültig oder abgelaufen." {
			t.Errorf("Translate() = %q", got)
		}
	})
}
