package util

import (
	"math"
	"net/url"
	"testing"
)

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"hello", "Hello"},
		{"Hello", "Hello"},
		{"über", "Über"},
		{"h", "H"},
		{"123abc", "123abc"},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
		{100000, "100,000"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{in: "#ff0000", r: 255},
		{in: "00ff00", g: 255},
		{in: "#0000FF", b: 255},
		{in: "#fff", r: 255, g: 255, b: 255},
		{in: "#12345", wantErr: true},
		{in: "zzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		r, g, b, err := HexToRGB(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("HexToRGB(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (r != tt.r || g != tt.g || b != tt.b) {
			t.Errorf("HexToRGB(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.in, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("8c3f9f3e-9e2b-4a8e-b6e7-1a2b3c4d5e6f") {
		t.Error("valid UUID rejected")
	}
	if IsUUID("not-a-uuid") {
		t.Error("garbage accepted as UUID")
	}
	if IsUUID("") {
		t.Error("empty string accepted as UUID")
	}
}

func TestExtractUTM(t *testing.T) {
	values := url.Values{
		"utm_source":   {"newsletter"},
		"utm_campaign": {"launch"},
		"utm_medium":   {""},
		"ref":          {"twitter"},
	}

	utm := ExtractUTM(values)
	if len(utm) != 2 {
		t.Fatalf("ExtractUTM() = %v, want 2 entries", utm)
	}
	if utm["utm_source"] != "newsletter" || utm["utm_campaign"] != "launch" {
		t.Errorf("ExtractUTM() = %v", utm)
	}

	if got := ExtractUTM(url.Values{"ref": {"x"}}); got != nil {
		t.Errorf("ExtractUTM() without utm params = %v, want nil", got)
	}
}
