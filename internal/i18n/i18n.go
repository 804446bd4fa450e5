// Package i18n provides locale dictionaries for user-facing strings.
// Dictionaries are embedded JSON files, one per locale, with nested keys
// flattened to dot paths at load time.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Locale holds the flattened messages for a single language.
type Locale struct {
	Tag      language.Tag
	messages map[string]string
}

// Get returns the message for key, or ("", false) when absent.
func (l *Locale) Get(key string) (string, bool) {
	msg, ok := l.messages[key]
	return msg, ok
}

// Messages returns a copy of the flattened dictionary.
func (l *Locale) Messages() map[string]string {
	out := make(map[string]string, len(l.messages))
	for k, v := range l.messages {
		out[k] = v
	}
	return out
}

// Bundle is a set of locales with a configured default used as fallback.
type Bundle struct {
	locales  map[string]*Locale
	fallback *Locale
	matcher  language.Matcher
	tags     []language.Tag
}

// Load parses the embedded dictionaries. The locale named by def becomes
// the fallback for missing keys and failed negotiation.
func Load(def string) (*Bundle, error) {
	return load(localeFS, "locales", def)
}

func load(fsys fs.FS, dir, def string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale dir: %w", err)
	}

	b := &Bundle{locales: make(map[string]*Locale)}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		code := strings.TrimSuffix(name, ".json")

		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid locale file name %q: %w", name, err)
		}

		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", code, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", code, err)
		}

		loc := &Locale{Tag: tag, messages: make(map[string]string)}
		flatten("", nested, loc.messages)
		b.locales[code] = loc
		b.tags = append(b.tags, tag)
	}

	fallback, ok := b.locales[def]
	if !ok {
		return nil, fmt.Errorf("default locale %q has no dictionary", def)
	}
	b.fallback = fallback

	// The fallback tag must come first so undecided matches land on it.
	ordered := []language.Tag{fallback.Tag}
	for _, tag := range b.tags {
		if tag != fallback.Tag {
			ordered = append(ordered, tag)
		}
	}
	b.matcher = language.NewMatcher(ordered)
	b.tags = ordered

	return b, nil
}

func flatten(prefix string, nested map[string]any, out map[string]string) {
	for key, value := range nested {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[full] = v
		case map[string]any:
			flatten(full, v, out)
		}
	}
}

// Locales lists the loaded locale codes.
func (b *Bundle) Locales() []string {
	codes := make([]string, 0, len(b.locales))
	for _, tag := range b.tags {
		codes = append(codes, tag.String())
	}
	return codes
}

// Resolve negotiates the best locale for the preferred language codes,
// in order of preference. Unknown or empty preferences resolve to the
// default locale. Accept-Language header values work directly.
func (b *Bundle) Resolve(preferred ...string) *Locale {
	var tags []language.Tag
	for _, p := range preferred {
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return b.fallback
	}

	_, idx, _ := b.matcher.Match(tags...)
	code := b.tags[idx].String()
	if loc, ok := b.locales[code]; ok {
		return loc
	}
	return b.fallback
}

// Translate looks up key in the given locale, falling back to the default
// locale and finally to the key itself.
func (b *Bundle) Translate(loc *Locale, key string) string {
	if loc != nil {
		if msg, ok := loc.Get(key); ok {
			return msg
		}
	}
	if msg, ok := b.fallback.Get(key); ok {
		return msg
	}
	return key
}
