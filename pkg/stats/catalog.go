package stats

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
)

//go:embed labels.yaml
var defaultLabels []byte

// Catalog holds status labels per language.
type Catalog struct {
	labels   map[string]map[ledger.Status]string
	tags     []language.Tag
	langs    []string
	matcher  language.Matcher
	fallback string
}

// DefaultCatalog returns the embedded catalog with English as fallback.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultLabels, "en")
}

// ParseCatalog reads a YAML document of the form
//
//	en:
//	  not_sent: Not delivered
//	  sent: Delivered
//	  read: Read
//
// Every language must label every status, and fallback must be present.
func ParseCatalog(data []byte, fallback string) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	if _, ok := raw[fallback]; !ok {
		return nil, fmt.Errorf("%w: fallback language %q missing", ErrInvalidCatalog, fallback)
	}

	langs := make([]string, 0, len(raw))
	for lang := range raw {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	// The matcher falls back to its first tag.
	langs = slices.DeleteFunc(langs, func(l string) bool { return l == fallback })
	langs = append([]string{fallback}, langs...)

	c := &Catalog{
		labels:   make(map[string]map[ledger.Status]string, len(raw)),
		langs:    langs,
		fallback: fallback,
	}
	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: language %q: %w", ErrInvalidCatalog, lang, err)
		}
		c.tags = append(c.tags, tag)

		labels := make(map[ledger.Status]string, len(ledger.Statuses()))
		for _, s := range ledger.Statuses() {
			label, ok := raw[lang][string(s)]
			if !ok || label == "" {
				return nil, fmt.Errorf("%w: language %q has no label for %q", ErrInvalidCatalog, lang, s)
			}
			labels[s] = label
		}
		c.labels[lang] = labels
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Languages returns the catalog languages, fallback first.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.langs)
}

// Match picks the catalog language for the given preferences. Each argument
// may be a plain tag ("ru") or an Accept-Language header value.
func (c *Catalog) Match(prefs ...string) string {
	_, idx := language.MatchStrings(c.matcher, prefs...)
	if idx < 0 || idx >= len(c.langs) {
		return c.fallback
	}
	return c.langs[idx]
}

// Label returns the label of s in lang, falling back to the fallback
// language and then to the raw status value.
func (c *Catalog) Label(lang string, s ledger.Status) string {
	if labels, ok := c.labels[lang]; ok {
		if l, ok := labels[s]; ok {
			return l
		}
	}
	if l, ok := c.labels[c.fallback][s]; ok {
		return l
	}
	return string(s)
}
