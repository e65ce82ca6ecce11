// Package overlay turns placement signals into localized instructions and
// draws them over preview frames.
package overlay

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the instruction strings for every supported locale.
type Catalog struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
	keys    map[string]struct{}
}

// DefaultCatalog loads the embedded locales. It panics if they are
// malformed, which only a broken build can cause.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(embeddedLocales)
	if err != nil {
		panic("overlay: " + err.Error())
	}
	return c
}

// LoadCatalog reads locales/*.yaml from fsys. Every locale must define the
// same keys as BaseLocale.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	sort.Strings(paths)

	files := make(map[string]catalogFile, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if f.Locale != name {
			return nil, fmt.Errorf("%s: locale %q must match file name", p, f.Locale)
		}
		files[f.Locale] = f
	}

	base, ok := files[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}

	c := &Catalog{
		builder: catalog.NewBuilder(catalog.Fallback(language.Make(BaseLocale))),
		keys:    make(map[string]struct{}, len(base.Messages)),
	}
	for k := range base.Messages {
		c.keys[k] = struct{}{}
	}

	// BaseLocale first so it wins when nothing matches.
	locales := make([]string, 0, len(files))
	for l := range files {
		if l != BaseLocale {
			locales = append(locales, l)
		}
	}
	sort.Strings(locales)
	locales = append([]string{BaseLocale}, locales...)

	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", l, err)
		}
		c.tags = append(c.tags, tag)
		msgs := files[l].Messages
		for k := range c.keys {
			if _, ok := msgs[k]; !ok {
				return nil, fmt.Errorf("locale %s: missing key %q", l, k)
			}
		}
		for k, v := range msgs {
			if _, ok := c.keys[k]; !ok {
				return nil, fmt.Errorf("locale %s: unknown key %q", l, k)
			}
			if err := c.builder.SetString(tag, k, v); err != nil {
				return nil, fmt.Errorf("locale %s: %w", l, err)
			}
		}
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Languages returns the catalog's locales, BaseLocale first.
func (c *Catalog) Languages() []language.Tag {
	return c.tags
}

// Match returns the catalog locale that best serves the requested ones,
// e.g. "es-MX" or an Accept-Language style list.
func (c *Catalog) Match(locales ...string) language.Tag {
	_, i := language.MatchStrings(c.matcher, locales...)
	return c.tags[i]
}

// Printer returns a printer for the best match of locales.
func (c *Catalog) Printer(locales ...string) *message.Printer {
	return message.NewPrinter(c.Match(locales...), message.Catalog(c.builder))
}

// Text returns the message for key in the best matching locale.
func (c *Catalog) Text(key Message, locales ...string) string {
	return c.Printer(locales...).Sprintf(string(key))
}
