// Package platform holds the per-site adapters that locate chat messages in a
// rendered page and tell the serializer which parts of each message belong to
// specialized extractors.
package platform

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"github.com/tesh254/chatmd/internal/node"
)

//go:embed platforms.yaml
var builtinDefinitions []byte

// Generic is the name of the fallback platform used when nothing else matches.
const Generic = "generic"

// ErrUnknownPlatform is returned when a platform is requested by a name that
// has no definition.
var ErrUnknownPlatform = errors.New("unknown platform")

// MessageRule locates one kind of message element.
type MessageRule struct {
	Selector string `yaml:"selector"`
	Role     string `yaml:"role"`
	RoleAttr string `yaml:"role_attr"`
	Body     string `yaml:"body"`
}

// KindRule annotates matching elements with a content kind.
type KindRule struct {
	Selector string `yaml:"selector"`
	Kind     string `yaml:"kind"`
}

// Platform describes how to read conversations from one chat site.
type Platform struct {
	Name      string        `yaml:"name"`
	Hosts     []string      `yaml:"hosts"`
	Detect    string        `yaml:"detect"`
	Title     string        `yaml:"title"`
	TitleTrim []string      `yaml:"title_trim"`
	Messages  []MessageRule `yaml:"messages"`
	Skip      []string      `yaml:"skip"`
	Images    string        `yaml:"images"`
	Kinds     []KindRule    `yaml:"kinds"`
}

type definitions struct {
	Platforms []*Platform `yaml:"platforms"`
}

// Parse decodes and validates a platform definitions document.
func Parse(data []byte) ([]*Platform, error) {
	var defs definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to decode platform definitions: %w", err)
	}
	for _, p := range defs.Platforms {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return defs.Platforms, nil
}

// LoadFile reads platform definitions from a YAML file.
func LoadFile(path string) ([]*Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform definitions: %w", err)
	}
	return Parse(data)
}

// Validate checks that every selector compiles and every kind is known.
func (p *Platform) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("platform name is required")
	}

	selectors := append([]string{p.Detect, p.Title, p.Images}, p.Skip...)
	for _, m := range p.Messages {
		if m.Selector == "" {
			return fmt.Errorf("platform %s: message selector is required", p.Name)
		}
		if m.Role == "" && m.RoleAttr == "" {
			return fmt.Errorf("platform %s: message rule %q needs a role or role_attr", p.Name, m.Selector)
		}
		selectors = append(selectors, m.Selector, m.Body)
	}
	for _, k := range p.Kinds {
		if _, ok := node.ParseKind(k.Kind); !ok {
			return fmt.Errorf("platform %s: unknown kind %q", p.Name, k.Kind)
		}
		selectors = append(selectors, k.Selector)
	}

	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("platform %s: invalid selector %q: %w", p.Name, sel, err)
		}
	}
	return nil
}

// MatchesHost reports whether host belongs to the platform.
func (p *Platform) MatchesHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, h := range p.Hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Registry is an ordered set of platforms. Detection tries them in order.
type Registry struct {
	platforms []*Platform
}

// Builtin returns the registry of embedded platform definitions.
func Builtin() (*Registry, error) {
	defs, err := Parse(builtinDefinitions)
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs), nil
}

// NewRegistry merges definition sets. A later platform with the same name
// replaces the earlier one in place; new names are appended.
func NewRegistry(sets ...[]*Platform) *Registry {
	r := &Registry{}
	for _, set := range sets {
		for _, p := range set {
			r.put(p)
		}
	}
	return r
}

func (r *Registry) put(p *Platform) {
	for i, existing := range r.platforms {
		if existing.Name == p.Name {
			r.platforms[i] = p
			return
		}
	}
	r.platforms = append(r.platforms, p)
}

// All returns the platforms in detection order.
func (r *Registry) All() []*Platform {
	out := make([]*Platform, len(r.platforms))
	copy(out, r.platforms)
	return out
}

// Get returns the platform with the given name.
func (r *Registry) Get(name string) (*Platform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range r.platforms {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
}

// Detect picks the platform for doc. An explicit name wins, then the host of
// source, then the first platform whose detect selector matches. The generic
// platform is the fallback. The returned reason says which rule applied.
func (r *Registry) Detect(doc *goquery.Document, source, explicit string) (*Platform, string, error) {
	if explicit != "" {
		p, err := r.Get(explicit)
		return p, "explicit", err
	}

	if u, err := url.Parse(source); err == nil && u.Host != "" {
		for _, p := range r.platforms {
			if p.MatchesHost(u.Hostname()) {
				return p, "host", nil
			}
		}
	}

	for _, p := range r.platforms {
		if p.Detect != "" && doc.Find(p.Detect).Length() > 0 {
			return p, "selector", nil
		}
	}

	p, err := r.Get(Generic)
	return p, "fallback", err
}
