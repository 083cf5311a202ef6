// Package style holds the fighting style catalog and the weighted base-skill
// evaluator.
package style

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStyle is matched by every error returned for a style name that is
// not in the catalog.
var ErrUnknownStyle = errors.New("unknown fighting style")

// UnknownStyleError reports the style name that failed lookup.
type UnknownStyleError struct {
	Name string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("unknown fighting style %q", e.Name)
}

// Unwrap lets errors.Is match ErrUnknownStyle.
func (e *UnknownStyleError) Unwrap() error { return ErrUnknownStyle }

// Style is a named weighting of attributes.
//
// Invariant: every weight is >= 0.
type Style struct {
	Name    string
	Weights map[string]float64
}

// Validate checks the weight invariant.
func (s *Style) Validate() error {
	if s.Name == "" {
		return errors.New("style name must not be empty")
	}
	for attr, w := range s.Weights {
		if w < 0 {
			return fmt.Errorf("style %q: weight for %q must be >= 0, got %v", s.Name, attr, w)
		}
	}
	return nil
}

// AttributeReader exposes a combatant's integer attributes. Absent attributes
// read as 0.
type AttributeReader interface {
	Attribute(name string) int
}

// Skill returns the weighted base skill of a under s: the sum of
// attribute * weight over every attribute key in the style's weight table.
// Pure; no randomness.
//
// Precondition: a and s must be non-nil.
func Skill(a AttributeReader, s *Style) float64 {
	// Sorted keys keep float accumulation order stable across runs.
	keys := make([]string, 0, len(s.Weights))
	for k := range s.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0.0
	for _, k := range keys {
		total += float64(a.Attribute(k)) * s.Weights[k]
	}
	return total
}

// Lookup finds styles by name.
type Lookup interface {
	Lookup(name string) (*Style, error)
}

// Catalog is a fixed set of styles keyed by unique name.
type Catalog struct {
	styles map[string]*Style
}

// NewCatalog builds a Catalog from styles.
//
// Postcondition: Returns an error if a style is invalid or a name repeats.
func NewCatalog(styles ...*Style) (*Catalog, error) {
	c := &Catalog{styles: make(map[string]*Style, len(styles))}
	for _, s := range styles {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.styles[s.Name]; dup {
			return nil, fmt.Errorf("duplicate style %q", s.Name)
		}
		c.styles[s.Name] = s
	}
	return c, nil
}

// Lookup returns the style named name, or an *UnknownStyleError.
func (c *Catalog) Lookup(name string) (*Style, error) {
	s, ok := c.styles[name]
	if !ok {
		return nil, &UnknownStyleError{Name: name}
	}
	return s, nil
}

// Names returns the catalog's style names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.styles))
	for n := range c.styles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of styles.
func (c *Catalog) Len() int { return len(c.styles) }
