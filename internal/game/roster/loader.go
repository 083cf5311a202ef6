package roster

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bout/internal/game/fighter"
)

// Seed is the on-disk roster shape:
//
//	combatants:
//	  - name: Ava
//	    attributes: {strength: 60, technique: 70}
//	    injury: {severity: low, days_remaining: 2}
//	relationships:
//	  - {from: Ava, to: Bea, value: 55}
type Seed struct {
	Combatants    []*fighter.Combatant `yaml:"combatants"`
	Relationships []RelationshipSeed   `yaml:"relationships,omitempty"`
}

// RelationshipSeed is one directed relationship value.
type RelationshipSeed struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Value int    `yaml:"value"`
}

// Parse decodes a YAML roster seed.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	for _, c := range s.Combatants {
		if c == nil {
			return nil, fmt.Errorf("parsing roster: empty combatant entry")
		}
		for attr, v := range c.Attributes {
			if v < fighter.AttributeMin || v > fighter.AttributeMax {
				return nil, fmt.Errorf("parsing roster: combatant %q: %s=%d out of range [%d, %d]",
					c.Name, attr, v, fighter.AttributeMin, fighter.AttributeMax)
			}
		}
	}
	return &s, nil
}

// LoadFile reads and parses the roster seed at path.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load adds every combatant and relationship in seed to r without writing
// them to the Persister.
//
// Postcondition: Returns the first Add or relationship error; combatants
// added before the failure stay on the roster.
func (r *Roster) Load(seed *Seed) error {
	for _, c := range seed.Combatants {
		if err := r.Add(c); err != nil {
			return err
		}
	}
	for _, rel := range seed.Relationships {
		r.mu.Lock()
		err := r.setRelationshipLocked(rel.From, rel.To, rel.Value)
		r.mu.Unlock()
		if err != nil {
			return fmt.Errorf("relationship %s -> %s: %w", rel.From, rel.To, err)
		}
	}
	return nil
}
