package orgmatch

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record describes one organization in the knowledge base. Aliases
// encode real-world renames, mergers, and departmental sub-brands that
// plain string similarity cannot capture.
type Record struct {
	Canonical      string   `yaml:"canonical"`
	Aliases        []string `yaml:"aliases,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty"`
	PrimaryKeyword string   `yaml:"primary_keyword,omitempty"`
	Regions        []string `yaml:"regions,omitempty"`
	Category       string   `yaml:"category,omitempty"`
}

// DB is the read-only organization knowledge base. Each alias belongs
// to exactly one canonical record; collisions are rejected at load time
// rather than silently resolved.
type DB struct {
	records map[string]Record // normalized canonical name -> record
	aliases map[string]string // normalized alias -> normalized canonical name
}

type dbFile struct {
	Version       int      `yaml:"version"`
	Organizations []Record `yaml:"organizations"`
}

//go:embed orgs.yaml
var defaultDB []byte

// DefaultDB loads the knowledge base embedded in the binary.
func DefaultDB() (*DB, error) {
	return LoadDB(defaultDB)
}

// LoadDB parses and validates a knowledge base from YAML data.
func LoadDB(data []byte) (*DB, error) {
	var f dbFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse organization database: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported organization database version %d", f.Version)
	}

	db := &DB{
		records: make(map[string]Record, len(f.Organizations)),
		aliases: make(map[string]string),
	}
	for _, rec := range f.Organizations {
		key := Normalize(rec.Canonical)
		if key == "" {
			return nil, fmt.Errorf("organization with empty canonical name")
		}
		if _, exists := db.records[key]; exists {
			return nil, fmt.Errorf("duplicate canonical organization %q", rec.Canonical)
		}
		db.records[key] = rec

		for _, alias := range rec.Aliases {
			ak := Normalize(alias)
			if ak == "" {
				continue
			}
			if prev, exists := db.aliases[ak]; exists && prev != key {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, prev, key)
			}
			if _, clash := db.records[ak]; clash && ak != key {
				return nil, fmt.Errorf("alias %q collides with canonical organization %q", alias, ak)
			}
			db.aliases[ak] = key
		}
	}

	// A second pass catches a canonical name registered after an alias
	// already claimed the same normalized form.
	for ak, canonical := range db.aliases {
		if _, clash := db.records[ak]; clash && ak != canonical {
			return nil, fmt.Errorf("alias %q collides with canonical organization %q", ak, ak)
		}
	}

	return db, nil
}

// Len returns the number of canonical records.
func (db *DB) Len() int { return len(db.records) }

// Lookup finds the record whose canonical name or alias set normalizes
// to the target organization string.
func (db *DB) Lookup(target string) (Record, bool) {
	key := Normalize(target)
	if key == "" {
		return Record{}, false
	}
	if rec, ok := db.records[key]; ok {
		return rec, true
	}
	if canonical, ok := db.aliases[key]; ok {
		return db.records[canonical], true
	}
	return Record{}, false
}
