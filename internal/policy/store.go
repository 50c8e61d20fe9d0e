package policy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Store holds the live rule set and reloads it from disk on demand. A failed
// reload keeps the previous rules.
type Store struct {
	path string
	log  *slog.Logger

	mu    sync.RWMutex
	rules []Rule
}

func NewStore(path string, log *slog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load parses, validates and installs the rule file. A missing file installs
// an empty rule set, matching a fresh deployment without overrides.
func (s *Store) Load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("policy file missing, running without rules", "path", s.path)
			s.install(nil)
			return nil
		}
		return err
	}

	rules, err := Parse(b, filepath.Ext(s.path))
	if err != nil {
		return err
	}
	s.install(rules)
	s.log.Info("policy rules loaded", "path", s.path, "rules", len(rules))
	return nil
}

func (s *Store) install(rules []Rule) {
	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Match returns the first rule satisfied by the case.
func (s *Store) Match(cs models.Case) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rules {
		if r.Matches(cs) {
			return r, true
		}
	}
	return Rule{}, false
}

// Parse decodes a rule document. The document may be a bare array or wrapped
// as {"rules": [...]}; ext selects YAML for .yaml/.yml, JSON otherwise.
func Parse(b []byte, ext string) ([]Rule, error) {
	var doc struct {
		Rules []Rule `json:"rules" yaml:"rules"`
	}
	var bare []Rule

	yamlFile := ext == ".yaml" || ext == ".yml"
	if yamlFile {
		if err := yaml.Unmarshal(b, &doc); err != nil || doc.Rules == nil {
			if err := yaml.Unmarshal(b, &bare); err != nil {
				return nil, fmt.Errorf("parse policy yaml: %w", err)
			}
			doc.Rules = bare
		}
	} else {
		if err := json.Unmarshal(b, &doc); err != nil || doc.Rules == nil {
			if err := json.Unmarshal(b, &bare); err != nil {
				return nil, fmt.Errorf("parse policy json: %w", err)
			}
			doc.Rules = bare
		}
	}

	if err := validate(doc.Rules); err != nil {
		return nil, err
	}
	for i := range doc.Rules {
		if doc.Rules[i].Confidence == 0 {
			doc.Rules[i].Confidence = 0.85
		}
	}
	return doc.Rules, nil
}

func validate(rules []Rule) error {
	// Round-trip through plain JSON values so the schema sees the wire shape,
	// not the typed structs.
	raw, err := json.Marshal(rulesToWire(rules))
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(ruleSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validate policy rules: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid policy rules: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func rulesToWire(rules []Rule) []map[string]any {
	out := make([]map[string]any, 0, len(rules))
	for _, r := range rules {
		conds := map[string]any{}
		for k, c := range r.Conditions {
			if c.Op == "" || c.Op == "eq" {
				conds[k] = c.Value
			} else {
				conds[k] = map[string]any{"op": c.Op, "value": c.Value}
			}
		}
		m := map[string]any{
			"id":         r.ID,
			"decision":   string(r.Decision),
			"confidence": r.Confidence,
			"conditions": conds,
		}
		if r.Reason != "" {
			m["reason"] = r.Reason
		}
		if r.Category != "" {
			m["category"] = r.Category
		}
		out = append(out, m)
	}
	return out
}
