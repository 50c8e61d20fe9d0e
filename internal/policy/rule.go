package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/resolvehq/complaints-backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Rule is one policy override. Rules are checked in file order and the first
// match wins over any classifier output.
type Rule struct {
	ID         string               `json:"id" yaml:"id"`
	Decision   models.Decision      `json:"decision" yaml:"decision"`
	Confidence float64              `json:"confidence" yaml:"confidence"`
	Reason     string               `json:"reason" yaml:"reason"`
	Category   string               `json:"category" yaml:"category"`
	Conditions map[string]Condition `json:"conditions" yaml:"conditions"`
}

// Condition compares one case field. A bare scalar value means equality;
// the object form {"op": ..., "value": ...} selects an operator.
type Condition struct {
	Op    string
	Value any
}

func (c *Condition) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	c.set(v)
	return nil
}

func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	c.set(v)
	return nil
}

func (c *Condition) set(v any) {
	if m, ok := v.(map[string]any); ok {
		if op, ok := m["op"].(string); ok {
			c.Op = op
			c.Value = m["value"]
			return
		}
	}
	c.Op = "eq"
	c.Value = v
}

// Matches reports whether every condition holds for the case. Conditions on
// unknown fields never match.
func (r Rule) Matches(cs models.Case) bool {
	for field, cond := range r.Conditions {
		actual, ok := cs.Field(field)
		if !ok || !cond.holds(actual) {
			return false
		}
	}
	return true
}

func (c Condition) holds(actual any) bool {
	switch c.Op {
	case "", "eq":
		return looseEqual(actual, c.Value)
	case "ne":
		return !looseEqual(actual, c.Value)
	case "gt", "gte", "lt", "lte":
		a, aok := toFloat(actual)
		b, bok := toFloat(c.Value)
		if !aok || !bok {
			return false
		}
		switch c.Op {
		case "gt":
			return a > b
		case "gte":
			return a >= b
		case "lt":
			return a < b
		default:
			return a <= b
		}
	case "in":
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		for _, v := range list {
			if looseEqual(actual, v) {
				return true
			}
		}
		return false
	case "contains":
		return strings.Contains(stringify(actual), stringify(c.Value))
	}
	return false
}

// looseEqual compares numerics numerically so that a JSON 3 matches an int
// case field; everything else compares by printed form.
func looseEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return stringify(a) == stringify(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
