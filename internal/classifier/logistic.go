// Package classifier implements the trained complaint classifier: a
// multinomial logistic regression over one-hot and standardized case
// features, stored as a JSON artifact produced by cmd/retrain.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
)

type Model struct {
	Classes     []string    `json:"classes"`
	StatusVocab []string    `json:"status_vocab"`
	NumMeans    []float64   `json:"num_means"` // refund_history_30d, courier_rating
	NumStds     []float64   `json:"num_stds"`
	Weights     [][]float64 `json:"weights"` // [class][feature]
	Bias        []float64   `json:"bias"`
	Samples     int         `json:"samples"`
	TrainedAt   time.Time   `json:"trained_at"`
}

// feature layout: one-hot status | photo {false,true} | standardized numerics
func (m *Model) dim() int { return len(m.StatusVocab) + 2 + 2 }

func (m *Model) check() error {
	if len(m.Classes) < 2 {
		return errors.New("model needs at least two classes")
	}
	if len(m.NumMeans) != 2 || len(m.NumStds) != 2 {
		return errors.New("model numeric stats malformed")
	}
	if len(m.Weights) != len(m.Classes) || len(m.Bias) != len(m.Classes) {
		return errors.New("model weight rows do not match classes")
	}
	for _, row := range m.Weights {
		if len(row) != m.dim() {
			return fmt.Errorf("model weight width %d, want %d", len(row), m.dim())
		}
	}
	return nil
}

// NormalizeStatus maps free-form issue labels onto the training vocabulary
// form: lowercase with underscores.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

func (m *Model) features(c models.Case) []float64 {
	x := make([]float64, m.dim())
	status := NormalizeStatus(c.OrderStatus)
	for i, s := range m.StatusVocab {
		if s == status {
			x[i] = 1
			break
		}
	}
	photoAt := len(m.StatusVocab)
	if c.HandoffPhoto {
		x[photoAt+1] = 1
	} else {
		x[photoAt] = 1
	}
	numAt := photoAt + 2
	x[numAt] = standardize(float64(c.RefundHistory30), m.NumMeans[0], m.NumStds[0])
	x[numAt+1] = standardize(c.CourierRating, m.NumMeans[1], m.NumStds[1])
	return x
}

func standardize(v, mean, std float64) float64 {
	if std == 0 {
		std = 1
	}
	return (v - mean) / std
}

// Predict returns the most probable decision and its softmax probability.
func (m *Model) Predict(c models.Case) (models.Decision, float64) {
	probs := m.proba(m.features(c))
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return models.Decision(m.Classes[best]), probs[best]
}

func (m *Model) proba(x []float64) []float64 {
	scores := make([]float64, len(m.Classes))
	for k, row := range m.Weights {
		s := m.Bias[k]
		for j, w := range row {
			s += w * x[j]
		}
		scores[k] = s
	}
	return softmax(scores)
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	var sum float64
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// LoadFile reads and sanity-checks a model artifact.
func LoadFile(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// SaveFile writes the artifact, creating parent directories as needed.
func (m *Model) SaveFile(path string) error {
	if err := m.check(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
