package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
)

// Sample is one labeled training row.
type Sample struct {
	Status          string
	RefundHistory30 int
	HandoffPhoto    bool
	CourierRating   float64
	Label           string
}

type TrainOptions struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

func (o *TrainOptions) defaults() {
	if o.Epochs <= 0 {
		o.Epochs = 500
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.1
	}
	if o.L2 < 0 {
		o.L2 = 0
	}
}

// Train fits the logistic model with full-batch gradient descent.
func Train(samples []Sample, opts TrainOptions) (*Model, error) {
	opts.defaults()
	if len(samples) == 0 {
		return nil, errors.New("no training samples")
	}

	classSet := map[string]struct{}{}
	vocabSet := map[string]struct{}{}
	for _, s := range samples {
		classSet[strings.ToLower(s.Label)] = struct{}{}
		vocabSet[NormalizeStatus(s.Status)] = struct{}{}
	}
	if len(classSet) < 2 {
		return nil, errors.New("training data has a single class")
	}

	m := &Model{
		Classes:     sortedKeys(classSet),
		StatusVocab: sortedKeys(vocabSet),
		Samples:     len(samples),
		TrainedAt:   time.Now().UTC(),
	}
	m.NumMeans, m.NumStds = numericStats(samples)

	k := len(m.Classes)
	d := m.dim()
	m.Weights = make([][]float64, k)
	for i := range m.Weights {
		m.Weights[i] = make([]float64, d)
	}
	m.Bias = make([]float64, k)

	classIdx := map[string]int{}
	for i, c := range m.Classes {
		classIdx[c] = i
	}

	xs := make([][]float64, len(samples))
	ys := make([]int, len(samples))
	for i, s := range samples {
		xs[i] = m.features(models.Case{
			OrderStatus:     s.Status,
			RefundHistory30: s.RefundHistory30,
			HandoffPhoto:    s.HandoffPhoto,
			CourierRating:   s.CourierRating,
		})
		ys[i] = classIdx[strings.ToLower(s.Label)]
	}

	n := float64(len(samples))
	gradW := make([][]float64, k)
	for i := range gradW {
		gradW[i] = make([]float64, d)
	}
	gradB := make([]float64, k)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for i := range gradW {
			for j := range gradW[i] {
				gradW[i][j] = 0
			}
			gradB[i] = 0
		}

		for i, x := range xs {
			p := m.proba(x)
			for c := 0; c < k; c++ {
				delta := p[c]
				if c == ys[i] {
					delta -= 1
				}
				for j := 0; j < d; j++ {
					gradW[c][j] += delta * x[j]
				}
				gradB[c] += delta
			}
		}

		for c := 0; c < k; c++ {
			for j := 0; j < d; j++ {
				g := gradW[c][j]/n + opts.L2*m.Weights[c][j]
				m.Weights[c][j] -= opts.LearningRate * g
			}
			m.Bias[c] -= opts.LearningRate * gradB[c] / n
		}
	}
	return m, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func numericStats(samples []Sample) (means, stds []float64) {
	means = make([]float64, 2)
	stds = make([]float64, 2)
	n := float64(len(samples))
	for _, s := range samples {
		means[0] += float64(s.RefundHistory30)
		means[1] += s.CourierRating
	}
	means[0] /= n
	means[1] /= n
	for _, s := range samples {
		stds[0] += (float64(s.RefundHistory30) - means[0]) * (float64(s.RefundHistory30) - means[0])
		stds[1] += (s.CourierRating - means[1]) * (s.CourierRating - means[1])
	}
	stds[0] = math.Sqrt(stds[0] / n)
	stds[1] = math.Sqrt(stds[1] / n)
	return means, stds
}

// ReadCSV parses a labeled training file. Required columns: order_status,
// refund_history_30d, handoff_photo, courier_rating, label. Unparseable
// numerics fall back to the training defaults, as the original template did.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read training header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["label"]; !ok {
		return nil, errors.New("training csv must have a 'label' column with deny|refund|escalate")
	}

	var samples []Sample
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{
			Status:          NormalizeStatus(field(rec, col, "order_status")),
			RefundHistory30: atoiOr(field(rec, col, "refund_history_30d"), 0),
			HandoffPhoto:    truthy(field(rec, col, "handoff_photo")),
			CourierRating:   atofOr(field(rec, col, "courier_rating"), 4.7),
			Label:           strings.ToLower(strings.TrimSpace(field(rec, col, "label"))),
		})
	}
	return samples, nil
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func atofOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}
