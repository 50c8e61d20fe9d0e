package classifier

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A small but cleanly separable set: missing deliveries without photo get
// refunds, heavy refund history gets denied, the rest escalates.
func trainingSet() []Sample {
	var out []Sample
	for i := 0; i < 20; i++ {
		out = append(out,
			Sample{Status: "missing_delivery", RefundHistory30: 0, HandoffPhoto: false, CourierRating: 4.5, Label: "refund"},
			Sample{Status: "damaged_item", RefundHistory30: 1, HandoffPhoto: false, CourierRating: 4.0, Label: "refund"},
			Sample{Status: "late_delivery", RefundHistory30: 6, HandoffPhoto: true, CourierRating: 4.8, Label: "deny"},
			Sample{Status: "missing_delivery", RefundHistory30: 5, HandoffPhoto: true, CourierRating: 4.9, Label: "deny"},
			Sample{Status: "driver_issue", RefundHistory30: 2, HandoffPhoto: true, CourierRating: 3.0, Label: "escalate"},
		)
	}
	return out
}

func TestTrainSeparatesClasses(t *testing.T) {
	m, err := Train(trainingSet(), TrainOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"deny", "escalate", "refund"}, m.Classes)

	dec, conf := m.Predict(models.Case{OrderStatus: "missing_delivery", RefundHistory30: 0, HandoffPhoto: false, CourierRating: 4.5})
	assert.Equal(t, models.DecisionRefund, dec)
	assert.Greater(t, conf, 0.5)

	dec, _ = m.Predict(models.Case{OrderStatus: "late_delivery", RefundHistory30: 6, HandoffPhoto: true, CourierRating: 4.8})
	assert.Equal(t, models.DecisionDeny, dec)

	dec, _ = m.Predict(models.Case{OrderStatus: "driver_issue", RefundHistory30: 2, HandoffPhoto: true, CourierRating: 3.0})
	assert.Equal(t, models.DecisionEscalate, dec)
}

func TestPredictConfidenceIsProbability(t *testing.T) {
	m, err := Train(trainingSet(), TrainOptions{Epochs: 100})
	require.NoError(t, err)

	_, conf := m.Predict(models.Case{OrderStatus: "unknown_status", CourierRating: 4.5})
	assert.Greater(t, conf, 0.0)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestTrainRejectsDegenerateData(t *testing.T) {
	_, err := Train(nil, TrainOptions{})
	assert.Error(t, err)

	_, err = Train([]Sample{{Status: "late_delivery", Label: "refund"}}, TrainOptions{})
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := Train(trainingSet(), TrainOptions{Epochs: 50})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Classes, loaded.Classes)
	assert.Equal(t, m.StatusVocab, loaded.StatusVocab)

	cs := models.Case{OrderStatus: "missing_delivery", CourierRating: 4.5}
	d1, c1 := m.Predict(cs)
	d2, c2 := loaded.Predict(cs)
	assert.Equal(t, d1, d2)
	assert.InDelta(t, c1, c2, 1e-9)
}

func TestLoadFileRejectsMalformed(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	csvData := `order_status,refund_history_30d,handoff_photo,courier_rating,label
Missing Delivery,2,yes,4.2,REFUND
late-delivery,not-a-number,0,,deny
`
	samples, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "missing_delivery", samples[0].Status)
	assert.Equal(t, 2, samples[0].RefundHistory30)
	assert.True(t, samples[0].HandoffPhoto)
	assert.Equal(t, "refund", samples[0].Label)

	assert.Equal(t, "late_delivery", samples[1].Status)
	assert.Equal(t, 0, samples[1].RefundHistory30)
	assert.False(t, samples[1].HandoffPhoto)
	assert.InDelta(t, 4.7, samples[1].CourierRating, 1e-9)
}

func TestReadCSVRequiresLabel(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("order_status,courier_rating\nlate,4.0\n"))
	assert.Error(t, err)
}
