package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/bookingrisk/pkg/features"
	"github.com/hotelops/bookingrisk/pkg/schema"
)

func TestFitLabelEncoderSortedVocabulary(t *testing.T) {
	rows := []features.Row{
		bookingRow(nil, map[string]string{"meal": "HB"}),
		bookingRow(nil, map[string]string{"meal": "BB"}),
		bookingRow(nil, map[string]string{"meal": "SC"}),
		bookingRow(nil, map[string]string{"meal": "BB"}),
	}

	enc := FitLabelEncoder(rows)

	vocab := enc.Vocabularies["meal"]
	require.NotNil(t, vocab)
	assert.Equal(t, Vocabulary{"BB": 0, "HB": 1, "SC": 2}, vocab)
	assert.Equal(t, 3, vocab.ReservedIndex())
}

func TestLabelEncode(t *testing.T) {
	enc := &LabelEncoder{
		Vocabularies: map[string]Vocabulary{
			"hotel": {"City Hotel": 0, "Resort Hotel": 1},
			"meal":  {"BB": 0, "HB": 1},
		},
	}
	rows := []features.Row{
		bookingRow(map[string]float64{"lead_time": 30}, map[string]string{"hotel": "Resort Hotel", "meal": "BB"}),
	}

	m, err := enc.Encode(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"lead_time", "hotel", "meal"}, m.Columns)
	assert.Equal(t, []float64{30, 1, 0}, m.Rows[0])
}

func TestLabelEncodeUnknownStrictFails(t *testing.T) {
	enc := &LabelEncoder{
		Vocabularies: map[string]Vocabulary{"hotel": {"City Hotel": 0}},
	}
	rows := []features.Row{
		bookingRow(nil, map[string]string{"hotel": "Hostel"}),
	}

	_, err := enc.Encode(rows)
	require.Error(t, err)

	var uc *schema.UnknownCategoryError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "hotel", uc.Column)
	assert.Equal(t, "Hostel", uc.Value)
	assert.Equal(t, 0, uc.Row)
}

func TestLabelEncodeUnknownCoerces(t *testing.T) {
	vocab := Vocabulary{"City Hotel": 0, "Resort Hotel": 1}
	enc := &LabelEncoder{
		Vocabularies:  map[string]Vocabulary{"hotel": vocab},
		CoerceUnknown: true,
	}
	rows := []features.Row{
		bookingRow(nil, map[string]string{"hotel": "Hostel"}),
	}

	m, err := enc.Encode(rows)
	require.NoError(t, err)
	assert.Equal(t, float64(vocab.ReservedIndex()), m.Rows[0][0])
}

func TestLabelEncodeMissingCategoricalUsesUnknown(t *testing.T) {
	enc := &LabelEncoder{
		Vocabularies:  map[string]Vocabulary{"country": {"PRT": 0, "Unknown": 1}},
		CoerceUnknown: true,
	}
	rows := []features.Row{
		bookingRow(nil, nil), // country absent entirely
	}

	m, err := enc.Encode(rows)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Rows[0][0])
}
