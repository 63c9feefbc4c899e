package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePlanData(t *testing.T) {
	prev := int64(1)
	raw, err := encodeData(PlanChangeData{PlanID: 3, PreviousPlanID: &prev})
	require.NoError(t, err)

	d, err := decodePlanData(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.PlanID)
	require.NotNil(t, d.PreviousPlanID)
	assert.Equal(t, int64(1), *d.PreviousPlanID)
}

func TestEncodePlanDataOmitsNilPrevious(t *testing.T) {
	raw, err := encodeData(PlanChangeData{PlanID: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"planId":3}`, string(raw))
}

// Duplicate detection must be structural: key order, whitespace and extra
// fields in a stored payload must not hide a matching module id.
func TestDecodeModuleDataIsStructural(t *testing.T) {
	variants := []string{
		`{"moduleId":5}`,
		`{ "moduleId" : 5 }`,
		`{"requestedVia":"web","moduleId":5}`,
	}
	for _, v := range variants {
		d, err := decodeModuleData(json.RawMessage(v))
		require.NoError(t, err, v)
		assert.Equal(t, int64(5), d.ModuleID, v)
	}
}

func TestDecodeModuleDataMalformed(t *testing.T) {
	_, err := decodeModuleData(json.RawMessage(`{"moduleId":`))
	assert.Error(t, err)
}
