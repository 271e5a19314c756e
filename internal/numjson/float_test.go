package numjson

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		in   Float
		want string
	}{
		{1.5, "1.5"},
		{0, "0"},
		{Float(math.NaN()), `"NaN"`},
		{Float(math.Inf(1)), `"+Inf"`},
		{Float(math.Inf(-1)), `"-Inf"`},
	}

	for _, tt := range tests {
		out, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out))
	}
}

func TestRoundTrip(t *testing.T) {
	in := map[string]Float{
		"finite": 2.25,
		"nan":    Float(math.NaN()),
		"pos":    Float(math.Inf(1)),
		"neg":    Float(math.Inf(-1)),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out map[string]Float
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, Float(2.25), out["finite"])
	assert.True(t, math.IsNaN(float64(out["nan"])))
	assert.True(t, math.IsInf(float64(out["pos"]), 1))
	assert.True(t, math.IsInf(float64(out["neg"]), -1))
}

func TestUnmarshalInvalid(t *testing.T) {
	var f Float
	assert.Error(t, json.Unmarshal([]byte(`"big"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestMap(t *testing.T) {
	m := Map(map[string]float64{"iae": 3})
	assert.Equal(t, map[string]Float{"iae": 3}, m)
}
