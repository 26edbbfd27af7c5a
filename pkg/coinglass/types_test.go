package coinglass

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "plain number", input: `0.0125`, want: 0.0125},
		{name: "quoted number", input: `"123456.78"`, want: 123456.78},
		{name: "quoted scientific", input: `"1.2e6"`, want: 1.2e6},
		{name: "null", input: `null`, want: 0},
		{name: "empty string", input: `""`, want: 0},
		{name: "negative quoted", input: `"-42.5"`, want: -42.5},
		{name: "garbage", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, n.Float64(), 1e-9)
		})
	}
}

func TestNumberInStruct(t *testing.T) {
	payload := `{"t": 1714521600, "o": "0.01", "h": 0.012, "l": "0.009", "c": null}`

	var record OHLCRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &record))
	assert.Equal(t, int64(1714521600), record.Time)
	assert.InDelta(t, 0.01, record.Open.Float64(), 1e-9)
	assert.InDelta(t, 0.012, record.High.Float64(), 1e-9)
	assert.InDelta(t, 0.0, record.Close.Float64(), 1e-9)
}

func TestRainbowChartRecordRejectsShortRows(t *testing.T) {
	var rec RainbowChartRecord
	err := json.Unmarshal([]byte(`[1.0, 2.0, 3.0]`), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rainbow chart")

	err = json.Unmarshal([]byte(`[1,2,3,4,5,6,7,8,9,10,11,null]`), &rec)
	require.Error(t, err)
}
