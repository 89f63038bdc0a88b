package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in   string
		want model.Dimension
		code errors.Code
	}{
		{in: "30x20x15", want: model.Dimension{Width: 30, Length: 20, Height: 15}},
		{in: " 30 X 20 x 15 ", want: model.Dimension{Width: 30, Length: 20, Height: 15}},
		{in: "24x32", want: model.Dimension{Width: 24, Length: 32, Height: 24}},
		{in: "2.5x1.25x0.8", want: model.Dimension{Width: 2.5, Length: 1.25, Height: 0.8}},
		{in: "30", code: errors.ErrCodeInvalidInput},
		{in: "1x2x3x4", code: errors.ErrCodeInvalidInput},
		{in: "30xabcx15", code: errors.ErrCodeInvalidInput},
		{in: "", code: errors.ErrCodeInvalidInput},
		{in: "30x0x15", code: errors.ErrCodeInvalidDimension},
		{in: "30x-2x15", code: errors.ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDimension(tt.in)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFootprint(t *testing.T) {
	w, l, err := ParseFootprint("350x300")
	require.NoError(t, err)
	assert.Equal(t, 350.0, w)
	assert.Equal(t, 300.0, l)

	_, _, err = ParseFootprint("350x300x20")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, _, err = ParseFootprint("0x300")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDimension))
}

func TestParseItem(t *testing.T) {
	it, err := ParseItem("40x30x20:2(SD-1)")
	require.NoError(t, err)
	assert.Equal(t, model.Dimension{Width: 40, Length: 30, Height: 20}, it.Size)
	assert.Equal(t, 2, it.Count)
	assert.Equal(t, "SD-1", it.Label)
	assert.Len(t, it.ID, 8)

	it, err = ParseItem("10x10x5")
	require.NoError(t, err)
	assert.Equal(t, 1, it.Count)
	assert.Empty(t, it.Label)

	it, err = ParseItem("10x10x5:3 ( drill bits )")
	require.NoError(t, err)
	assert.Equal(t, 3, it.Count)
	assert.Equal(t, "drill bits", it.Label)
}

func TestParseItem_Errors(t *testing.T) {
	_, err := ParseItem("10x10x5:many")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ParseItem("10x10x5:0")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ParseItem("10x0x5:2")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDimension))
}

func TestParseItems(t *testing.T) {
	items, err := ParseItems("30x20x15:4, 40x30x20:2(SD-1),")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 4, items[0].Count)
	assert.Equal(t, "SD-1", items[1].Label)

	_, err = ParseItems(" , ")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ParseItems("30x20x15:4, nope")
	assert.Error(t, err)
}
