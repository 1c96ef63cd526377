package lorarx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhiteningTableSelection(t *testing.T) {
	// Every valid configuration resolves to exactly one sequence, as long
	// as the header region it is applied to, with masks bounded by the
	// symbol width.
	var seen = make(map[string][]uint16)

	for sf := 6; sf <= 12; sf++ {
		for _, header := range []bool{false, true} {
			if sf == 6 && header {
				continue
			}

			var table, err = whiteningFor(sf, header)
			require.NoError(t, err, "sf=%d header=%v", sf, header)
			assert.Len(t, table, headerSymbolCount)

			for i, mask := range table {
				assert.Less(t, int(mask), 1<<sf, "sf=%d header=%v mask[%d]", sf, header, i)
			}

			seen[fmt.Sprintf("sf%d_header%v", sf, header)] = table
		}
	}

	// SF8 is the one spreading factor where header mode changes the sequence.
	assert.NotEqual(t, seen["sf8_headerfalse"], seen["sf8_headertrue"])

	// Everywhere else it doesn't.
	assert.Equal(t, seen["sf7_headerfalse"], seen["sf7_headertrue"])

	// Distinct spreading factors get distinct sequences.
	for sf := 6; sf < 12; sf++ {
		assert.NotEqual(t,
			seen[fmt.Sprintf("sf%d_headerfalse", sf)],
			seen[fmt.Sprintf("sf%d_headerfalse", sf+1)])
	}
}

func TestWhiteningForUnknownSpreadingFactor(t *testing.T) {
	var _, err = whiteningFor(13, false)
	assert.Error(t, err)
}

func TestDewhitenStopsAtTableLength(t *testing.T) {
	var table = []uint16{0xFF, 0xFF}
	var symbols = []uint16{0x12, 0x34, 0x56, 0x78}

	var out = dewhiten(symbols, table)

	assert.Equal(t, []uint16{0x12 ^ 0xFF, 0x34 ^ 0xFF, 0x56, 0x78}, out)

	// Input stays untouched - stages pass values, they don't alias.
	assert.Equal(t, []uint16{0x12, 0x34, 0x56, 0x78}, symbols)
}

func TestDewhitenShortInput(t *testing.T) {
	var table, err = whiteningFor(8, false)
	require.NoError(t, err)

	assert.Empty(t, dewhiten(nil, table))
	assert.Len(t, dewhiten([]uint16{1, 2, 3}, table), 3)
}

func TestDewhitenInvolution(t *testing.T) {
	var table, err = whiteningFor(10, false)
	require.NoError(t, err)

	var symbols = []uint16{0x3FF, 0x000, 0x155, 0x2AA, 0x123, 0x333, 0x001, 0x200, 0x17}

	assert.Equal(t, symbols, dewhiten(dewhiten(symbols, table), table))
}
