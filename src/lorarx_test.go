package lorarx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewDecoderValidation(t *testing.T) {
	var testData = []struct {
		name   string
		config Config
		ok     bool
	}{
		{"sf too small", Config{SpreadingFactor: 5, CodeRate: 4}, false},
		{"sf too large", Config{SpreadingFactor: 13, CodeRate: 4}, false},
		{"cr too small", Config{SpreadingFactor: 8, CodeRate: 0}, false},
		{"cr too large", Config{SpreadingFactor: 8, CodeRate: 5}, false},
		{"sf6 with header", Config{SpreadingFactor: 6, CodeRate: 4, Header: true}, false},
		{"sf6 implicit", Config{SpreadingFactor: 6, CodeRate: 4}, true},
		{"sf8 explicit", Config{SpreadingFactor: 8, CodeRate: 4, Header: true}, true},
		{"sf12 cr1", Config{SpreadingFactor: 12, CodeRate: 1}, true},
	}

	for _, testDatum := range testData {
		t.Run(testDatum.name, func(t *testing.T) {
			var decoder, decErr = NewDecoder(testDatum.config)
			var encoder, encErr = NewEncoder(testDatum.config)

			if testDatum.ok {
				assert.NoError(t, decErr)
				assert.NotNil(t, decoder)
				assert.NoError(t, encErr)
				assert.NotNil(t, encoder)
			} else {
				assert.Error(t, decErr)
				assert.Nil(t, decoder, "must not partially construct")
				assert.Error(t, encErr)
				assert.Nil(t, encoder)
			}
		})
	}
}

// The scenario from the protocol: SF8, CR4, explicit header.  The 8 header
// symbols carry SF-2 = 6 nibbles, i.e. exactly a 3 byte message, coded at
// the fixed header geometry.  Four trailing payload symbols are half an
// interleaver block and must vanish without complaint.
func TestDecodeKnownThreeByteMessage(t *testing.T) {
	var config = Config{SpreadingFactor: 8, CodeRate: 4, Header: true}

	var encoder, encErr = NewEncoder(config)
	require.NoError(t, encErr)
	var decoder, decErr = NewDecoder(config)
	require.NoError(t, decErr)

	var message = []byte{0x12, 0x34, 0x56}
	var nibbles = UnpackNibbles(message)
	require.Len(t, nibbles, encoder.HeaderNibbles())

	var symbols = encoder.Encode(nibbles)
	require.Len(t, symbols, headerSymbolCount)
	for _, s := range symbols {
		assert.Less(t, int(s), 1<<8, "symbols must fit the spreading factor")
	}

	// Half a payload block of stray symbols.
	symbols = append(symbols, 0x21, 0x42, 0x84, 0x08)

	var decoded = decoder.Decode(symbols)
	assert.Equal(t, nibbles, decoded)
	assert.Equal(t, message, PackNibbles(decoded))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var sf = rapid.IntRange(6, 12).Draw(t, "sf")
		var cr = rapid.IntRange(1, 4).Draw(t, "cr")
		var header = false
		if sf != 6 {
			header = rapid.Bool().Draw(t, "header")
		}

		var config = Config{SpreadingFactor: sf, CodeRate: cr, Header: header}
		var encoder, encErr = NewEncoder(config)
		require.NoError(t, encErr)
		var decoder, decErr = NewDecoder(config)
		require.NoError(t, decErr)

		var payloadBlocks = rapid.IntRange(0, 3).Draw(t, "payloadBlocks")
		var nibbles = make([]byte, (sf-2)+payloadBlocks*sf)
		for i := range nibbles {
			nibbles[i] = rapid.Byte().Draw(t, "nibble") & 0x0F
		}

		var symbols = encoder.Encode(nibbles)
		assert.Len(t, symbols, headerSymbolCount+payloadBlocks*(4+cr))
		for _, s := range symbols {
			assert.Less(t, int(s), 1<<sf)
		}

		assert.Equal(t, nibbles, decoder.Decode(symbols))
	})
}

func TestDecodeShortInput(t *testing.T) {
	var decoder, err = NewDecoder(Config{SpreadingFactor: 8, CodeRate: 4})
	require.NoError(t, err)

	// Fewer than 8 symbols is not even a complete header block; it
	// decodes to nothing, it does not fail.
	assert.Empty(t, decoder.Decode(nil))
	assert.Empty(t, decoder.Decode([]uint16{1, 2, 3, 4, 5}))
}

func TestDecodeTruncatesTrailingPayloadSymbols(t *testing.T) {
	var config = Config{SpreadingFactor: 7, CodeRate: 2} // payload block = 6 symbols
	var encoder, encErr = NewEncoder(config)
	require.NoError(t, encErr)
	var decoder, decErr = NewDecoder(config)
	require.NoError(t, decErr)

	var nibbles = []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xA, 0xB, 0xC}
	require.Len(t, nibbles, (7-2)+7) // one header block, one payload block

	var symbols = encoder.Encode(nibbles)
	require.Len(t, symbols, 8+6)

	// Anything short of the next full block decodes to exactly the same
	// nibbles.
	for extra := 0; extra < 6; extra++ {
		var padded = append(append([]uint16{}, symbols...), make([]uint16, extra)...)
		assert.Equal(t, nibbles, decoder.Decode(padded), "%d trailing symbols", extra)
	}
}

func TestDecoderConcurrentUse(t *testing.T) {
	// One Decoder, many packets in flight: decoding is stateless past the
	// read-only configuration.
	var config = Config{SpreadingFactor: 9, CodeRate: 3}
	var encoder, encErr = NewEncoder(config)
	require.NoError(t, encErr)
	var decoder, decErr = NewDecoder(config)
	require.NoError(t, decErr)

	var nibbles = make([]byte, (9-2)+9)
	for i := range nibbles {
		nibbles[i] = byte(i * 7 % 16)
	}
	var symbols = encoder.Encode(nibbles)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, nibbles, decoder.Decode(symbols))
		}()
	}
	wg.Wait()
}

func TestPackNibbles(t *testing.T) {
	assert.Empty(t, PackNibbles(nil))
	assert.Equal(t, []byte{0x12, 0x34}, PackNibbles([]byte{0x1, 0x2, 0x3, 0x4}))
	assert.Equal(t, []byte{0x12, 0x30}, PackNibbles([]byte{0x1, 0x2, 0x3}), "odd trailing nibble goes high")
	assert.Equal(t, []byte{0xAB}, PackNibbles(UnpackNibbles([]byte{0xAB})))
}
