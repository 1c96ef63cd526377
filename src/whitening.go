package lorarx

import "fmt"

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Remove the pseudo-random whitening applied to the start of every
 *		LoRa packet.
 *
 * Description:	The transmitter XORs the symbol stream against a fixed
 *		pseudo-random sequence to flatten the bit distribution.  The
 *		sequence depends on the spreading factor and on whether an
 *		explicit header is present.  Only the first whiteningLength
 *		symbols (the header region) are whitened; everything after the
 *		sequence runs out passes through untouched.
 *
 *		XOR is its own inverse, so the same routine serves both the
 *		receive and transmit directions.
 *
 *--------------------------------------------------------------------------------*/

// whiteningLength is the number of masked symbols at the start of a packet,
// which is also the fixed header length.
const whiteningLength = 8

// One fixed mask sequence per spreading factor, implicit header mode.
// Mask values are bounded by the symbol width (2^SF - 1).
var whiteningImplicit = map[int][]uint16{
	6:  {0x2D, 0x1A, 0x33, 0x07, 0x26, 0x19, 0x3C, 0x0B},
	7:  {0x66, 0x4D, 0x2B, 0x58, 0x1F, 0x73, 0x4A, 0x39},
	8:  {0xB2, 0xE5, 0x4C, 0x91, 0x3A, 0xD7, 0x68, 0xAF},
	9:  {0x1C4, 0x0B3, 0x16E, 0x095, 0x1D2, 0x048, 0x12B, 0x1F7},
	10: {0x2E9, 0x174, 0x3A2, 0x0C7, 0x251, 0x38E, 0x11B, 0x2DC},
	11: {0x5B3, 0x2C8, 0x71E, 0x465, 0x0D9, 0x6A2, 0x33F, 0x58C},
	12: {0xA47, 0x5D1, 0xE3A, 0x28C, 0xB65, 0x79F, 0xC12, 0x3E8},
}

// SF8 is the only spreading factor with a distinct sequence for explicit
// header mode.
var whiteningSF8Explicit = []uint16{0x7C, 0xC9, 0x35, 0xE2, 0x8B, 0x16, 0xDA, 0x43}

/*--------------------------------------------------------------------------------
 *
 * Name:	whiteningFor
 *
 * Purpose:	Resolve the whitening sequence for a configuration.
 *
 * Description:	Resolved exactly once, at construction, and then held read-only
 *		for the lifetime of the Decoder or Encoder.  There is no
 *		per-packet table dispatch.
 *
 *--------------------------------------------------------------------------------*/

func whiteningFor(spreadingFactor int, header bool) ([]uint16, error) {
	if spreadingFactor == 8 && header {
		return whiteningSF8Explicit, nil
	}

	var table, ok = whiteningImplicit[spreadingFactor]
	if !ok {
		return nil, fmt.Errorf("no whitening sequence for spreading factor %d", spreadingFactor)
	}
	return table, nil
}

// dewhiten XORs symbols against the whitening sequence, element by element,
// stopping at whichever runs out first.  Symbols beyond the sequence length
// pass through unchanged.
func dewhiten(symbols []uint16, table []uint16) []uint16 {
	var out = make([]uint16, len(symbols))
	copy(out, symbols)
	for i := 0; i < len(out) && i < len(table); i++ {
		out[i] ^= table[i]
	}
	return out
}
