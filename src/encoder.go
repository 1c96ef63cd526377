package lorarx

import "fmt"

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Transmit direction of the codec: nibbles to symbols.
 *
 * Description:	Runs the receive pipeline backwards, stage by exact inverse
 *		stage: Hamming encode, interleave, whiten, Gray encode.  Used
 *		to generate test vectors and by anything that wants to feed a
 *		modulator.  Encoder.Encode and Decoder.Decode with the same
 *		Config are mutual inverses over whole interleaver blocks.
 *
 *--------------------------------------------------------------------------------*/

// Encoder holds the immutable transmit-side state for one configuration.
// Safe for concurrent use, same as Decoder.
type Encoder struct {
	sf        int
	cr        int
	whitening []uint16
}

// NewEncoder validates the configuration and resolves the whitening
// sequence, with the same rules as NewDecoder.
func NewEncoder(config Config) (*Encoder, error) {
	if err := config.check(); err != nil {
		return nil, fmt.Errorf("lorarx: %w", err)
	}

	var whitening, err = whiteningFor(config.SpreadingFactor, config.Header)
	if err != nil {
		return nil, fmt.Errorf("lorarx: %w", err)
	}

	return &Encoder{
		sf:        config.SpreadingFactor,
		cr:        config.CodeRate,
		whitening: whitening,
	}, nil
}

// HeaderNibbles is how many nibbles the fixed 8-symbol header block carries
// at this configuration (PPM = SF-2, one interleaver block).
func (e *Encoder) HeaderNibbles() int {
	return e.sf - 2
}

/*--------------------------------------------------------------------------------
 *
 * Name:	Encode
 *
 * Purpose:	Turn a nibble sequence into one packet's symbols.
 *
 * Inputs:	nibbles	- One data nibble per byte, low 4 bits used.  The
 *			  first HeaderNibbles() of them become the 8 header
 *			  symbols; the rest fill payload blocks of SF nibbles
 *			  each.
 *
 * Returns:	Gray-mapped, whitened symbols ready for a modulator.
 *		Trailing nibbles short of a complete block are dropped,
 *		mirroring the decoder's block framing.
 *
 *--------------------------------------------------------------------------------*/

func (e *Encoder) Encode(nibbles []byte) []uint16 {
	var split = min(len(nibbles), e.sf-2)
	var headerNibbles = nibbles[:split]
	var payloadNibbles = nibbles[split:]

	var symbols = interleave(hammingEncode(headerNibbles, headerRDD), e.sf-2, headerRDD)
	symbols = append(symbols,
		interleave(hammingEncode(payloadNibbles, e.cr), e.sf, e.cr)...)

	// XOR whitening is an involution, so the receive routine applies it.
	symbols = dewhiten(symbols, e.whitening)

	return engray(symbols)
}

// UnpackNibbles splits packed bytes into the nibble-per-byte form Encode
// consumes, high nibble first.  Inverse of PackNibbles for even counts.
func UnpackNibbles(data []byte) []byte {
	var out = make([]byte, 0, 2*len(data))
	for _, b := range data {
		out = append(out, b>>4, b&0x0F)
	}
	return out
}
