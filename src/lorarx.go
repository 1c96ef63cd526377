// Package lorarx recovers application-layer bytes from demodulated LoRa
// physical-layer symbols.  It inverts, in order, the Gray mapping, the
// whitening sequence, the diagonal block interleaver, and the Hamming
// forward error correction that the transmitter applied, correcting bit
// errors where the configured code rate permits.
//
// Everything upstream (chirp demodulation, synchronization) and downstream
// (CRC validation, LoRaWAN) is out of scope: one call to Decode turns one
// packet's symbol sequence into its byte sequence.
package lorarx

import (
	"fmt"

	"github.com/charmbracelet/log"
)

const (
	minSpreadingFactor = 6
	maxSpreadingFactor = 12

	minCodeRate = 1
	maxCodeRate = 4

	// The first headerSymbolCount symbols of every packet are header
	// symbols, always coded at PPM = SF-2 with the strongest redundancy
	// no matter what the payload is configured for.
	headerSymbolCount = 8
	headerRDD         = 4
)

// Config fixes a pipeline's geometry for its lifetime.
type Config struct {
	SpreadingFactor int  // 6..12, bits per symbol
	CodeRate        int  // 1..4, payload Hamming redundancy
	Header          bool // explicit header present; must be false at SF6
}

func (c Config) check() error {
	if c.SpreadingFactor < minSpreadingFactor || c.SpreadingFactor > maxSpreadingFactor {
		return fmt.Errorf("spreading factor %d out of range %d..%d",
			c.SpreadingFactor, minSpreadingFactor, maxSpreadingFactor)
	}
	if c.CodeRate < minCodeRate || c.CodeRate > maxCodeRate {
		return fmt.Errorf("code rate %d out of range %d..%d",
			c.CodeRate, minCodeRate, maxCodeRate)
	}
	if c.SpreadingFactor == minSpreadingFactor && c.Header {
		return fmt.Errorf("spreading factor 6 does not support an explicit header")
	}
	return nil
}

// Decoder holds the immutable state for one configuration.  It keeps no
// per-packet state, so a single Decoder may serve any number of concurrent
// Decode calls.
type Decoder struct {
	sf        int
	cr        int
	whitening []uint16
}

// NewDecoder validates the configuration and resolves the whitening
// sequence.  An invalid configuration is rejected outright; there is no
// partially constructed decoder.
func NewDecoder(config Config) (*Decoder, error) {
	if err := config.check(); err != nil {
		return nil, fmt.Errorf("lorarx: %w", err)
	}

	var whitening, err = whiteningFor(config.SpreadingFactor, config.Header)
	if err != nil {
		return nil, fmt.Errorf("lorarx: %w", err)
	}

	return &Decoder{
		sf:        config.SpreadingFactor,
		cr:        config.CodeRate,
		whitening: whitening,
	}, nil
}

/*--------------------------------------------------------------------------------
 *
 * Name:	Decode
 *
 * Purpose:	Turn one packet's demodulated symbols into bytes.
 *
 * Inputs:	symbols	- One value per received chirp, < 2^SF.
 *
 * Returns:	Header nibbles followed by payload nibbles, one nibble per
 *		byte (see PackNibbles).  Trailing symbols that do not fill a
 *		complete interleaver block decode to nothing; there is no
 *		error path.  Uncorrectable codewords decode from their
 *		uncorrected bits - residual corruption is the payload CRC's
 *		problem, one layer up.
 *
 *--------------------------------------------------------------------------------*/

func (d *Decoder) Decode(symbols []uint16) []byte {
	var data, _ = d.DecodeDetail(symbols)
	return data
}

// DecodeDetail is Decode plus the number of codewords whose error pattern
// was detected but beyond correction.
func (d *Decoder) DecodeDetail(symbols []uint16) ([]byte, int) {
	var syms = dewhiten(degray(symbols), d.whitening)

	var split = min(len(syms), headerSymbolCount)
	var headerSymbols = syms[:split]
	var payloadSymbols = syms[split:]

	var headerNibbles, headerBad = hammingDecode(
		deinterleave(headerSymbols, d.sf-2, headerRDD), headerRDD)
	var payloadNibbles, payloadBad = hammingDecode(
		deinterleave(payloadSymbols, d.sf, d.cr), d.cr)

	if headerBad+payloadBad > 0 {
		log.Debug("uncorrectable codewords in packet",
			"header", headerBad, "payload", payloadBad)
	}

	return append(headerNibbles, payloadNibbles...), headerBad + payloadBad
}

// PackNibbles packs a nibble-per-byte sequence two nibbles per byte, first
// nibble in the high half.  Decode deliberately does not do this - the
// nibble stream is the wire contract - but most consumers want bytes.  An
// odd trailing nibble lands in the high half of the last byte.
func PackNibbles(nibbles []byte) []byte {
	var out = make([]byte, 0, (len(nibbles)+1)/2)
	for i := 0; i < len(nibbles); i += 2 {
		var b = nibbles[i] << 4
		if i+1 < len(nibbles) {
			b |= nibbles[i+1] & 0x0F
		}
		out = append(out, b)
	}
	return out
}
