package lorarx

import "math/bits"

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Hamming (4+RDD,4) decode and encode.
 *
 * Description:	Each codeword carries one 4-bit data nibble plus RDD parity
 *		bits.  The correction strength steps up with the redundancy:
 *
 *		  RDD 1,2  - detection only, no bits are ever flipped
 *		  RDD 3    - standard single-error correction
 *		  RDD 4    - single-error correction plus a majority-style
 *			     cleanup over the whole byte
 *
 *		A syndrome pattern with all three flags set is an
 *		uncorrectable double error; the codeword passes through
 *		untouched and the caller is told how many of those it got.
 *
 *--------------------------------------------------------------------------------*/

const (
	hammingT1Bitmask = 0xAA // 0b10101010
	hammingT2Bitmask = 0x66 // 0b01100110
	hammingT4Bitmask = 0x1E // 0b00011110
	hammingT8Bitmask = 0xFE // 0b11111110
)

// syndromeMasks lists, per redundancy level, exactly which parity checks
// apply (t1, t2, t4, t8 in that order).  A zero mask always yields a zero
// syndrome, so absent checks fall out of the arithmetic naturally.
var syndromeMasks = [5][4]byte{
	1: {hammingT1Bitmask >> 3, 0, 0, 0},
	2: {hammingT1Bitmask >> 2, hammingT2Bitmask >> 2, 0, 0},
	3: {hammingT1Bitmask >> 1, hammingT2Bitmask >> 1, hammingT4Bitmask >> 1, 0},
	4: {hammingT1Bitmask, hammingT2Bitmask, hammingT4Bitmask, hammingT8Bitmask},
}

// parity is the XOR-parity of the codeword bits selected by the mask.
func parity(c byte, mask byte) byte {
	return byte(bits.OnesCount8(c&mask) & 1)
}

// extractNibble pulls the 4 data bits out of a corrected codeword.  The
// positions are the inverse of where the transmitter inserted parity bits,
// so they shift around with the redundancy.
func extractNibble(cw byte, rdd int) byte {
	switch rdd {
	case 3:
		return ((cw&0x10)>>1 | (cw & 0x04) | (cw & 0x02) | (cw & 0x01)) & 0x0F
	case 4:
		return ((cw&0x20)>>2 | (cw&0x08)>>1 | (cw&0x04)>>1 | (cw&0x02)>>1) & 0x0F
	default:
		return cw & 0x0F
	}
}

/*--------------------------------------------------------------------------------
 *
 * Name:	hammingDecode
 *
 * Purpose:	Decode a codeword sequence down to data nibbles.
 *
 * Inputs:	codewords	- Deinterleaved (4+rdd)-bit codewords.
 *		rdd		- Redundancy, 1..4.
 *
 * Returns:	One nibble per codeword, and the number of codewords whose
 *		syndrome showed an uncorrectable (three flag) error pattern.
 *		Those decode from the uncorrected bits; a noisy channel is
 *		the protocol's designed failure mode and the payload CRC one
 *		layer up is the real detector.
 *
 *--------------------------------------------------------------------------------*/

func hammingDecode(codewords []byte, rdd int) ([]byte, int) {
	var masks = syndromeMasks[rdd]
	var nibbles = make([]byte, 0, len(codewords))
	var uncorrectable = 0

	for _, cw := range codewords {
		// t1, t2, t4 and (RDD=4 only) t8.  t8's mask excludes bit 0, the
		// bit it nominally checks, and it never enters the error position.
		var syndrome [4]byte
		for i, mask := range masks {
			syndrome[i] = parity(cw, mask)
		}
		var t1, t2, t4 = syndrome[0], syndrome[1], syndrome[2]

		var errorPos = -1
		if t1 != 0 {
			errorPos += 1
		}
		if t2 != 0 {
			errorPos += 2
		}
		if t4 != 0 {
			errorPos += 4
		}

		// Three flags never map to a bit position: an uncorrectable
		// double error pattern.  It decodes as-is, it is only counted.
		var numSetFlags = int(t1) + int(t2) + int(t4)
		if numSetFlags == 3 {
			uncorrectable++
		}

		// Hamming(4+rdd,4) is only corrective when rdd >= 3.
		if rdd > 2 {
			if errorPos >= 0 && numSetFlags < 3 {
				cw ^= byte(0x80>>(4-rdd)) >> errorPos
			}

			if rdd == 4 {
				// The (8,4) code has enough distance that a heavily
				// damaged codeword is closer to all-zeros or all-ones
				// than to whatever the syndrome logic left behind.
				var numSetBits = bits.OnesCount8(cw)
				if numSetBits < 3 {
					cw = 0x00
				} else if numSetBits > 5 {
					cw = 0xFF
				}
			}
		}

		nibbles = append(nibbles, extractNibble(cw, rdd))
	}

	return nibbles, uncorrectable
}

// hammingEncode is the transmit direction: place the nibble's bits at the
// extraction positions and solve the t1/t2/t4 checks for zero.  RDD=4
// additionally sets the overall-parity bit, giving every clean codeword
// even weight.
func hammingEncode(nibbles []byte, rdd int) []byte {
	var codewords = make([]byte, 0, len(nibbles))

	for _, n := range nibbles {
		n &= 0x0F
		var d0 = n & 1
		var d1 = n >> 1 & 1
		var d2 = n >> 2 & 1
		var d3 = n >> 3 & 1

		var cw byte
		switch rdd {
		case 1:
			cw = n | (d0^d2)<<4
		case 2:
			cw = n | (d0^d3)<<4 | (d1^d3)<<5
		case 3:
			cw = d0 | d1<<1 | d2<<2 | d3<<4 |
				(d0^d1^d2)<<3 | (d0^d1^d3)<<5 | (d0^d2^d3)<<6
		case 4:
			cw = d0<<1 | d1<<2 | d2<<3 | d3<<5 |
				(d0^d1^d2)<<4 | (d0^d1^d3)<<6 | (d0^d2^d3)<<7
			cw |= parity(cw, 0xFE)
		}

		codewords = append(codewords, cw)
	}

	return codewords
}
