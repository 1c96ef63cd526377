package lorarx

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Invert (and apply) LoRa's diagonal block interleaver.
 *
 * Description:	The transmitter spreads each Hamming codeword across several
 *		symbols along diagonals, so that the burst error caused by one
 *		bad chirp lands as a single bit error in several codewords
 *		instead of several bit errors in one.
 *
 *		Dimensions, receive direction:
 *		  PPM   = bits per symbol in, and codewords out, per block
 *		  4+RDD = bits per codeword out, and symbols in, per block
 *
 *		Header blocks always run at PPM = SF-2, RDD = 4.  Payload
 *		blocks run at PPM = SF, RDD = code rate.
 *
 *--------------------------------------------------------------------------------*/

// Largest PPM we ever deinterleave (SF 12), so a block never produces more
// codewords than this.
const interleaverBlockSize = 12

// swapMSBs exchanges the two most significant bits of each symbol, a quirk
// of the wire format.  Bits at or above ppm are discarded.  Involution over
// ppm-bit values.
func swapMSBs(symbols []uint16, ppm int) []uint16 {
	var out = make([]uint16, len(symbols))
	for i, s := range symbols {
		out[i] = (s&(1<<(ppm-1)))>>1 |
			(s&(1<<(ppm-2)))<<1 |
			(s & (1<<(ppm-2) - 1))
	}
	return out
}

// hammingOrder permutes a freshly deinterleaved codeword into canonical
// Hamming bit order (p1,p2,d1,p3,d2,d3,d4,p4).  Parity bits p3 and p4 are
// flipped over the air, which is why this is not a plain reversal.  Only the
// two corrective rates need a reorder.
func hammingOrder(b byte, rdd int) byte {
	switch rdd {
	case 4:
		return (b & 128) | (b & 64) | (b&32)>>1 | (b&16)>>4 |
			(b&8)<<2 | (b&4)<<1 | (b&2)<<1 | (b&1)<<1
	case 3:
		return (b & 64) | (b & 32) | (b&16)>>1 | (b&8)<<1 |
			(b & 4) | (b & 2) | (b & 1)
	default:
		return b
	}
}

// wireOrder is the inverse of hammingOrder, used on the transmit side.
func wireOrder(b byte, rdd int) byte {
	switch rdd {
	case 4:
		return (b & 0x80) | (b & 0x40) | (b&0x10)<<1 | (b&0x01)<<4 |
			(b&0x20)>>2 | (b&0x08)>>1 | (b&0x04)>>1 | (b&0x02)>>1
	case 3:
		// The RDD=3 permutation only swaps two bits, so it is its own inverse.
		return hammingOrder(b, 3)
	default:
		return b
	}
}

/*--------------------------------------------------------------------------------
 *
 * Name:	deinterleave
 *
 * Purpose:	Undo the diagonal interleaving of one symbol group.
 *
 * Inputs:	symbols	- Degrayed, dewhitened symbols.
 *		ppm	- Bits per symbol (SF for payload, SF-2 for header).
 *		rdd	- Redundancy, 1..4.  Block length is 4+rdd symbols.
 *
 * Returns:	One (4+rdd)-bit codeword per data nibble, ppm codewords per
 *		complete block.  Trailing symbols short of a full block are
 *		dropped, matching the transmitter's block framing.
 *
 * Description:	Bit `bitcount` of a block is read from symbol
 *		`bitcount % (4+rdd)` at bit (ppm-1) - ((bitIdx+bitOffset) % ppm)
 *		and written to bit `bitcount % (4+rdd)` of codeword
 *		`bitcount / (4+rdd)`.  bitIdx resets every 4+rdd bits and
 *		bitOffset bumps once per reset, which is what walks the
 *		diagonal.
 *
 *--------------------------------------------------------------------------------*/

func deinterleave(symbols []uint16, ppm int, rdd int) []byte {
	var blockLen = 4 + rdd
	var swapped = swapMSBs(symbols, ppm)
	var codewords = make([]byte, 0, ppm*(len(swapped)/blockLen))

	for blockCount := 0; blockCount < len(swapped)/blockLen; blockCount++ {
		var block [interleaverBlockSize]byte
		var bitIdx = 0
		var bitOffset = 0

		for bitcount := 0; bitcount < ppm*blockLen; bitcount++ {
			var diagonalMask = uint16(1) << (ppm - 1) >> ((bitIdx + bitOffset) % ppm)
			if swapped[bitcount%blockLen+blockLen*blockCount]&diagonalMask != 0 {
				block[bitcount/blockLen] |= 1 << (bitcount % blockLen)
			}

			if bitcount%blockLen == blockLen-1 {
				bitIdx = 0
				bitOffset++
			} else {
				bitIdx++
			}
		}

		for cwIdx := 0; cwIdx < ppm; cwIdx++ {
			var cw = hammingOrder(block[cwIdx], rdd) & (0xFF >> (4 - rdd))
			codewords = append(codewords, cw)
		}
	}

	return codewords
}

/*--------------------------------------------------------------------------------
 *
 * Name:	interleave
 *
 * Purpose:	Transmit direction: spread ppm codewords across 4+rdd symbols
 *		per block.  Exact inverse of deinterleave, stage by stage:
 *		undo the canonical-order permutation, run the same diagonal
 *		walk writing symbol bits instead of reading them, then swap
 *		the MSBs.
 *
 *--------------------------------------------------------------------------------*/

func interleave(codewords []byte, ppm int, rdd int) []uint16 {
	var blockLen = 4 + rdd
	var symbols = make([]uint16, 0, blockLen*(len(codewords)/ppm))

	for blockCount := 0; blockCount < len(codewords)/ppm; blockCount++ {
		var wire = make([]byte, ppm)
		for cwIdx := 0; cwIdx < ppm; cwIdx++ {
			wire[cwIdx] = wireOrder(codewords[blockCount*ppm+cwIdx], rdd)
		}

		var block = make([]uint16, blockLen)
		var bitIdx = 0
		var bitOffset = 0

		for bitcount := 0; bitcount < ppm*blockLen; bitcount++ {
			if wire[bitcount/blockLen]&(1<<(bitcount%blockLen)) != 0 {
				block[bitcount%blockLen] |= uint16(1) << (ppm - 1) >> ((bitIdx + bitOffset) % ppm)
			}

			if bitcount%blockLen == blockLen-1 {
				bitIdx = 0
				bitOffset++
			} else {
				bitIdx++
			}
		}

		symbols = append(symbols, swapMSBs(block, ppm)...)
	}

	return symbols
}
