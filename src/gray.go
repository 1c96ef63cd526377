package lorarx

// LoRa transmits symbols Gray mapped so that an off-by-one chirp
// measurement corrupts only a single bit.

// grayDecode maps one received symbol from Gray code back to binary.
// Width independent: bits above the spreading factor are don't-care
// here and get masked off by the deinterleaver.
func grayDecode(s uint16) uint16 {
	return s ^ (s >> 1)
}

// grayEncode is the transmit direction, the inverse of grayDecode.
func grayEncode(s uint16) uint16 {
	s ^= s >> 8
	s ^= s >> 4
	s ^= s >> 2
	s ^= s >> 1
	return s
}

func degray(symbols []uint16) []uint16 {
	var out = make([]uint16, len(symbols))
	for i, s := range symbols {
		out[i] = grayDecode(s)
	}
	return out
}

func engray(symbols []uint16) []uint16 {
	var out = make([]uint16, len(symbols))
	for i, s := range symbols {
		out[i] = grayEncode(s)
	}
	return out
}
