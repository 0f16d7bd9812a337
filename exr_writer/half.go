package exr_writer

import "math"

// Binary16 conversions for the HALF pixel type.

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := int32(h>>10) & 0x1F
	mant := int32(h & 0x03FF)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		for mant&0x0400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x03FF
	} else if exp == 31 {
		if mant == 0 {
			return math.Float32frombits((sign << 31) | 0x7F800000)
		}
		return math.Float32frombits((sign << 31) | 0x7F800000 | (uint32(mant) << 13))
	}

	exp = exp + (127 - 15)
	mant <<= 13
	bits := (sign << 31) | (uint32(exp) << 23) | uint32(mant)
	return math.Float32frombits(bits)
}

func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xFF
	mant := bits & 0x007FFFFF

	switch {
	case exp == 255: // inf or NaN
		if mant != 0 {
			return sign | 0x7C00 | 0x0200
		}
		return sign | 0x7C00
	case exp > 142: // overflows half range, saturate to inf
		return sign | 0x7C00
	case exp < 103: // underflows even the subnormal range
		return sign
	case exp < 113: // subnormal half
		mant |= 0x00800000
		shift := uint32(126 - exp)
		half := uint16(mant >> shift)
		if mant>>(shift-1)&1 != 0 {
			half++
		}
		return sign | half
	}

	half := sign | uint16((exp-112)<<10) | uint16(mant>>13)
	// round to nearest even; a mantissa carry ripples into the
	// exponent bits, which is exactly what binary16 wants
	rem := mant & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && half&1 == 1) {
		half++
	}
	return half
}
