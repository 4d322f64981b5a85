// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToPCM16 converts interleaved float32 samples in [-1, 1] into
// little-endian 16-bit PCM bytes. dst must hold at least len(src)*2
// bytes. Returns the number of bytes written.
func Float32ToPCM16(dst []byte, src []float32) int {
	for i, x := range src {
		v := Float32ToInt16(x)
		dst[2*i] = byte(v)
		dst[2*i+1] = byte(uint16(v) >> 8)
	}
	return len(src) * 2
}

// Int16ToPCM16 writes int16 samples as little-endian bytes into dst,
// which must hold at least len(src)*2 bytes. Returns the number of bytes
// written.
func Int16ToPCM16(dst []byte, src []int16) int {
	for i, v := range src {
		dst[2*i] = byte(v)
		dst[2*i+1] = byte(uint16(v) >> 8)
	}
	return len(src) * 2
}
