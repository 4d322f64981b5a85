// SPDX-License-Identifier: EPL-2.0

// Package utils provides small sample-format conversion helpers shared by
// the decoder plugins: normalized float32 to 16-bit PCM, scalar and
// batched, with little-endian byte packing.
package utils
