// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic decoder and renderer plugins plus
// fixture helpers for tests.
//
// The synthetic decoder produces one byte per audio unit, where each byte
// is the low 8 bits of its absolute unit index. Tests can therefore
// verify that the bytes a renderer received form a contiguous, monotone
// unit sequence. The memory renderer accumulates everything written to it
// and supports injected write failures.
package audiotest
