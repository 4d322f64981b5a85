// SPDX-License-Identifier: EPL-2.0

// Package aiff provides the AIFF decoder plugin for the playback engine.
//
// This package uses github.com/go-audio/aiff to decode AIFF files. The
// go-audio decoder streams forward only, so the PCM payload is decoded
// into memory when the file is opened; seeking is then an index move.
// Only 16-bit PCM files are supported.
package aiff
