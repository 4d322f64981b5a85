// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides the Ogg Vorbis decoder plugin for the playback
// engine.
//
// Decoding is done by github.com/jfreymuth/oggvorbis. The reader's
// float32 output is converted to interleaved 16-bit PCM; one audio unit
// is one frame. Seeking uses the reader's SetPosition, which is
// frame-exact on seekable files.
package vorbis
