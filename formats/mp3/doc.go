// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides the MP3 decoder plugin for the playback engine.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which emits 16-bit
// stereo PCM regardless of the source layout; one audio unit is one
// output frame. Seeking uses the decoder's sample-exact Seek.
package mp3
