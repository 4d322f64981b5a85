// SPDX-License-Identifier: EPL-2.0

// Package wav provides the WAV decoder plugin for the playback engine.
//
// It handles canonical 16-bit PCM WAV files, mono or stereo. Headers are
// parsed with github.com/go-audio/wav; the PCM payload is then streamed
// directly from the file, which keeps one audio unit equal to one PCM
// frame and makes seeking exact.
//
// Register the plugin with:
//
//	p.RegisterDecoderPlugin(wav.Agent{})
package wav
