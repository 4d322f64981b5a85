// SPDX-License-Identifier: EPL-2.0

// Package audplayer is a modular audio playback engine for Go
// applications.
//
// The engine streams an audio file from disk through a format decoder,
// across a bounded ring of reusable PCM buffers, into a renderer that
// writes to the sound device, while an unrelated goroutine drives it with
// interactive commands: open, play a time range, pause, resume, seek,
// close.
//
// # Architecture
//
// The heart of the package is the player engine in the player
// subpackage: two long-lived worker goroutines (decoder and renderer)
// coupled by a bounded buffer ring, a strict status machine, and a
// registry of decoder and renderer plugins. Everything format- or
// device-specific lives behind the capability contracts in the plugin
// subpackage:
//
//   - formats/wav   16-bit PCM WAV (github.com/go-audio/wav)
//   - formats/mp3   MP3 (github.com/hajimehoshi/go-mp3)
//   - formats/vorbis Ogg Vorbis (github.com/jfreymuth/oggvorbis)
//   - formats/aiff  AIFF (github.com/go-audio/aiff)
//   - renderers/oto speaker output (github.com/hajimehoshi/oto)
//
// # Quick Start
//
// The simplest way to play a file start to finish:
//
//	if err := audplayer.PlayFile("track.mp3"); err != nil {
//	    log.Fatal(err)
//	}
//
// For interactive control, build a player and drive it yourself:
//
//	p := audplayer.NewPlayer()
//	defer p.Shutdown()
//
//	if err := p.Open("track.ogg"); err != nil {
//	    log.Fatal(err)
//	}
//
//	p.SigFinished().Connect(func() { fmt.Println("done") })
//	p.Play()
//	...
//	p.Pause()
//	p.SeekTime(90_000) // 1:30
//	p.Resume()
//
// Custom decoders and renderers implement the interfaces in the plugin
// subpackage and register through an agent; see the plugin package
// documentation.
//
// # Concurrency
//
// All engine commands must be issued from one goroutine at a time. The
// completion signal runs observers on a detached goroutine that holds no
// engine locks, so an observer may immediately open and play the next
// track.
package audplayer
