// SPDX-License-Identifier: EPL-2.0

// Package player implements the playback engine: a two-goroutine
// producer/consumer pipeline that streams an audio file through a decoder
// plugin, across a bounded ring of reusable PCM buffers, into a renderer
// plugin that writes to the sound device.
//
// # Pipeline
//
// The decoder worker takes free slots from the UnitBufferRing, fills them
// through the active decoder and recycles them as data; the renderer
// worker takes data slots, writes them to the device and recycles them as
// free. The ring's blocking endpoints provide the backpressure between the
// two, so decoding never runs more than the ring's capacity ahead of the
// device.
//
// # Commands
//
// The Player exposes Open, Close, Play, Pause, Resume, SeekTime,
// SeekPercent and volume control. Commands suspend and resume the workers
// through suspend flags and latches; after Pause returns, both workers
// are parked and the play position is stable. Commands must be issued
// from a single goroutine at a time; the engine does not serialize its
// command surface.
//
// Positions are tracked in audio units, the decoder-defined smallest
// addressable sample group. Playback covers a half-open unit range and
// completes when the renderer index reaches the range end, at which point
// the Player transitions to StatusStopped and fires SigFinished from a
// detached goroutine.
//
// # Plugins
//
// Decoder plugins register under their declared filename suffixes; one
// decoder instance per registered agent is shared by all of its suffix
// keys. A single renderer plugin occupies the renderer slot. Unregistering
// the plugin that is currently playing closes the player first, so plugin
// lifetimes never race live playback.
//
// # Basic use
//
//	p := player.NewPlayer()
//	defer p.Shutdown()
//
//	p.RegisterDecoderPlugin(wav.Agent{})
//	p.RegisterRendererPlugin(oto.Agent{})
//
//	if err := p.Open("track.wav"); err != nil {
//	    return err
//	}
//	done := make(chan struct{})
//	p.SigFinished().Connect(func() { close(done) })
//	p.Play()
//	<-done
package player
