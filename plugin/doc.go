// SPDX-License-Identifier: EPL-2.0

// Package plugin defines the capability contracts between the playback
// engine and its decoder and renderer plugins.
//
// The engine never depends on a concrete codec or audio backend. It talks
// to decoders and renderers only through the interfaces declared here, and
// obtains instances through an Agent, the plugin's factory handle.
//
// # Agents
//
// An Agent creates and releases plugin instances:
//
//	type Agent interface {
//	    Type() Type
//	    Info() Info
//	    CreateObject() any
//	    FreeObject(obj any)
//	}
//
// The engine compares agents by interface equality when unregistering, so
// an agent must be comparable and a package should hand out the same agent
// value (or pointer) for register and unregister calls.
//
// # Decoders
//
// A Decoder streams a source file as a sequence of audio units. An audio
// unit is the smallest addressable sample group the decoder exposes,
// typically one PCM frame across all channels. DecodeUnit fills a caller
// provided buffer with one batch of units and reports how many bytes and
// units it produced; SetUnitIndex repositions the stream for seeking.
//
// # Renderers
//
// A Renderer owns the audio device. Setup configures the output format and
// Write delivers one decoded payload of PCM bytes. Write is allowed to
// block while the device drains; the engine treats a failed write as
// transient device backpressure.
package plugin
