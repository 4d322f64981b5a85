// SPDX-License-Identifier: EPL-2.0

// Package oto provides the speaker renderer plugin, writing PCM to the
// system's audio device through github.com/hajimehoshi/oto.
//
// The plugin keeps a device buffer of about 100 ms, so engine writes
// block once the device is that far ahead; this is the backpressure that
// paces the whole pipeline in real time. Volume (0..100) is applied in
// software on 16-bit samples.
package oto
