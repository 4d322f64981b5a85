// SPDX-License-Identifier: EPL-2.0

package plugin

// Renderer owns the audio output device.
//
// Open acquires the device when the plugin is registered and Close
// releases it when the plugin is unregistered. Setup reconfigures the
// output format; it is called once per opened source, before any Write.
type Renderer interface {
	Open() error
	Close()

	// Setup prepares the device for interleaved PCM in the given format.
	Setup(channels, sampleRate, bitsPerSample int) error

	// Write delivers one decoded payload. It may block while the device
	// drains; an error indicates the device refused the payload.
	Write(data []byte) error

	// VolumeLevel reports the current volume in a renderer-defined range.
	VolumeLevel() int
	SetVolumeLevel(level int)

	Options() []Option
}
