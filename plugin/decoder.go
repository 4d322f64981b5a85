// SPDX-License-Identifier: EPL-2.0

package plugin

// AudioMode describes the channel layout reported by a decoder.
type AudioMode int

const (
	AudioModeNone AudioMode = iota
	AudioModeMono
	AudioModeStereo
	AudioModeJointStereo
	AudioModeDual
)

func (m AudioMode) String() string {
	switch m {
	case AudioModeMono:
		return "mono"
	case AudioModeStereo:
		return "stereo"
	case AudioModeJointStereo:
		return "joint-stereo"
	case AudioModeDual:
		return "dual"
	default:
		return "none"
	}
}

// Decoder streams one source file as a sequence of audio units.
//
// A decoder keeps an internal unit index. DecodeUnit produces the next
// batch of units starting at that index and advances it; SetUnitIndex
// repositions it. Open must be called before any streaming operation and
// Close must be idempotent.
type Decoder interface {
	// FileSuffix returns the lowercased filename suffixes this decoder
	// handles, without the leading dot.
	FileSuffix() []string

	Open(path string) error
	Close()

	// DecodeUnit fills buf with the next batch of decoded audio, returning
	// the bytes written and the number of audio units they represent. buf
	// is at least MaxBytesPerUnit bytes. A return of unitCount == 0 with a
	// non-nil error ends the stream.
	DecodeUnit(buf []byte) (used int, unitCount int, err error)

	// SetUnitIndex seeks to the given unit. Indexes past the end clamp to
	// UnitCount.
	SetUnitIndex(index uint64)
	UnitIndex() uint64
	UnitCount() uint64

	// MaxBytesPerUnit is the upper bound on the bytes DecodeUnit writes in
	// one call. Valid after Open.
	MaxBytesPerUnit() int

	// Duration of the source in milliseconds.
	Duration() uint64
	// BitRate of the source in kbit/s, or -1 when unknown.
	BitRate() int
	SampleRate() int
	BitsPerSample() int
	Channels() int
	AudioMode() AudioMode

	Options() []Option
}
