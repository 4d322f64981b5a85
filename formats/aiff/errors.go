// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile           = errors.New("not an AIFF file")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
	ErrNotOpen               = errors.New("aiff decoder not open")
)
