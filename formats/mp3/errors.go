// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrUnknownStreamLength = errors.New("mp3 stream length unknown")
	ErrNotOpen             = errors.New("mp3 decoder not open")
)
