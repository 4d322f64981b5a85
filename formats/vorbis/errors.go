// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	ErrUnknownStreamLength = errors.New("vorbis stream length unknown")
	ErrNotOpen             = errors.New("vorbis decoder not open")
)
