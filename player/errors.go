// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrNoDecoder is returned by Open when no registered decoder handles
	// the file's suffix.
	ErrNoDecoder = errors.New("no decoder for file suffix")

	// ErrNoRenderer is returned by Open when no renderer plugin is set.
	ErrNoRenderer = errors.New("no renderer plugin set")
)
