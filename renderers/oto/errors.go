// SPDX-License-Identifier: EPL-2.0

package oto

import "errors"

var ErrNotSetUp = errors.New("audio device not set up")
