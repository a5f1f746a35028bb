//go:build !windows

package action

import "errors"

// MoveCursor is not available on this platform.
func MoveCursor(x, y int) error { return errors.ErrUnsupported }
