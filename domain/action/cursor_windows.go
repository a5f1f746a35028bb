//go:build windows

package action

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var procSetCursorPos = windows.NewLazySystemDLL("user32.dll").NewProc("SetCursorPos")

// MoveCursor moves the OS mouse pointer to (x, y) in screen coordinates.
func MoveCursor(x, y int) error {
	if ok, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y)); ok == 0 {
		return fmt.Errorf("SetCursorPos(%d, %d): %w", x, y, err)
	}
	return nil
}
