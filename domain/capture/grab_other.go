//go:build !windows

package capture

import "log/slog"

// PlatformGrabber captures through the portable screenshot backend. The fallback
// flag has no effect since there is only one backend here.
func PlatformGrabber(_ bool, _ *slog.Logger) GrabFunc { return screenshotGrab }
