// Package theme configures ttk styles for the detector window in light and dark mode.
package theme

import (
	"github.com/lucasb-eyer/go-colorful"

	tk "modernc.org/tk9.0"
)

// Palette holds resolved colours for one mode.
type Palette struct {
	AppBg   string
	Primary string
	Danger  string
	Accent  string
}

var (
	light = Palette{
		AppBg:   "#f7f9fb",
		Primary: "#2563eb",
		Danger:  "#dc2626",
		Accent:  "#10b981",
	}
	dark = Palette{
		AppBg:   "#0f172a",
		Primary: "#3b82f6",
		Danger:  "#ef4444",
		Accent:  "#10b981",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
)

var darkMode bool

// For returns the palette for the given mode.
func For(isDark bool) Palette {
	if isDark {
		return dark
	}
	return light
}

// Current returns the palette for the active mode.
func Current() Palette { return For(darkMode) }

// Shade darkens a hex colour by amount in [0,1] in Lab space. Invalid input is
// returned unchanged.
func Shade(hex string, amount float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{}, amount).Clamped().Hex()
}

// SetDark switches mode and reapplies styles. Returns the new mode.
func SetDark(d bool) bool {
	darkMode = d
	apply(Current())
	return darkMode
}

// ToggleDark flips dark mode and reapplies styles. Returns the new mode.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports the current mode.
func IsDark() bool { return darkMode }

func apply(p Palette) {
	mode := "light"
	if darkMode {
		mode = "dark"
	}
	_ = tk.ActivateTheme("azure " + mode)
	tk.App.Configure(tk.Background(p.AppBg))

	for _, b := range []struct{ name, bg string }{
		{StylePrimaryButton, p.Primary},
		{StyleDangerButton, p.Danger},
	} {
		tk.StyleConfigure(b.name,
			tk.Background(b.bg),
			tk.Foreground("white"),
			tk.Padding("4p 3p"),
			tk.Borderwidth(1),
			tk.Relief("ridge"),
		)
	}
	tk.StyleConfigure(StyleStateLabel,
		tk.Foreground("white"),
		tk.Background(Shade(p.Accent, 0.1)),
		tk.Padding("4p 2p"),
		tk.Borderwidth(1),
		tk.Relief("groove"),
	)
}
