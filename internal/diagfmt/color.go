package diagfmt

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ColorEnabled resolves a --color value (auto|on|off) for output to f.
// auto enables colour only on a terminal and honours NO_COLOR.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" || f == nil {
			return false, nil
		}
		return term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid color mode %q (want auto, on or off)", mode)
}
