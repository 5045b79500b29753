package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter colors a piece of output, or leaves it plain when color is off.
type Formatter struct {
	color *color.Color
}

func (f Formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return text
	}
	return f.color.Sprint(text)
}

func (f Formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

func noColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

var (
	Success = Formatter{color.New(color.FgGreen)}
	Error   = Formatter{color.New(color.FgRed)}
	Warning = Formatter{color.New(color.FgYellow)}
	Info    = Formatter{color.New(color.FgCyan)}
	Muted   = Formatter{color.New(color.Faint)}
)
