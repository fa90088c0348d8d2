package prompt

import (
	"bufio"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/cli"
	colorable "github.com/mattn/go-colorable"
	"github.com/mitchellh/colorstring"
	"golang.org/x/term"
)

const (
	// EnvNoColor disables colored output when set to any value
	EnvNoColor = "FSTAB_ADD_NO_COLOR"

	// EnvForceColor enables colored output even when stdout is not a terminal
	EnvForceColor = "FSTAB_ADD_FORCE_COLOR"
)

// NewUi returns the operator Ui on stdin/stdout/stderr. Output is colored
// only if not disabled and stdout is a tty or colors are forced.
func NewUi(noColor, forceColor bool) cli.Ui {
	noColor = noColor || os.Getenv(EnvNoColor) != ""
	forceColor = forceColor || os.Getenv(EnvForceColor) != ""

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	useColor := !noColor && (isTerminal || forceColor)

	return newUi(os.Stdin, colorable.NewColorableStdout(), colorable.NewColorableStderr(), useColor)
}

func newUi(r io.Reader, w, ew io.Writer, useColor bool) cli.Ui {
	// ColoredUi renders through fatih/color, which otherwise makes its own
	// tty decision and would ignore --force-color.
	color.NoColor = !useColor

	// BasicUi wraps Reader in a new bufio.Reader on every Ask. Handing it one
	// already buffered keeps piped answers from being dropped between Asks.
	var ui cli.Ui = &cli.BasicUi{
		Reader:      bufio.NewReader(r),
		Writer:      w,
		ErrorWriter: ew,
	}
	if useColor {
		ui = &cli.ColoredUi{
			ErrorColor: cli.UiColorRed,
			WarnColor:  cli.UiColorYellow,
			InfoColor:  cli.UiColorGreen,
			Ui:         ui,
		}
	}
	return ui
}

// Colorize returns a colorstring formatter that is enabled only for colored Uis
func Colorize(ui cli.Ui) *colorstring.Colorize {
	_, colored := ui.(*cli.ColoredUi)
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !colored,
		Reset:   true,
	}
}
