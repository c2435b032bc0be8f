package console

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"

	"conshell/pkg/contypes"
)

// StdPrinter is the default result printer. It prefixes results with "=>"
// and applies ANSI styling only when the terminal capability environment
// allows it.
type StdPrinter struct {
	out     io.Writer
	profile termenv.Profile
}

var _ contypes.Printer = (*StdPrinter)(nil)

// NewPrinter creates a printer writing to out. When color is false, or the
// environment reports a dumb terminal or NO_COLOR, output stays plain.
func NewPrinter(out io.Writer, color bool) *StdPrinter {
	profile := termenv.Ascii
	if color {
		profile = termenv.EnvColorProfile()
	}
	if out == nil {
		out = os.Stdout
	}
	return &StdPrinter{out: out, profile: profile}
}

// PrintResult shows a successful evaluation result.
func (p *StdPrinter) PrintResult(text string) {
	arrow := p.profile.String("=>").Foreground(p.profile.Color("6")).String()
	fmt.Fprintf(p.out, "%s %s\n", arrow, text)
}

// PrintError shows an evaluation or dispatch failure.
func (p *StdPrinter) PrintError(err error) {
	label := p.profile.String(err.Error()).Foreground(p.profile.Color("1")).String()
	fmt.Fprintln(p.out, label)
}

// Print shows plain text on its own line.
func (p *StdPrinter) Print(text string) {
	fmt.Fprintln(p.out, text)
}
