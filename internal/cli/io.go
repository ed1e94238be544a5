package cli

import (
	"fmt"
	"io"
)

// IO bundles the command's output streams.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Write copies raw bytes to stdout, for relaying a command's captured
// output without reformatting.
func (o *IO) Write(data []byte) {
	_, _ = o.out.Write(data)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrWrite copies raw bytes to stderr.
func (o *IO) ErrWrite(data []byte) {
	_, _ = o.errOut.Write(data)
}
