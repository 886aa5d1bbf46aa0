// Package reader supplies the terminal input collaborator the PAUSE opcode
// consumes: it decides whether pausing is even possible (stdin must be a
// real terminal) and reads one character when it is.
package reader

import (
	"bufio"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Terminal reads single characters from an underlying file, gating on
// whether that file is an interactive terminal.
type Terminal struct {
	file *os.File
	buf  *bufio.Reader
}

// NewStdin builds a Terminal over os.Stdin.
func NewStdin() *Terminal {
	return &Terminal{file: os.Stdin, buf: bufio.NewReader(os.Stdin)}
}

// Enabled reports whether the underlying file is a real terminal. A script
// run with stdin piped from a file or /dev/null — the common case for a
// scheduled/batch run — gets Enabled() == false, and PAUSE becomes a no-op
// instead of blocking forever.
func (t *Terminal) Enabled() bool {
	return isatty.IsTerminal(t.file.Fd()) || isatty.IsCygwinTerminal(t.file.Fd())
}

// ReadChar reads and returns one rune, blocking until it's available.
func (t *Terminal) ReadChar() (rune, error) {
	r, _, err := t.buf.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, err
	}
	return r, nil
}
