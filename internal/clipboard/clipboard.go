// Package clipboard copies text to the user's clipboard, locally or through
// the terminal of a remote session.
package clipboard

import (
	"errors"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/log"
)

// Writer puts text on a clipboard.
type Writer interface {
	Write(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Write(text string) error {
	return f(text)
}

type systemWriter struct{}

// System returns a Writer for the local OS clipboard.
func System() Writer {
	return systemWriter{}
}

func (systemWriter) Write(text string) error {
	return clipboard.WriteAll(text)
}

type osc52Writer struct {
	out  io.Writer
	term string
}

// OSC52 returns a Writer that emits an OSC 52 sequence to out, which the
// client terminal turns into a clipboard write. term is the client's TERM
// and selects the tmux/screen passthrough wrapping.
func OSC52(out io.Writer, term string) Writer {
	return osc52Writer{out: out, term: term}
}

func (w osc52Writer) Write(text string) error {
	seq := osc52.New(text)
	switch {
	case strings.HasPrefix(w.term, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(w.term, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w.out)
	return err
}

// ErrUnavailable is returned by Copy when there is no clipboard to write to.
var ErrUnavailable = errors.New("no clipboard available")

// Copy writes text to w. Failures are logged at debug level and returned.
func Copy(w Writer, text string) error {
	if w == nil {
		return ErrUnavailable
	}
	if err := w.Write(text); err != nil {
		log.Debug("clipboard write failed", "err", err)
		return err
	}
	return nil
}
