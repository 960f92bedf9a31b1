// Package capture supplies utterances to the turn loop.
//
// A Source returns one lower-cased transcript per call. An empty string is
// the "nothing heard" signal (timeout, no match, service error) and is never
// an error; ErrClosed is reserved for a source that has nothing more to give.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nadzzz/joey/internal/textutil"
)

// ErrClosed is returned once a source is exhausted.
var ErrClosed = errors.New("capture source closed")

// Source yields utterances.
type Source interface {
	Capture(ctx context.Context) (string, error)
}

// Console reads one utterance per line, e.g. from stdin.
type Console struct {
	out    io.Writer
	prompt string

	once  sync.Once
	in    io.Reader
	lines chan string
}

// NewConsole creates a line source. prompt, when non-empty, is written to
// out before each read.
func NewConsole(in io.Reader, out io.Writer, prompt string) *Console {
	return &Console{in: in, out: out, prompt: prompt}
}

func (c *Console) start() {
	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			slog.Error("console read failed", "error", err)
		}
	}()
}

// Capture waits for the next line. It returns "" for blank lines, ErrClosed
// at end of input, and the context error when cancelled.
func (c *Console) Capture(ctx context.Context) (string, error) {
	c.once.Do(c.start)
	if c.prompt != "" && c.out != nil {
		fmt.Fprint(c.out, c.prompt)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", ErrClosed
		}
		return textutil.Normalize(line), nil
	}
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (string, error)

// Capture calls f.
func (f Func) Capture(ctx context.Context) (string, error) { return f(ctx) }
