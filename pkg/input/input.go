// Package input opens named inputs and iterates over their lines.
package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

// Open opens name for reading. Stdin is returned for "-"; closing it is a no-op.
func Open(name string) (io.ReadCloser, error) {
	if name == Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Lines calls fn for each line of r with its "\n" or "\r\n" terminator removed.
// A final line without a terminator is still delivered.
func Lines(ctx context.Context, r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(trimEOL(line)); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func trimEOL(line string) string {
	if !strings.HasSuffix(line, "\n") {
		return line
	}
	return strings.TrimSuffix(line[:len(line)-1], "\r")
}
