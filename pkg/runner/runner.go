// Package runner drives a Selector over a list of input files.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/carve"
	"github.com/praetorian-inc/carve/pkg/input"
	"github.com/praetorian-inc/carve/pkg/record"
)

// Config for a Runner.
type Config struct {
	// Jobs is the number of files processed concurrently. Values below 2
	// stream each file straight to the output.
	Jobs int

	// Color highlights file names in error reports.
	Color bool
}

// FileError reports a file that could not be opened or read.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Stats summarizes a run.
type Stats struct {
	Files  int
	Failed int
	Lines  int
}

// Runner applies one Selector to every line or record of its inputs.
type Runner struct {
	selector *carve.Selector
	config   Config
	logger   *zap.Logger
	errStyle *color.Color
}

// New creates a Runner. A nil logger disables logging.
func New(sel *carve.Selector, config Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	errStyle := color.New(color.Bold, color.FgRed)
	if config.Color {
		errStyle.EnableColor()
	} else {
		errStyle.DisableColor()
	}
	return &Runner{
		selector: sel,
		config:   config,
		logger:   logger.Named("runner"),
		errStyle: errStyle,
	}
}

// Run processes files in order, writing extracted lines to out. An empty list
// reads standard input. Files that cannot be opened or read are reported on
// errOut and skipped; only output failures and cancellation abort the run.
func (r *Runner) Run(ctx context.Context, files []string, out, errOut io.Writer) (Stats, error) {
	if len(files) == 0 {
		files = []string{input.Stdin}
	}

	var stats Stats
	var err error
	if r.config.Jobs > 1 && len(files) > 1 {
		err = r.runParallel(ctx, files, out, errOut, &stats)
	} else {
		err = r.runSequential(ctx, files, out, errOut, &stats)
	}

	r.logger.Debug("run finished",
		zap.Int("files", stats.Files),
		zap.Int("failed", stats.Failed),
		zap.Int("lines", stats.Lines),
	)
	return stats, err
}

// =============================================================================
// HELPERS
// =============================================================================

func (r *Runner) runSequential(ctx context.Context, files []string, out, errOut io.Writer, stats *Stats) error {
	w := bufio.NewWriter(out)
	for _, name := range files {
		lines, err := r.processFile(ctx, name, w)
		stats.Files++
		stats.Lines += lines

		// Flush before reporting so stdout and stderr stay in file order.
		if ferr := w.Flush(); ferr != nil {
			return fmt.Errorf("writing output: %w", ferr)
		}
		if err := r.handleError(err, errOut, stats); err != nil {
			return err
		}
	}
	return nil
}

type fileResult struct {
	buf   bytes.Buffer
	lines int
	err   error
}

func (r *Runner) runParallel(ctx context.Context, files []string, out, errOut io.Writer, stats *Stats) error {
	results := make([]*fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Jobs)
	for i, name := range files {
		res := &fileResult{}
		results[i] = res
		g.Go(func() error {
			res.lines, res.err = r.processFile(gctx, name, &res.buf)
			// Only cancellation stops the other workers.
			var fileErr *FileError
			if res.err != nil && !errors.As(res.err, &fileErr) {
				return res.err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		stats.Files++
		stats.Lines += res.lines
		if _, err := res.buf.WriteTo(out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if err := r.handleError(res.err, errOut, stats); err != nil {
			return err
		}
	}
	return nil
}

// handleError reports a FileError and swallows it; any other error is returned.
func (r *Runner) handleError(err error, errOut io.Writer, stats *Stats) error {
	if err == nil {
		return nil
	}
	var fileErr *FileError
	if !errors.As(err, &fileErr) {
		return err
	}

	stats.Failed++
	r.logger.Warn("skipping input", zap.String("file", fileErr.Name), zap.Error(fileErr.Err))
	fmt.Fprintf(errOut, "%s: %v\n", r.errStyle.Sprint(fileErr.Name), fileErr.Err)
	return nil
}

// processFile extracts every line or record of one input into w.
func (r *Runner) processFile(ctx context.Context, name string, w io.Writer) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rc, err := input.Open(name)
	if err != nil {
		return 0, &FileError{Name: name, Err: unwrapPathError(err)}
	}
	defer rc.Close()

	r.logger.Debug("processing input", zap.String("file", name), zap.Stringer("mode", r.selector.Mode()))

	count := 0
	var writeErr error
	emit := func(s string) error {
		count++
		if _, err := io.WriteString(w, s); err != nil {
			writeErr = err
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			writeErr = err
			return err
		}
		return nil
	}

	if r.selector.Mode() == carve.ModeFields {
		rdr := record.NewReader(rc, r.selector.Delimiter())
		err = rdr.Each(func(fields []string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return emit(r.selector.Record(fields))
		})
	} else {
		err = input.Lines(ctx, rc, func(line string) error {
			return emit(r.selector.Line(line))
		})
	}

	switch {
	case err == nil:
		return count, nil
	case writeErr != nil:
		return count, fmt.Errorf("writing output: %w", writeErr)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return count, err
	default:
		return count, &FileError{Name: name, Err: unwrapPathError(err)}
	}
}

// unwrapPathError drops the "open <name>:" prefix os.Open adds, since
// reports already lead with the file name.
func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
