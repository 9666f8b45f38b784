package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/praetorian-inc/carve"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const booksTSV = "Author\tYear\tTitle\n" +
	"Émile Zola\t1865\tLa Confession de Claude\n" +
	"Samuel Beckett\t1952\tEn attendant Godot\n" +
	"Jules Verne\t1870\tVingt mille lieues sous les mers\n"

const booksCSV = "Author,Year,Title\n" +
	"Émile Zola,1865,La Confession de Claude\n" +
	"Samuel Beckett,1952,En attendant Godot\n" +
	"\"Verne, Jules\",1870,Vingt mille lieues sous les mers\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSelector(t *testing.T, mode carve.Mode, spec string, opts ...carve.Option) *carve.Selector {
	t.Helper()
	sel, err := carve.NewSelector(mode, spec, opts...)
	require.NoError(t, err)
	return sel
}

func run(t *testing.T, r *Runner, files ...string) (string, string, Stats) {
	t.Helper()
	var out, errOut bytes.Buffer
	stats, err := r.Run(context.Background(), files, &out, &errOut)
	require.NoError(t, err)
	return out.String(), errOut.String(), stats
}

func TestRun_Chars(t *testing.T) {
	path := writeFile(t, t.TempDir(), "books.tsv", booksTSV)
	r := New(newSelector(t, carve.ModeChars, "1-6"), Config{}, nil)

	out, errOut, stats := run(t, r, path)
	assert.Equal(t, "Author\nÉmile \nSamuel\nJules \n", out)
	assert.Empty(t, errOut)
	assert.Equal(t, Stats{Files: 1, Lines: 4}, stats)
}

func TestRun_Bytes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "books.tsv", booksTSV)
	r := New(newSelector(t, carve.ModeBytes, "1"), Config{}, nil)

	out, _, _ := run(t, r, path)
	// "É" is two bytes, so its first byte alone decodes to U+FFFD
	assert.Equal(t, "A\n�\nS\nJ\n", out)
}

func TestRun_ShortLinesContributeNothing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "short.txt", "abc\nabcdef\n\nxy\n")
	r := New(newSelector(t, carve.ModeChars, "2-4"), Config{}, nil)

	out, _, _ := run(t, r, path)
	assert.Equal(t, "\nbcd\n\n\n", out)
}

func TestRun_FieldsTab(t *testing.T) {
	path := writeFile(t, t.TempDir(), "books.tsv", booksTSV)
	r := New(newSelector(t, carve.ModeFields, "3,1"), Config{}, nil)

	out, _, _ := run(t, r, path)
	assert.Equal(t, "Title\tAuthor\n"+
		"La Confession de Claude\tÉmile Zola\n"+
		"En attendant Godot\tSamuel Beckett\n"+
		"Vingt mille lieues sous les mers\tJules Verne\n", out)
}

func TestRun_FieldsCSVQuoted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "books.csv", booksCSV)
	r := New(newSelector(t, carve.ModeFields, "1", carve.WithDelimiter(',')), Config{}, nil)

	out, _, stats := run(t, r, path)
	assert.Equal(t, "Author\nÉmile Zola\nSamuel Beckett\nVerne, Jules\n", out)
	assert.Equal(t, 4, stats.Lines)
}

func TestRun_MissingFileContinues(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.txt", "alpha\n")
	missing := filepath.Join(dir, "missing.txt")
	second := writeFile(t, dir, "b.txt", "beta\n")

	r := New(newSelector(t, carve.ModeChars, "1"), Config{}, nil)
	out, errOut, stats := run(t, r, first, missing, second)

	assert.Equal(t, "a\nb\n", out)
	assert.Equal(t, missing+": no such file or directory\n", errOut)
	assert.Equal(t, Stats{Files: 3, Failed: 1, Lines: 2}, stats)
}

func TestRun_DirectoryIsReported(t *testing.T) {
	dir := t.TempDir()
	r := New(newSelector(t, carve.ModeChars, "1"), Config{}, nil)

	out, errOut, stats := run(t, r, dir)
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(errOut, dir+": "), errOut)
	assert.Equal(t, 1, stats.Failed)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 12; i++ {
		var content strings.Builder
		for j := 0; j < 50; j++ {
			fmt.Fprintf(&content, "file%02d\tline%03d\tpayload-%d\n", i, j, i*j)
		}
		files = append(files, writeFile(t, dir, fmt.Sprintf("f%02d.tsv", i), content.String()))
	}
	files = append(files[:5], append([]string{filepath.Join(dir, "gone.tsv")}, files[5:]...)...)

	sel := newSelector(t, carve.ModeFields, "2,1")

	seqOut, seqErr, seqStats := run(t, New(sel, Config{Jobs: 1}, nil), files...)
	parOut, parErr, parStats := run(t, New(sel, Config{Jobs: 4}, nil), files...)

	assert.Equal(t, seqOut, parOut)
	assert.Equal(t, seqErr, parErr)
	assert.Equal(t, seqStats, parStats)
	assert.Equal(t, 1, parStats.Failed)
	assert.Equal(t, 12*50, parStats.Lines)
}

func TestRun_Cancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", "alpha\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, jobs := range []int{1, 3} {
		r := New(newSelector(t, carve.ModeChars, "1"), Config{Jobs: jobs}, nil)
		var out, errOut bytes.Buffer
		_, err := r.Run(ctx, []string{path, path}, &out, &errOut)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, errOut.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRun_WriteFailureAborts(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", strings.Repeat("alpha\n", 10000))
	r := New(newSelector(t, carve.ModeChars, "1-3"), Config{}, nil)

	var errOut bytes.Buffer
	_, err := r.Run(context.Background(), []string{path}, failingWriter{}, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_ColorHighlightsName(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	r := New(newSelector(t, carve.ModeChars, "1"), Config{Color: true}, nil)

	_, errOut, _ := run(t, r, missing)
	assert.Contains(t, errOut, "\x1b[")
	assert.Contains(t, errOut, "no such file or directory")
}

func TestRun_LogsSkippedInput(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	missing := filepath.Join(t.TempDir(), "missing.txt")
	r := New(newSelector(t, carve.ModeChars, "1"), Config{}, zap.New(core))

	run(t, r, missing)

	warned := logs.FilterMessage("skipping input").All()
	require.Len(t, warned, 1)
	assert.Equal(t, missing, warned[0].ContextMap()["file"])
}

func TestFileError(t *testing.T) {
	err := &FileError{Name: "x.txt", Err: os.ErrPermission}
	assert.Equal(t, "x.txt: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
}
