// Package integration provides integration tests for the bibx commands.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	bibxBinary     string
	bibxBinaryOnce sync.Once
	bibxBinaryErr  error
)

// getBibxBinary builds the bibx binary once and returns its path.
func getBibxBinary(t *testing.T) string {
	t.Helper()
	bibxBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			bibxBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "bibx-test-*")
		if err != nil {
			bibxBinaryErr = err
			return
		}
		bibxBinary = filepath.Join(tmpDir, "bibx")

		cmd := exec.Command("go", "build", "-o", bibxBinary, "./cmd/bibx")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			bibxBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if bibxBinaryErr != nil {
		t.Fatalf("failed to build bibx: %v", bibxBinaryErr)
	}
	return bibxBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// result is the outcome of one bibx invocation.
type result struct {
	stdout string
	stderr string
	code   int
}

// runBibx executes bibx in dir. XDG_CONFIG_HOME points into dir and BIBX_*
// variables from the caller's environment are dropped.
func runBibx(t *testing.T, dir string, args ...string) result {
	t.Helper()
	cmd := exec.Command(getBibxBinary(t), args...)
	cmd.Dir = dir

	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "BIBX_") && !strings.HasPrefix(kv, "XDG_CONFIG_HOME=") {
			env = append(env, kv)
		}
	}
	cmd.Env = append(env, "XDG_CONFIG_HOME="+filepath.Join(dir, "config"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	res := result{stdout: stdout.String(), stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.code = exitErr.ExitCode()
	default:
		t.Fatalf("running bibx %v: %v", args, err)
	}
	return res
}

// mustRun runs bibx and fails the test on a non-zero exit.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	res := runBibx(t, dir, args...)
	require.Equal(t, 0, res.code, "bibx %v\nstdout: %s\nstderr: %s", args, res.stdout, res.stderr)
	return res.stdout
}

// decode unmarshals bibx JSON output into v.
func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

// setupLibrary creates a directory with an initialized library.
func setupLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, "init")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const thesis = `Introduction
This thesis studies parsing, as shown in [1, 2] and in [9].
References
Smith, J. (2019). Title of paper. Journal Name, 5(2), 100-120.

Jones, K. (2020). Another study of things. Other Journal, 7(1), 1-9.

Brown, L. (2018). Third title here. Journal Three, 2(4), 10-20.`

const report = `Summary of the report.
Literatūra
Smith, J. (2019). Title of paper. Journal Name, 5(2), 100-120.

Green, M. (2017). A fourth paper on tables. Table Journal, 3(1), 5-8.

White, P. (2016). Fifth and final paper. Last Journal, 9(9), 90-99.`

const letter = "Just a letter.\nNothing to cite here."
