// Package runner executes external tools for plugins and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/AndreyAkinshin/ciplug/internal/logging"
)

// Executor runs shell commands on behalf of a plugin.
type Executor interface {
	// Run formats template with args, executes it in dir, and reports
	// whether the command exited successfully.
	Run(ctx context.Context, dir, template string, args ...interface{}) bool
	// LastOutput returns the combined stdout and stderr of the last Run.
	LastOutput() string
}

// Shell is an Executor backed by the system shell.
type Shell struct {
	// Env holds additional environment variables for every command.
	Env map[string]string
	// Stream, when set, receives command output as it is produced.
	Stream io.Writer

	mu         sync.Mutex
	lastOutput string
}

// NewShell creates a shell executor.
func NewShell() *Shell {
	return &Shell{}
}

// Run implements Executor. With no args the template is used verbatim.
func (s *Shell) Run(ctx context.Context, dir, template string, args ...interface{}) bool {
	cmdStr := template
	if len(args) > 0 {
		cmdStr = fmt.Sprintf(template, args...)
	}
	logging.Debug("Runner", "executing %q in %s", cmdStr, dir)

	var buf bytes.Buffer
	w := io.Writer(&buf)
	if s.Stream != nil {
		w = io.MultiWriter(&buf, s.Stream)
	}

	cmd := buildShellCommand(ctx, cmdStr)
	cmd.Dir = dir
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.Env = mergeEnv(os.Environ(), s.Env)

	err := cmd.Run()

	s.mu.Lock()
	s.lastOutput = strings.TrimRight(buf.String(), "\r\n")
	s.mu.Unlock()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logging.Debug("Runner", "command exited with code %d", exitErr.ExitCode())
		} else {
			logging.Error("Runner", err, "failed to start %q", cmdStr)
		}
		return false
	}
	return true
}

// LastOutput implements Executor.
func (s *Shell) LastOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutput
}

// mergeEnv overlays extra variables on base. Extra wins on conflicts.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	env := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := extra[name]; !overridden {
			env = append(env, kv)
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// buildShellCommand creates a platform-appropriate shell command.
func buildShellCommand(ctx context.Context, cmdStr string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return buildWindowsShellCommand(ctx, cmdStr)
	}
	return exec.CommandContext(ctx, "sh", "-c", cmdStr)
}

// buildWindowsShellCommand creates a PowerShell command using the full path.
func buildWindowsShellCommand(ctx context.Context, cmdStr string) *exec.Cmd {
	systemRoot := os.Getenv("SYSTEMROOT")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	powershellPath := filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe")
	return exec.CommandContext(ctx, powershellPath, "-NoProfile", "-NonInteractive", "-Command", cmdStr)
}

// FindBinary locates a tool. Candidates containing a path separator are
// resolved against root and must exist there; bare names are looked up in
// PATH. The first hit wins.
func FindBinary(root string, candidates ...string) (string, error) {
	for _, c := range candidates {
		if strings.ContainsRune(c, '/') || strings.ContainsRune(c, filepath.Separator) {
			p := c
			if !filepath.IsAbs(p) {
				p = filepath.Join(root, p)
			}
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
			continue
		}
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("could not find %s", strings.Join(candidates, ", "))
}
