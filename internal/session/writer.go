package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LatencyDevice is the device name used for runs with simulated latency.
const LatencyDevice = "latency"

// Decision tells the writer what to do when the log file already exists.
type Decision int

const (
	// DecisionSuffix saves under a timestamped name next to the existing file.
	DecisionSuffix Decision = iota
	// DecisionSkip discards the data.
	DecisionSkip
	// DecisionOverwrite replaces the existing file.
	DecisionOverwrite
)

func (d Decision) String() string {
	switch d {
	case DecisionSuffix:
		return "suffix"
	case DecisionSkip:
		return "skip"
	case DecisionOverwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// ParseDecision parses suffix, skip or overwrite.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "suffix", "y":
		return DecisionSuffix, nil
	case "skip", "n":
		return DecisionSkip, nil
	case "overwrite", "o":
		return DecisionOverwrite, nil
	default:
		return 0, fmt.Errorf("unknown decision %q (use suffix, skip or overwrite)", s)
	}
}

// Resolver decides how to handle an existing log file.
type Resolver interface {
	Resolve(path string) (Decision, error)
}

// FixedResolver always returns the same decision.
type FixedResolver Decision

// Resolve implements Resolver.
func (f FixedResolver) Resolve(string) (Decision, error) {
	return Decision(f), nil
}

// PromptResolver asks on Out and reads y/n/o answers from In.
// End of input saves under a timestamped name.
type PromptResolver struct {
	In  io.Reader
	Out io.Writer
}

// Resolve implements Resolver.
func (p PromptResolver) Resolve(path string) (Decision, error) {
	lines := []string{
		"",
		fmt.Sprintf("There already exists a file for this exact experiment condition: %s", path),
		"Do you want to save your data separately?",
		"y --> will create a timestamped file.",
		"n --> will not save the file",
		"o --> override the current file",
	}
	if _, err := fmt.Fprintln(p.Out, strings.Join(lines, "\n")); err != nil {
		return 0, err
	}
	scanner := bufio.NewScanner(p.In)
	for {
		if _, err := fmt.Fprint(p.Out, "y/n/o:"); err != nil {
			return 0, err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return DecisionSuffix, nil
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(answer) != 1 {
			continue
		}
		if d, err := ParseDecision(answer); err == nil {
			return d, nil
		}
	}
}

// FileName returns the log file name and the device recorded for a run.
// Runs with latency enabled are filed under the latency device.
func FileName(id, device string, latencyEnabled bool) (string, string) {
	if latencyEnabled && device != LatencyDevice {
		device = LatencyDevice
	}
	return fmt.Sprintf("%s-%s.csv", id, device), device
}

// Path returns the log path for a run in dir.
func Path(dir, id, device string, latencyEnabled bool) string {
	name, _ := FileName(id, device, latencyEnabled)
	return filepath.Join(dir, name)
}

// Writer persists session tables into a log directory.
type Writer struct {
	Dir      string
	Resolver Resolver
	Now      func() time.Time
	Logger   *zap.Logger
}

// Write stores the table as <dir>/<id>-<device>.csv and returns the written
// path. It returns an empty path when the resolver chose to skip.
func (w *Writer) Write(table *Table, id, device string, latencyEnabled bool) (string, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	name, device := FileName(id, device, latencyEnabled)
	path := filepath.Join(w.Dir, name)

	if _, err := os.Stat(path); err == nil {
		decision := DecisionSuffix
		if w.Resolver != nil {
			decision, err = w.Resolver.Resolve(path)
			if err != nil {
				return "", fmt.Errorf("failed to resolve existing log: %w", err)
			}
		}
		logger.Info("log file exists", zap.String("path", path), zap.Stringer("decision", decision))
		switch decision {
		case DecisionSkip:
			return "", nil
		case DecisionSuffix:
			path = filepath.Join(w.Dir, fmt.Sprintf("%s-%s-%s.csv", id, device, unixSeconds(w.now())))
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat log: %w", err)
	}

	if err := writeFile(path, table); err != nil {
		return "", err
	}
	logger.Info("session saved", zap.String("path", path), zap.Int("rows", table.Len()))
	return path, nil
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func unixSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', 6, 64)
}

const logFileMode = 0o644

func writeFile(path string, table *Table) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp log: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := WriteCSV(writer, table.Rows()); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	if err := tmpFile.Chmod(logFileMode); err != nil {
		return fmt.Errorf("failed to set log permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
