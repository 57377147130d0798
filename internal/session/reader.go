package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/fitts/internal/model"
)

// Log is one session log read back from disk.
type Log struct {
	Path    string
	ModTime time.Time
	Samples []model.Sample
}

// Device returns the device part of the log file name.
func (l Log) Device() string {
	name := strings.TrimSuffix(filepath.Base(l.Path), ".csv")
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Participant returns the participant id recorded in the log.
func (l Log) Participant() string {
	if len(l.Samples) > 0 {
		return l.Samples[0].ParticipantID
	}
	name := strings.TrimSuffix(filepath.Base(l.Path), ".csv")
	return strings.Split(name, "-")[0]
}

// ReadFile reads a single session log.
func ReadFile(path string) (Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return Log{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log.
			_ = cerr
		}
	}()
	info, err := file.Stat()
	if err != nil {
		return Log{}, err
	}
	samples, err := ReadCSV(file)
	if err != nil {
		return Log{}, fmt.Errorf("%s: %w", path, err)
	}
	return Log{Path: path, ModTime: info.ModTime(), Samples: samples}, nil
}

// LoadDir reads every *.csv log in dir ordered by modification time.
// A missing directory yields no logs. CSV files without a session header are
// skipped with a warning.
func LoadDir(dir string, logger *zap.Logger) ([]Log, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	var logs []Log
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		log, err := ReadFile(path)
		if errors.Is(err, ErrHeader) {
			logger.Warn("skipping foreign csv", zap.String("path", path), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].ModTime.Equal(logs[j].ModTime) {
			return logs[i].Path < logs[j].Path
		}
		return logs[i].ModTime.Before(logs[j].ModTime)
	})
	return logs, nil
}
