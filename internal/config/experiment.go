package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/fitts/internal/model"
)

// DefaultDevice is recorded when the config leaves the device column empty.
const DefaultDevice = "mouse"

// ErrShapeMismatch is returned when radii and distances differ in length.
var ErrShapeMismatch = errors.New("radii and distances must have the same amount of values")

var requiredColumns = []string{"id", "repetitions", "radii", "distances", "latency"}

// ExampleExperiment is a valid experiment config.
const ExampleExperiment = `id,repetitions,radii,distances,latency,device
0,3,25 15 40,110 30 70,0.15,mouse
`

// LoadExperiment reads the experiment config CSV at path.
func LoadExperiment(path string) (model.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to open experiment config: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only config.
			_ = cerr
		}
	}()
	cfg, err := ParseExperiment(file)
	if err != nil {
		return model.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseExperiment parses a header row followed by one data row. Columns are
// matched by name; radii and distances are space-separated lists.
func ParseExperiment(r io.Reader) (model.Config, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Config{}, fmt.Errorf("experiment config is empty")
		}
		return model.Config{}, err
	}
	row, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Config{}, fmt.Errorf("experiment config has no data row")
		}
		return model.Config{}, err
	}

	fields := make(map[string]string, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || i >= len(row) {
			continue
		}
		fields[name] = strings.TrimSpace(row[i])
	}
	for _, col := range requiredColumns {
		if _, ok := fields[col]; !ok {
			return model.Config{}, fmt.Errorf("missing column %q", col)
		}
	}

	cfg := model.Config{
		ParticipantID: fields["id"],
		Device:        fields["device"],
	}
	if cfg.ParticipantID == "" {
		return model.Config{}, fmt.Errorf("id must not be empty")
	}
	if strings.ContainsAny(cfg.ParticipantID, `-/\`) {
		return model.Config{}, fmt.Errorf("id %q must not contain '-' or path separators", cfg.ParticipantID)
	}
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if strings.ContainsAny(cfg.Device, `-/\`) {
		return model.Config{}, fmt.Errorf("device %q must not contain '-' or path separators", cfg.Device)
	}

	if cfg.Repetitions, err = parseCount(fields["repetitions"]); err != nil {
		return model.Config{}, fmt.Errorf("invalid repetitions: %w", err)
	}
	if cfg.Repetitions < 1 {
		return model.Config{}, fmt.Errorf("repetitions must be >= 1")
	}
	if raw, ok := fields["trials"]; ok && raw != "" {
		if cfg.Trials, err = parseCount(raw); err != nil {
			return model.Config{}, fmt.Errorf("invalid trials: %w", err)
		}
		if cfg.Trials < 0 {
			return model.Config{}, fmt.Errorf("trials must be >= 0")
		}
	}

	radii, err := parseList(fields["radii"])
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid radii: %w", err)
	}
	distances, err := parseList(fields["distances"])
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid distances: %w", err)
	}
	if len(radii) != len(distances) {
		return model.Config{}, fmt.Errorf("%w (radii: %d, distances: %d)", ErrShapeMismatch, len(radii), len(distances))
	}
	if len(radii) == 0 {
		return model.Config{}, fmt.Errorf("radii must not be empty")
	}
	for i := range radii {
		if radii[i] <= 0 {
			return model.Config{}, fmt.Errorf("radius %v must be > 0", radii[i])
		}
		if distances[i] < 0 {
			return model.Config{}, fmt.Errorf("distance %v must be >= 0", distances[i])
		}
		cfg.Conditions = append(cfg.Conditions, model.Condition{Radius: radii[i], Distance: distances[i]})
	}

	seconds, err := strconv.ParseFloat(fields["latency"], 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return model.Config{}, fmt.Errorf("invalid latency %q", fields["latency"])
	}
	if seconds < 0 {
		return model.Config{}, fmt.Errorf("latency must be >= 0")
	}
	cfg.Latency = time.Duration(seconds * float64(time.Second))
	return cfg, nil
}

// parseCount accepts integers written as floats ("3.0") since spreadsheets
// export them that way.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

func parseList(s string) ([]float64, error) {
	parts := strings.Fields(s)
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		out = append(out, v)
	}
	return out, nil
}
