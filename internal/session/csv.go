package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/fitts/internal/model"
)

// Header is the column set of every session log.
var Header = []string{
	"id", "trial", "radius", "distance", "latency", "hit", "time", "accuracy",
	"click_x", "click_y", "target_x", "target_y", "click_time",
}

// ErrHeader is returned when a log does not carry the expected columns.
var ErrHeader = errors.New("unexpected log header")

// Record converts a sample into a CSV row in Header order.
func Record(s model.Sample) []string {
	return []string{
		s.ParticipantID,
		strconv.Itoa(s.Trial),
		formatFloat(s.Radius),
		formatFloat(s.Distance),
		formatFloat(s.Latency),
		formatBool(s.Hit),
		formatFloat(s.Time),
		formatFloat(s.Accuracy),
		formatFloat(s.ClickX),
		formatFloat(s.ClickY),
		formatFloat(s.TargetX),
		formatFloat(s.TargetY),
		strconv.FormatFloat(s.ClickTime, 'f', 6, 64),
	}
}

// ParseRecord converts a CSV row in Header order into a sample.
func ParseRecord(row []string) (model.Sample, error) {
	if len(row) != len(Header) {
		return model.Sample{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}
	var s model.Sample
	var err error
	s.ParticipantID = row[0]
	if s.Trial, err = strconv.Atoi(strings.TrimSpace(row[1])); err != nil {
		return model.Sample{}, fmt.Errorf("invalid trial %q: %w", row[1], err)
	}
	if s.Hit, err = strconv.ParseBool(strings.TrimSpace(row[5])); err != nil {
		return model.Sample{}, fmt.Errorf("invalid hit %q: %w", row[5], err)
	}
	floats := []struct {
		col  int
		dest *float64
	}{
		{2, &s.Radius},
		{3, &s.Distance},
		{4, &s.Latency},
		{6, &s.Time},
		{7, &s.Accuracy},
		{8, &s.ClickX},
		{9, &s.ClickY},
		{10, &s.TargetX},
		{11, &s.TargetY},
		{12, &s.ClickTime},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.col]), 64)
		if err != nil {
			return model.Sample{}, fmt.Errorf("invalid %s %q: %w", Header[f.col], row[f.col], err)
		}
		*f.dest = v
	}
	return s, nil
}

// WriteCSV writes the header followed by one row per sample.
func WriteCSV(w io.Writer, samples []model.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(Record(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a session log. Logs with a leading unnamed index column are
// accepted as well.
func ReadCSV(r io.Reader) ([]model.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrHeader)
		}
		return nil, err
	}
	skip, err := headerOffset(header)
	if err != nil {
		return nil, err
	}

	var samples []model.Sample
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < skip {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(Header)+skip, len(row))
		}
		sample, err := ParseRecord(row[skip:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func headerOffset(header []string) (int, error) {
	skip := 0
	if len(header) == len(Header)+1 && strings.TrimSpace(header[0]) == "" {
		skip = 1
	}
	cols := header[skip:]
	if len(cols) != len(Header) {
		return 0, fmt.Errorf("%w: %s", ErrHeader, strings.Join(header, ","))
	}
	for i, col := range cols {
		if strings.TrimSpace(col) != Header[i] {
			return 0, fmt.Errorf("%w: column %d is %q, expected %q", ErrHeader, i+skip, col, Header[i])
		}
	}
	return skip, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
