// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/fitts/internal/model"
	"github.com/verte-zerg/fitts/internal/session"
)

const sparkChars = " .:-=+*#%@"

// ConditionMetrics computes hit rate, mean movement time in seconds and mean
// miss distance for a condition.
func ConditionMetrics(agg model.ConditionAggregate) (hitRate, meanTime, meanAccuracy float64) {
	if agg.Clicks <= 0 {
		return 0, 0, 0
	}
	n := float64(agg.Clicks)
	return float64(agg.Hits) / n, agg.TimeSum / n, agg.AccuracySum / n
}

// LogMetrics computes hit rate and mean movement time for a log.
func LogMetrics(agg model.LogAggregate) (hitRate, meanTime float64) {
	if agg.Clicks <= 0 {
		return 0, 0
	}
	n := float64(agg.Clicks)
	return float64(agg.Hits) / n, agg.TimeSum / n
}

// SummarizeLog aggregates every sample of a log.
func SummarizeLog(log session.Log) model.LogAggregate {
	agg := model.LogAggregate{
		Path:          log.Path,
		ParticipantID: log.Participant(),
		Device:        log.Device(),
		ModTime:       log.ModTime,
	}
	for _, s := range log.Samples {
		agg.Clicks++
		if s.Hit {
			agg.Hits++
		}
		agg.TimeSum += s.Time
	}
	return agg
}

// SummarizeConditions groups samples by (radius, distance), ordered by radius
// then distance.
func SummarizeConditions(samples []model.Sample) []model.ConditionAggregate {
	byCond := map[model.Condition]*model.ConditionAggregate{}
	for _, s := range samples {
		key := model.Condition{Radius: s.Radius, Distance: s.Distance}
		agg, ok := byCond[key]
		if !ok {
			agg = &model.ConditionAggregate{Radius: s.Radius, Distance: s.Distance}
			byCond[key] = agg
		}
		agg.Clicks++
		if s.Hit {
			agg.Hits++
		}
		agg.TimeSum += s.Time
		agg.AccuracySum += s.Accuracy
	}
	out := make([]model.ConditionAggregate, 0, len(byCond))
	for _, agg := range byCond {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Radius == out[j].Radius {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Radius < out[j].Radius
	})
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := valueRange(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ClickSeries extracts per-click movement time (ms), miss distance and hit
// percentage, smoothed over window clicks.
func ClickSeries(samples []model.Sample, window int) []Series {
	if len(samples) == 0 {
		return nil
	}
	times := make([]float64, len(samples))
	misses := make([]float64, len(samples))
	hits := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time * 1000
		misses[i] = s.Accuracy
		if s.Hit {
			hits[i] = 100
		}
	}
	return []Series{
		{Name: "Time (ms)", Values: MovingAverage(times, window)},
		{Name: "Miss distance", Values: MovingAverage(misses, window)},
		{Name: "Hit %", Values: MovingAverage(hits, window)},
	}
}

// RenderSummary prints an overall summary of the logs.
func RenderSummary(w io.Writer, logs []model.LogAggregate) error {
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, "No logs found.")
		return err
	}
	var total model.LogAggregate
	participants := map[string]struct{}{}
	for _, l := range logs {
		total.Clicks += l.Clicks
		total.Hits += l.Hits
		total.TimeSum += l.TimeSum
		participants[l.ParticipantID] = struct{}{}
	}
	hitRate, meanTime := LogMetrics(total)
	lines := []string{
		"Summary",
		fmt.Sprintf("Logs: %d", len(logs)),
		fmt.Sprintf("Participants: %d", len(participants)),
		fmt.Sprintf("Clicks: %d", total.Clicks),
		fmt.Sprintf("Hit rate: %.2f%%", hitRate*100),
		fmt.Sprintf("Mean time: %.0f ms", meanTime*1000),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ConditionRows formats condition aggregates for display.
func ConditionRows(aggs []model.ConditionAggregate) (headers []string, rows [][]string) {
	headers = []string{"Radius", "Distance", "Clicks", "Hit rate", "Mean time (ms)", "Mean miss"}
	rows = make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		hitRate, meanTime, meanAcc := ConditionMetrics(agg)
		rows = append(rows, []string{
			formatNumber(agg.Radius),
			formatNumber(agg.Distance),
			fmt.Sprintf("%d", agg.Clicks),
			fmt.Sprintf("%.2f%%", hitRate*100),
			fmt.Sprintf("%.0f", meanTime*1000),
			fmt.Sprintf("%.1f", meanAcc),
		})
	}
	return headers, rows
}

// RenderConditionTable prints per-condition aggregates.
func RenderConditionTable(w io.Writer, aggs []model.ConditionAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No conditions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Condition"); err != nil {
		return err
	}
	headers, rows := ConditionRows(aggs)
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves plots the per-click curves sized to a given total width.
func RenderCurves(w io.Writer, samples []model.Sample, window, totalWidth, height int, useColor bool) error {
	series := ClickSeries(samples, window)
	if len(series) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return Plot(w, fmt.Sprintf("Learning Curves (window %d)", max(window, 1)), series, width, height, useColor)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func valueRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}
