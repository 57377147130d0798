package stats

import (
	"go.uber.org/zap"

	"github.com/verte-zerg/fitts/internal/model"
	"github.com/verte-zerg/fitts/internal/session"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Logs       []model.LogAggregate
	Conditions []model.ConditionAggregate
	// Samples holds every selected click in log order.
	Samples []model.Sample
}

// BuildReport loads the logs in cfg.Dir and prepares data for rendering.
func BuildReport(cfg model.StatsConfig, logger *zap.Logger) (Report, error) {
	logs, err := session.LoadDir(cfg.Dir, logger)
	if err != nil {
		return Report{}, err
	}
	return Summarize(logs, cfg), nil
}

// Summarize filters logs by participant and device, keeps the last cfg.Last
// of them and aggregates the rest.
func Summarize(logs []session.Log, cfg model.StatsConfig) Report {
	selected := make([]session.Log, 0, len(logs))
	for _, log := range logs {
		if cfg.Participant != "" && log.Participant() != cfg.Participant {
			continue
		}
		if cfg.Device != "" && log.Device() != cfg.Device {
			continue
		}
		selected = append(selected, log)
	}
	if cfg.Last > 0 && len(selected) > cfg.Last {
		selected = selected[len(selected)-cfg.Last:]
	}

	var report Report
	for _, log := range selected {
		report.Logs = append(report.Logs, SummarizeLog(log))
		report.Samples = append(report.Samples, log.Samples...)
	}
	report.Conditions = SummarizeConditions(report.Samples)
	return report
}
