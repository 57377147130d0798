package statsui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fitts/internal/model"
	"github.com/verte-zerg/fitts/internal/stats"
)

func fakeReport() stats.Report {
	samples := []model.Sample{
		{ParticipantID: "1", Radius: 10, Distance: 100, Hit: true, Time: 0.4, Accuracy: 2},
		{ParticipantID: "1", Radius: 10, Distance: 100, Hit: false, Time: 0.6, Accuracy: 12},
		{ParticipantID: "2", Radius: 20, Distance: 200, Hit: true, Time: 0.5, Accuracy: 4},
	}
	return stats.Report{
		Logs: []model.LogAggregate{
			{Path: "logs/1-mouse.csv", ParticipantID: "1", Device: "mouse", Clicks: 2, Hits: 1, TimeSum: 1, ModTime: time.Unix(100, 0)},
			{Path: "logs/2-mouse.csv", ParticipantID: "2", Device: "mouse", Clicks: 1, Hits: 1, TimeSum: 0.5, ModTime: time.Unix(200, 0)},
		},
		Conditions: stats.SummarizeConditions(samples),
		Samples:    samples,
	}
}

func newTestModel(t *testing.T, cfg model.StatsConfig) (*Model, *[]model.StatsConfig) {
	t.Helper()
	var calls []model.StatsConfig
	m := NewModelWithLoader(cfg, func(c model.StatsConfig) (stats.Report, error) {
		calls = append(calls, c)
		return fakeReport(), nil
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, &calls
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsCards(t *testing.T) {
	m, calls := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	require.Len(t, *calls, 1)
	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "Participants")
	assert.Contains(t, view, "66.7%")
	assert.Len(t, strings.Split(view, "\n"), 30)
}

func TestTabsCycle(t *testing.T) {
	m, _ := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	m.Update(key("l"))
	assert.Equal(t, tabConditions, m.activeTab)
	assert.Contains(t, m.View(), "Mean time (ms)")

	m.Update(key("l"))
	assert.Equal(t, tabLogs, m.activeTab)
	assert.Contains(t, m.View(), "1-mouse.csv")

	m.Update(key("l"))
	assert.Equal(t, tabOverview, m.activeTab)
	m.Update(key("h"))
	assert.Equal(t, tabLogs, m.activeTab)
}

func TestCurveWindowKeys(t *testing.T) {
	m, _ := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	m.Update(key("="))
	assert.Equal(t, 5, m.cfg.CurveWindow)
	m.Update(key("="))
	assert.Equal(t, 10, m.cfg.CurveWindow)
	m.Update(key("-"))
	assert.Equal(t, 5, m.cfg.CurveWindow)
	m.Update(key("-"))
	assert.Equal(t, 1, m.cfg.CurveWindow)
}

func TestFilterAppliesAndReloads(t *testing.T) {
	m, calls := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	m.Update(key("/"))
	require.True(t, m.filterMode)
	m.Update(key("7"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(key("pen"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(key("3"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filterMode)
	require.Len(t, *calls, 2)
	got := (*calls)[1]
	assert.Equal(t, "7", got.Participant)
	assert.Equal(t, "pen", got.Device)
	assert.Equal(t, 3, got.Last)
	assert.Equal(t, "logs", got.Dir)
	assert.Contains(t, m.View(), "participant=7")
}

func TestFilterRejectsBadWindow(t *testing.T) {
	m, calls := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	m.Update(key("/"))
	m.filterInputs[3].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filterMode)
	assert.NotEmpty(t, m.filterError)
	assert.Len(t, *calls, 1)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filterMode)
}

func TestLoadErrorShown(t *testing.T) {
	m := NewModelWithLoader(model.StatsConfig{Dir: "logs"}, func(model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("boom")
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	view := m.View()
	assert.Contains(t, view, "boom")
	assert.Contains(t, view, "Failed to load logs.")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, model.StatsConfig{Dir: "logs", CurveWindow: 2})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
