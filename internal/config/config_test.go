package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fitts/internal/model"
)

func TestParseExperimentExample(t *testing.T) {
	cfg, err := ParseExperiment(strings.NewReader(ExampleExperiment))
	require.NoError(t, err)
	assert.Equal(t, "0", cfg.ParticipantID)
	assert.Equal(t, 3, cfg.Repetitions)
	assert.Equal(t, 0, cfg.Trials)
	assert.Equal(t, []model.Condition{
		{Radius: 25, Distance: 110},
		{Radius: 15, Distance: 30},
		{Radius: 40, Distance: 70},
	}, cfg.Conditions)
	assert.Equal(t, 150*time.Millisecond, cfg.Latency)
	assert.Equal(t, "mouse", cfg.Device)
	assert.Equal(t, 9, cfg.Rounds())
}

func TestParseExperimentOptionalColumns(t *testing.T) {
	input := "device,latency,distances,radii,repetitions,id,trials\n,0,100,10,2.0,p1,5\n"
	cfg, err := ParseExperiment(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "p1", cfg.ParticipantID)
	assert.Equal(t, 2, cfg.Repetitions)
	assert.Equal(t, 5, cfg.Trials)
	assert.Equal(t, DefaultDevice, cfg.Device)
	assert.Equal(t, time.Duration(0), cfg.Latency)
	assert.Equal(t, 5, cfg.Rounds())
}

func TestParseExperimentShapeMismatch(t *testing.T) {
	input := "id,repetitions,radii,distances,latency,device\n1,1,5 10,10,0,mouse\n"
	_, err := ParseExperiment(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParseExperimentErrors(t *testing.T) {
	header := "id,repetitions,radii,distances,latency,device\n"
	cases := map[string]string{
		"empty":          "",
		"no data row":    header,
		"missing column": "id,repetitions,radii,distances\n1,1,5,10\n",
		"bad radius":     header + "1,1,5 x,10 20,0,mouse\n",
		"bad latency":    header + "1,1,5,10,fast,mouse\n",
		"zero reps":      header + "1,0,5,10,0,mouse\n",
		"fraction reps":  header + "1,1.5,5,10,0,mouse\n",
		"negative lag":   header + "1,1,5,10,-0.1,mouse\n",
		"no conditions":  header + "1,1,,,0,mouse\n",
		"zero radius":    header + "1,1,0,10,0,mouse\n",
		"dash in id":     header + "a-b,1,5,10,0,mouse\n",
		"dash in device": header + "1,1,5,10,0,track-pad\n",
	}
	for name, input := range cases {
		_, err := ParseExperiment(strings.NewReader(input))
		assert.Error(t, err, name)
		assert.NotErrorIs(t, err, ErrShapeMismatch, name)
	}
}

func TestLoadExperiment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.csv")
	require.NoError(t, os.WriteFile(path, []byte(ExampleExperiment), 0o644))
	cfg, err := LoadExperiment(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Conditions, 3)

	_, err = LoadExperiment(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Experiment.Targets)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[experiment]
logs-dir = "/tmp/logs"
targets = 9
latency-mode = "offset"
on-exists = "skip"

[stats]
curve-window = 5

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Experiment.Targets)
	assert.Equal(t, 9, *cfg.Experiment.Targets)
	assert.Equal(t, "/tmp/logs", *cfg.Experiment.LogsDir)
	assert.Equal(t, "offset", *cfg.Experiment.LatencyMode)
	assert.Equal(t, "skip", *cfg.Experiment.OnExists)
	assert.Nil(t, cfg.Experiment.Config)
	assert.Equal(t, 5, *cfg.Stats.CurveWindow)
	assert.Equal(t, "debug", *cfg.Logging.Level)
	assert.Nil(t, cfg.Logging.File)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[experiment]\ntargetz = 3\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targetz")
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "fitts", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/state", "fitts", "fitts.log"), DefaultLogPath())
}
