package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aequus_config.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
# hardware
I2C_BUS=2
MUX_ADDR=0x71
CALIBRATION_DIR=/opt/aequus/cal

SENSOR_SIMULATE=true
SENSOR_SIMULATE_FAIL=0, 2,4
PROGRESS_INTERVAL_MS=10
DEFAULT_DIFFICULTY=High
MQTT_BROKER=tcp://localhost:1883
`)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.I2CBus = "2"
	want.MuxAddr = 0x71
	want.CalibrationDir = "/opt/aequus/cal"
	want.SensorSimulate = true
	want.SensorSimulateFail = []int{0, 2, 4}
	want.ProgressIntervalMS = 10
	want.DefaultDifficulty = "High"
	want.MQTTBroker = "tcp://localhost:1883"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if got.ProgressInterval() != 10*time.Millisecond {
		t.Errorf("ProgressInterval() = %v, want 10ms", got.ProgressInterval())
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing equals", body: "I2C_BUS\n"},
		{name: "unknown key", body: "GPS_BAUD_RATE=9600\n"},
		{name: "bad address", body: "MUX_ADDR=0x1FF\n"},
		{name: "bad tick rate", body: "TICK_RATE=0\n"},
		{name: "bad difficulty", body: "DEFAULT_DIFFICULTY=Extreme\n"},
		{name: "bad simulated slot", body: "SENSOR_SIMULATE_FAIL=7\n"},
		{name: "duration out of range", body: "DEFAULT_DURATION=90\n"},
		{name: "screen size is fixed", body: "SCREEN_WIDTH=800\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("Load() error = nil, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AEQUUS_MUX_ADDR", "0x72")
	t.Setenv("AEQUUS_SENSOR_SIMULATE_FAIL", "1,3")
	t.Setenv("AEQUUS_TICK_RATE", "30")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.MuxAddr != 0x72 {
		t.Errorf("MuxAddr = %s, want 0x72", cfg.MuxAddr)
	}
	if diff := cmp.Diff([]int{1, 3}, cfg.SensorSimulateFail); diff != "" {
		t.Errorf("SensorSimulateFail mismatch (-want +got):\n%s", diff)
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("TickInterval() = %v, want %v", cfg.TickInterval(), time.Second/30)
	}
	if cfg.MPUAddr != 0x68 {
		t.Errorf("MPUAddr = %s, want untouched 0x68", cfg.MPUAddr)
	}
}

func TestDefaultLogLevel(t *testing.T) {
	t.Parallel()

	level, err := xslog.Parse(Default().LogLevel)
	if err != nil {
		t.Fatalf("Parse(default LogLevel) error = %v", err)
	}
	if level != xslog.Default {
		t.Errorf("default LogLevel = %s, want %s", level, xslog.Default)
	}
}
