package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
envelope:
  max_x: 4.0
  max_y: 2.5
  max_z: 4.5
linear_velocity: 1.5
yaw_rate: 0.5
position_tolerance: 0.3
yaw_tolerance: 0.15
survey_altitude: 1.8
landing_marker_id: 12
landing_fallback:
  x: 0.0
  y: 0.0
waypoints:
  - { x: 0.0, y: 0.0, z: 1.8, yaw: 0.0 }
  - { x: 1.0, y: 1.0, z: 1.8, yaw: 0.0 }
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "guidance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "guidance.yaml")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Envelope.MaxX != 4 || cfg.Envelope.MaxY != 2.5 || cfg.Envelope.MaxZ != 4.5 {
		t.Fatalf("envelope = %+v", cfg.Envelope)
	}
	if cfg.SurveyAltitude != 1.8 || cfg.LandingMarkerID != 12 {
		t.Fatalf("landing config = %+v", cfg)
	}
	if len(cfg.Waypoints) != 2 {
		t.Fatalf("waypoints = %v", cfg.Waypoints)
	}

	p, err := cfg.Plan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("plan length = %d", p.Len())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dwell() != 10*time.Second {
		t.Fatalf("Dwell() = %v", cfg.Dwell())
	}
	if cfg.Confirm() != 2*time.Second {
		t.Fatalf("Confirm() = %v", cfg.Confirm())
	}
	if cfg.TickInterval() != 50*time.Millisecond {
		t.Fatalf("TickInterval() = %v", cfg.TickInterval())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/guidance.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_InvalidYaml(t *testing.T) {
	if _, err := Load(writeConfig(t, "waypoints: [")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no waypoints", "survey_altitude: 1.8\n"},
		{"zero survey altitude", "survey_altitude: 0\nwaypoints:\n  - { x: 0, y: 0, z: 1, yaw: 0 }\n"},
		{"marker out of range", "survey_altitude: 1.8\nlanding_marker_id: 101\nwaypoints:\n  - { x: 0, y: 0, z: 1, yaw: 0 }\n"},
		{"negative tick", "survey_altitude: 1.8\ntick_millis: -5\nwaypoints:\n  - { x: 0, y: 0, z: 1, yaw: 0 }\n"},
	}

	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.content)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
