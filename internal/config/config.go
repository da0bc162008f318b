// Package config loads the startup parameters. They are read once;
// nothing re-reads them in flight.
package config

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/plan"
)

type Config struct {
	Envelope plan.SafeEnvelope `yaml:"envelope"`

	LinearVelocity    float64 `yaml:"linear_velocity"`
	YawRate           float64 `yaml:"yaw_rate"`
	PositionTolerance float64 `yaml:"position_tolerance"`
	YawTolerance      float64 `yaml:"yaw_tolerance"`

	SurveyAltitude  float64          `yaml:"survey_altitude"`
	LandingMarkerID int              `yaml:"landing_marker_id"`
	LandingFallback markers.Position `yaml:"landing_fallback"`

	DwellSeconds   float64 `yaml:"dwell_seconds"`
	ConfirmSeconds float64 `yaml:"confirm_seconds"`
	TickMillis     int     `yaml:"tick_millis"`

	Waypoints []plan.Waypoint `yaml:"waypoints"`
}

func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "Could not read config file")
	}

	cfg := Config{
		DwellSeconds:   10,
		ConfirmSeconds: 2,
		TickMillis:     50,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "Could not parse config file")
	}

	if len(cfg.Waypoints) == 0 {
		return nil, errors.New("config has no waypoints")
	}
	if cfg.SurveyAltitude <= 0 {
		return nil, errors.New("survey_altitude must be positive")
	}
	if cfg.TickMillis <= 0 {
		return nil, errors.New("tick_millis must be positive")
	}
	if cfg.LandingMarkerID < 0 || cfg.LandingMarkerID > markers.MaxID {
		return nil, errors.Errorf("landing_marker_id %d out of range 0..%d", cfg.LandingMarkerID, markers.MaxID)
	}

	return &cfg, nil
}

// Plan builds the fixed mission plan from the configured waypoints.
func (c *Config) Plan() (*plan.MissionPlan, error) {
	return plan.New(c.Waypoints)
}

func (c *Config) Dwell() time.Duration {
	return time.Duration(c.DwellSeconds * float64(time.Second))
}

func (c *Config) Confirm() time.Duration {
	return time.Duration(c.ConfirmSeconds * float64(time.Second))
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}
