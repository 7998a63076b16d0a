// Package config defines the structures to configure a mission and the ability to read them from
// a JSON file.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/services/mission"
	"github.com/robotics-cluedo/cluedo/services/navigation"
	"github.com/robotics-cluedo/cluedo/services/position"
	"github.com/robotics-cluedo/cluedo/simulation"
	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

// Defaults for the fields of a Config that are not owned by a service section.
const (
	defaultWarmupTimeout  = 3 * time.Second
	defaultSensorInterval = 100 * time.Millisecond
)

// A Config describes the configuration of a mission run.
type Config struct {
	// ConfigFilePath is the path the config was read from, if any. Relative catalog images are
	// resolved against its directory.
	ConfigFilePath string `json:"-"`

	TickInterval           string  `json:"tick_interval,omitempty"`
	Quota                  int     `json:"quota,omitempty"`
	ResetRotationDegs      float64 `json:"reset_rotation_degs,omitempty"`
	MaxTicksPerEncounter   int     `json:"max_ticks_per_encounter,omitempty"`
	MaxEncountersPerMarker int     `json:"max_encounters_per_marker,omitempty"`
	MarkerMaxAge           string  `json:"marker_max_age,omitempty"`
	RecognitionTimeout     string  `json:"recognition_timeout,omitempty"`
	WarmupTimeout          string  `json:"warmup_timeout,omitempty"`
	SensorInterval         string  `json:"sensor_interval,omitempty"`
	Debug                  bool    `json:"debug,omitempty"`

	Catalog     []recognition.CatalogEntry `json:"catalog"`
	Recognition recognition.Config         `json:"recognition"`
	Position    position.Config            `json:"position"`
	Navigation  navigation.Config          `json:"navigation"`
	Simulation  simulation.Config          `json:"simulation"`

	LogConfig []logging.LoggerPatternConfig `json:"log,omitempty"`
}

// ApplyDefaults fills every zero field, including those of the sections.
func (c *Config) ApplyDefaults() {
	if c.TickInterval == "" {
		c.TickInterval = "1s"
	}
	if c.RecognitionTimeout == "" {
		c.RecognitionTimeout = "10s"
	}
	if c.MarkerMaxAge == "" {
		c.MarkerMaxAge = "3s"
	}
	if c.WarmupTimeout == "" {
		c.WarmupTimeout = defaultWarmupTimeout.String()
	}
	if c.SensorInterval == "" {
		c.SensorInterval = defaultSensorInterval.String()
	}
	c.Recognition.ApplyDefaults()
	c.Position.ApplyDefaults()
	c.Navigation.ApplyDefaults()
	c.Simulation.ApplyDefaults()
}

// Validate returns an error if the config is invalid. Defaults are expected to be applied.
func (c *Config) Validate() error {
	if len(c.Catalog) == 0 {
		return utils.NewConfigValidationFieldRequiredError("", "catalog")
	}
	for i, entry := range c.Catalog {
		path := fmt.Sprintf("catalog.%d", i)
		if entry.Name == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "name")
		}
		if entry.Image == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "image")
		}
		if _, err := entry.Rect(); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	names := lo.Map(c.Catalog, func(e recognition.CatalogEntry, _ int) string { return e.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return utils.NewConfigValidationError("catalog", errors.Errorf("duplicate card names %v", dups))
	}

	missionCfg, err := c.Mission()
	if err != nil {
		return err
	}
	if err := missionCfg.Validate(""); err != nil {
		return err
	}
	if missionCfg.Quota > len(c.Catalog) {
		return utils.NewConfigValidationError("quota",
			errors.Errorf("quota %d exceeds the %d catalog cards", missionCfg.Quota, len(c.Catalog)))
	}
	for _, d := range []struct {
		field string
		value string
	}{{"warmup_timeout", c.WarmupTimeout}, {"sensor_interval", c.SensorInterval}} {
		if _, err := parsePositiveDuration(d.field, d.value); err != nil {
			return err
		}
	}
	if err := c.Recognition.Validate("recognition"); err != nil {
		return err
	}
	if err := c.Position.Validate("position"); err != nil {
		return err
	}
	if err := c.Navigation.Validate("navigation"); err != nil {
		return err
	}
	for i, lc := range c.LogConfig {
		if _, err := logging.LevelFromString(lc.Level); err != nil {
			return utils.NewConfigValidationError(fmt.Sprintf("log.%d", i), err)
		}
	}
	return nil
}

// ValidateSimulation checks the simulation section against the catalog. It is only needed when
// running in the simulated room.
func (c *Config) ValidateSimulation() error {
	if err := c.Simulation.Validate("simulation"); err != nil {
		return err
	}
	names := lo.Map(c.Catalog, func(e recognition.CatalogEntry, _ int) string { return e.Name })
	for i, m := range c.Simulation.Markers {
		if !lo.Contains(names, m.Card) {
			return utils.NewConfigValidationError(fmt.Sprintf("simulation.markers.%d", i),
				errors.Errorf("card %q is not in the catalog", m.Card))
		}
	}
	return nil
}

// Mission returns the mission controller settings.
func (c *Config) Mission() (mission.Config, error) {
	tick, err := parsePositiveDuration("tick_interval", c.TickInterval)
	if err != nil {
		return mission.Config{}, err
	}
	timeout, err := parsePositiveDuration("recognition_timeout", c.RecognitionTimeout)
	if err != nil {
		return mission.Config{}, err
	}
	maxAge, err := parsePositiveDuration("marker_max_age", c.MarkerMaxAge)
	if err != nil {
		return mission.Config{}, err
	}
	cfg := mission.Config{
		Quota:                  c.Quota,
		ResetRotationDegs:      c.ResetRotationDegs,
		MaxTicksPerEncounter:   c.MaxTicksPerEncounter,
		MaxEncountersPerMarker: c.MaxEncountersPerMarker,
		MarkerMaxAge:           maxAge,
		TickInterval:           tick,
		RecognitionTimeout:     timeout,
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Warmup returns how long to wait for the first sensor readings.
func (c *Config) Warmup() time.Duration {
	d, err := time.ParseDuration(c.WarmupTimeout)
	if err != nil {
		return defaultWarmupTimeout
	}
	return d
}

// SensorPeriod returns how often sensor sources are polled.
func (c *Config) SensorPeriod() time.Duration {
	d, err := time.ParseDuration(c.SensorInterval)
	if err != nil || d <= 0 {
		return defaultSensorInterval
	}
	return d
}

// CatalogDir returns the directory relative catalog images are resolved against.
func (c *Config) CatalogDir() string {
	if c.ConfigFilePath == "" {
		return "."
	}
	return filepath.Dir(c.ConfigFilePath)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, utils.NewConfigValidationError(field, err)
	}
	if d <= 0 {
		return 0, utils.NewConfigValidationError(field, errors.New("should be > 0"))
	}
	return d, nil
}
