// Package profile loads a user's YAML profile: custom strategies, holiday
// overrides and strategy engine settings.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

// Profile is the decoded profile file.
type Profile struct {
	DefaultStrategy string `yaml:"default_strategy,omitempty"`
	// SkipWeekends is nil when the profile leaves the choice to flags.
	SkipWeekends *bool `yaml:"skip_weekends,omitempty"`
	// Holidays, when present, replaces the built-in holiday list. An empty
	// list disables holidays.
	Holidays     *[]string                 `yaml:"holidays,omitempty"`
	HolidaysFile string                    `yaml:"holidays_file,omitempty"`
	Strategies   []scoring.StrategyInfo    `yaml:"strategies,omitempty"`
	Engines      map[string]map[string]any `yaml:"engines,omitempty"`

	holidays []calendar.Date
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Decode parses and validates a profile. Unknown keys are rejected.
func Decode(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	seen := make(map[string]struct{}, len(p.Strategies))
	for i := range p.Strategies {
		s := &p.Strategies[i]
		s.Name = strings.TrimSpace(strings.ToLower(s.Name))
		if s.Name == "" {
			return fmt.Errorf("strategy %d: name is required", i+1)
		}
		if scoring.Strategy(s.Name).IsPreset() {
			return fmt.Errorf("strategy %q: shadows a built-in strategy", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("strategy %q: defined twice", s.Name)
		}
		seen[s.Name] = struct{}{}

		if err := validation.ValidateWeights(s.Weights); err != nil {
			return fmt.Errorf("strategy %q: %w", s.Name, err)
		}
		if s.Weights.Sum() <= 0 {
			return fmt.Errorf("strategy %q: weights must not all be zero", s.Name)
		}
		if s.DisplayName == "" {
			s.DisplayName = s.Name
		}
		s.Source = scoring.SourceProfile
	}

	if p.DefaultStrategy != "" {
		p.DefaultStrategy = strings.TrimSpace(strings.ToLower(p.DefaultStrategy))
		if err := validation.ValidateStrategy(p.DefaultStrategy, p.StrategyNames()...); err != nil {
			return fmt.Errorf("default_strategy: %w", err)
		}
	}

	if p.Holidays != nil {
		p.holidays = make([]calendar.Date, 0, len(*p.Holidays))
		for _, s := range *p.Holidays {
			d, err := calendar.ParseDate(s)
			if err != nil {
				return fmt.Errorf("holidays: %w", err)
			}
			p.holidays = append(p.holidays, d)
		}
	}
	return nil
}

// StrategyNames lists the custom strategy names in file order.
func (p *Profile) StrategyNames() []string {
	names := make([]string, len(p.Strategies))
	for i, s := range p.Strategies {
		names[i] = s.Name
	}
	return names
}

// Strategy looks up a custom strategy.
func (p *Profile) Strategy(name string) (scoring.StrategyInfo, bool) {
	if p == nil {
		return scoring.StrategyInfo{}, false
	}
	for _, s := range p.Strategies {
		if s.Name == name {
			return s, true
		}
	}
	return scoring.StrategyInfo{}, false
}

// HolidayDates returns the holiday override. ok is false when the profile
// does not define one.
func (p *Profile) HolidayDates() (dates []calendar.Date, ok bool) {
	if p == nil || p.holidays == nil {
		return nil, false
	}
	return append([]calendar.Date{}, p.holidays...), true
}

// EngineConfig returns the settings for a strategy engine.
func (p *Profile) EngineConfig(engineID string) map[string]any {
	if p == nil {
		return nil
	}
	return p.Engines[engineID]
}
