package config

import (
	_ "embed"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

//go:embed manual.md
var defaultManual string

// Profile is the assistant configuration loaded from a TOML file. All
// sections are optional; a missing file yields a usable default profile.
type Profile struct {
	Vehicle   Vehicle   `toml:"vehicle"`
	Persona   string    `toml:"persona"`
	Reference Reference `toml:"reference"`
	SeedLogs  []SeedLog `toml:"log"`
	Assistant Assistant `toml:"assistant"`
}

// Vehicle identifies the car the assistant is twinned to
type Vehicle struct {
	Make  string `toml:"make"`
	Model string `toml:"model"`
	Year  int    `toml:"year"`
}

// Reference points at the static manual text. An empty path selects the
// built-in workshop manual.
type Reference struct {
	Path string `toml:"path"`
}

// SeedLog is one pre-existing service log record
type SeedLog struct {
	Date     string `toml:"date"`
	Category string `toml:"category"`
	Text     string `toml:"text"`
}

// Validate checks a seed log record
func (s *SeedLog) Validate() error {
	if s.Text == "" {
		return goerr.New("seed log text is required")
	}
	if s.Date != "" {
		if _, err := time.Parse("2006-01-02", s.Date); err != nil {
			return goerr.Wrap(err, "seed log date must be YYYY-MM-DD", goerr.V("date", s.Date))
		}
	}
	if s.Category != "" {
		if _, err := types.ParseLogCategory(s.Category); err != nil {
			return goerr.Wrap(err, "invalid seed log category")
		}
	}
	return nil
}

// Assistant tunes the orchestrator behavior
type Assistant struct {
	NarrateToolResults *bool   `toml:"narrate_tool_results"`
	ToolsEnabled       *bool   `toml:"tools_enabled"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
}

// Narrate reports the narration policy, defaulting to enabled
func (a *Assistant) Narrate() bool {
	if a.NarrateToolResults == nil {
		return true
	}
	return *a.NarrateToolResults
}

// Tools reports whether tool calling is offered, defaulting to enabled
func (a *Assistant) Tools() bool {
	if a.ToolsEnabled == nil {
		return true
	}
	return *a.ToolsEnabled
}

// Validate checks the whole profile
func (p *Profile) Validate() error {
	for i := range p.SeedLogs {
		if err := p.SeedLogs[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed log", goerr.V("index", i))
		}
	}
	if p.Assistant.Temperature < 0 || p.Assistant.Temperature > 2 {
		return goerr.New("temperature must be within [0, 2]", goerr.V("temperature", p.Assistant.Temperature))
	}
	if p.Assistant.MaxTokens < 0 {
		return goerr.New("max_tokens must not be negative", goerr.V("max_tokens", p.Assistant.MaxTokens))
	}
	return nil
}

// LoadProfile reads and validates a TOML profile. An empty path returns
// the default profile.
func LoadProfile(path string) (*Profile, error) {
	var profile Profile
	if path == "" {
		return &profile, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", path))
	}

	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "profile validation failed", goerr.V("path", path))
	}

	return &profile, nil
}

// ToVehicleProfile converts the vehicle section to the domain model
func (p *Profile) ToVehicleProfile() model.VehicleProfile {
	return model.VehicleProfile{
		Make:  p.Vehicle.Make,
		Model: p.Vehicle.Model,
		Year:  p.Vehicle.Year,
	}
}

// ReferenceText returns the static manual text: the configured file when
// set, the built-in workshop manual otherwise.
func (p *Profile) ReferenceText() (string, error) {
	if p.Reference.Path == "" {
		return defaultManual, nil
	}

	// #nosec G304 - path comes from the user's own profile
	data, err := os.ReadFile(p.Reference.Path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read reference file", goerr.V("path", p.Reference.Path))
	}
	return string(data), nil
}

// ToSeedLogs converts the seed section to domain log entries. Dates
// default to today, categories to Note, matching the knowledge store's
// own defaults.
func (p *Profile) ToSeedLogs() []*model.LogEntry {
	entries := make([]*model.LogEntry, 0, len(p.SeedLogs))
	for _, seed := range p.SeedLogs {
		entry := &model.LogEntry{Text: seed.Text}
		if seed.Date != "" {
			date, err := time.Parse("2006-01-02", seed.Date)
			if err == nil {
				entry.Date = date
			}
		}
		if seed.Category != "" {
			if category, err := types.ParseLogCategory(seed.Category); err == nil {
				entry.Category = category
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
