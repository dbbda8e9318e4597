package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset describes a named seeding scenario loaded from a YAML file.
type Preset struct {
	Name       string `yaml:"name"`
	Users      int    `yaml:"users"`
	Circles    int    `yaml:"circles"`
	Posts      int    `yaml:"posts"`
	DMThreads  int    `yaml:"dm_threads"`
	Clean      bool   `yaml:"clean"`
	SkipBcrypt bool   `yaml:"skip_bcrypt"`
	MaxDays    int    `yaml:"max_days"`
}

// LoadPreset reads and validates a preset file.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}

	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", path, err)
	}
	return &preset, nil
}

// Validate rejects presets that would seed nothing or negative amounts.
func (p *Preset) Validate() error {
	if p.Users <= 0 {
		return fmt.Errorf("users must be positive, got %d", p.Users)
	}
	for field, n := range map[string]int{
		"circles":    p.Circles,
		"posts":      p.Posts,
		"dm_threads": p.DMThreads,
		"max_days":   p.MaxDays,
	} {
		if n < 0 {
			return fmt.Errorf("%s must not be negative, got %d", field, n)
		}
	}
	return nil
}

// Apply runs the full seeding pipeline described by the preset.
func Apply(db *gorm.DB, preset *Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}

	s := NewSeeder(db, Options{SkipBcrypt: preset.SkipBcrypt, MaxDays: preset.MaxDays})

	if preset.Clean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}
	if err := Channels(db); err != nil {
		return fmt.Errorf("built-in channels: %w", err)
	}

	users, err := s.SeedSocialMesh(preset.Users)
	if err != nil {
		return fmt.Errorf("social mesh: %w", err)
	}
	if preset.Circles > 0 {
		if _, err := s.SeedCircles(users, preset.Circles); err != nil {
			return fmt.Errorf("circles: %w", err)
		}
	}
	if preset.Posts > 0 {
		if _, err := s.SeedEngagement(users, preset.Posts); err != nil {
			return fmt.Errorf("engagement: %w", err)
		}
	}
	if preset.DMThreads > 0 {
		if err := s.SeedDMs(users, preset.DMThreads); err != nil {
			return fmt.Errorf("dm threads: %w", err)
		}
	}
	return nil
}
