package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var configValidate = validator.New()

// Background is a selectable skin for the tiles
type Background struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Image string `json:"image" yaml:"image" validate:"required"`
}

// PuzzleMessages holds the status lines shown to the player
type PuzzleMessages struct {
	Welcome  string `json:"welcome" yaml:"welcome" validate:"required"`
	Shuffled string `json:"shuffled" yaml:"shuffled"`
	Victory  string `json:"victory" yaml:"victory" validate:"required"`
	Stats    string `json:"stats" yaml:"stats"`
}

// PuzzleConfig represents a puzzle configuration loaded from JSON or YAML.
// None of it affects the rules; it only selects skins, messages, and defaults.
type PuzzleConfig struct {
	Name              string         `json:"name" yaml:"name" validate:"required"`
	Description       string         `json:"description" yaml:"description" validate:"required"`
	ShuffleSteps      int            `json:"shuffle_steps" yaml:"shuffle_steps" validate:"gte=0,lte=10000"`
	TickSeconds       int            `json:"tick_seconds" yaml:"tick_seconds" validate:"gte=0,lte=60"`
	Backgrounds       []Background   `json:"backgrounds" yaml:"backgrounds" validate:"required,min=1,dive"`
	DefaultBackground int            `json:"default_background" yaml:"default_background" validate:"gte=0"`
	VictorySound      string         `json:"victory_sound,omitempty" yaml:"victory_sound,omitempty"`
	Messages          PuzzleMessages `json:"messages" yaml:"messages"`
}

// EffectiveShuffleSteps returns the configured shuffle length, or the default
func (c *PuzzleConfig) EffectiveShuffleSteps() int {
	if c == nil || c.ShuffleSteps == 0 {
		return DefaultShuffleSteps
	}
	return c.ShuffleSteps
}

// EffectiveTickSeconds returns the configured tick period, or the default
func (c *PuzzleConfig) EffectiveTickSeconds() int {
	if c == nil || c.TickSeconds == 0 {
		return DefaultTickSeconds
	}
	return c.TickSeconds
}

// ValidatePuzzleConfig validates a puzzle configuration for correctness
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	if err := configValidate.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config validation: %s failed on '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}

	if config.DefaultBackground >= len(config.Backgrounds) {
		return fmt.Errorf("config validation: default_background %d out of range, %d backgrounds configured",
			config.DefaultBackground, len(config.Backgrounds))
	}

	if !onlyIntVerbs(config.Messages.Victory, 1) {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the move count and no other verbs")
	}
	if config.Messages.Stats != "" && !onlyIntVerbs(config.Messages.Stats, 2) {
		return fmt.Errorf("config validation: messages.stats must contain two %%d for moves and seconds and no other verbs")
	}

	return nil
}

// formatVerbs returns the verb of every fmt directive in format; "%%" is a
// literal percent sign, not a directive
func formatVerbs(format string) []rune {
	var verbs []rune
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		// flags, width, precision and argument indexes
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.*[]", runes[i]) {
			i++
		}
		if i >= len(runes) {
			verbs = append(verbs, 0)
			break
		}
		if runes[i] != '%' {
			verbs = append(verbs, runes[i])
		}
	}
	return verbs
}

// onlyIntVerbs reports whether format has exactly n directives, all %d
func onlyIntVerbs(format string, n int) bool {
	verbs := formatVerbs(format)
	if len(verbs) != n {
		return false
	}
	for _, v := range verbs {
		if v != 'd' {
			return false
		}
	}
	return true
}

// DecodePuzzleConfig parses config data; ext selects YAML (".yaml", ".yml")
// or JSON (anything else)
func DecodePuzzleConfig(data []byte, ext string) (*PuzzleConfig, error) {
	var config PuzzleConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadPuzzleConfig loads and validates a puzzle configuration file
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodePuzzleConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}

	return config, nil
}

// DefaultPuzzleConfig returns the built-in configuration used when no config
// file is available
func DefaultPuzzleConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:         "classic",
		Description:  "Classic 15-puzzle with the Mushroom Kingdom skins",
		ShuffleSteps: DefaultShuffleSteps,
		TickSeconds:  DefaultTickSeconds,
		Backgrounds: []Background{
			{Name: "Mario", Image: "assets/mario.svg"},
			{Name: "Toad", Image: "assets/toad.svg"},
			{Name: "Luigi", Image: "assets/luigi.svg"},
			{Name: "Bowser", Image: "assets/bowser.svg"},
		},
		VictorySound: "assets/victory.wav",
		Messages: PuzzleMessages{
			Welcome:  "Click a tile next to the blank, or any tile in its row or column, to slide it.",
			Shuffled: "Shuffled! Put the tiles back in order.",
			Victory:  "Congratulations! You solved the puzzle in %d moves!",
			Stats:    "Moves: %d, Time: %ds",
		},
	}
}
