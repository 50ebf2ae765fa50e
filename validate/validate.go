// Command validate provides a small CLI that validates puzzle configuration
// files (JSON or YAML) in a configs directory. It checks:
//   - File structure and required fields
//   - At least one background, each with a name and an image
//   - default_background within range and unique background names
//   - Image and sound file types the browser page can load
//   - Message format verbs (victory takes exactly one %d, stats exactly two)
//   - Shuffle length and tick period within limits
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/fifteen-puzzle/game/config"
	"github.com/wricardo/fifteen-puzzle/game/engine"
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true}
	soundExtensions = map[string]bool{".mp3": true, ".ogg": true, ".wav": true}
)

// minUsefulShuffle is the shortest shuffle that reliably scrambles every row
const minUsefulShuffle = 10

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file. The
// engine's own validation runs first; the remaining checks cover what it
// accepts but the adapters cannot use.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	puzzleConfig, err := engine.DecodePuzzleConfig(data, ext)
	if err != nil {
		format := "JSON"
		if ext != ".json" {
			format = "YAML"
		}
		result.fail("Invalid %s: %v", format, err)
		return result
	}

	if err := engine.ValidatePuzzleConfig(puzzleConfig); err != nil {
		result.fail("%v", err)
	}

	// Backgrounds
	seen := make(map[string]bool)
	for i, bg := range puzzleConfig.Backgrounds {
		if seen[bg.Name] {
			result.fail("Duplicate background name %q at index %d", bg.Name, i)
		}
		seen[bg.Name] = true

		if bg.Image != "" && !imageExtensions[strings.ToLower(filepath.Ext(bg.Image))] {
			result.fail("Background %q: unsupported image type %q", bg.Name, bg.Image)
		}
	}

	if puzzleConfig.VictorySound != "" && !soundExtensions[strings.ToLower(filepath.Ext(puzzleConfig.VictorySound))] {
		result.fail("Unsupported victory_sound type %q", puzzleConfig.VictorySound)
	}

	// Shuffle
	if puzzleConfig.ShuffleSteps > 0 && puzzleConfig.ShuffleSteps < minUsefulShuffle {
		result.fail("shuffle_steps %d is too short to scramble the board (minimum %d)", puzzleConfig.ShuffleSteps, minUsefulShuffle)
	}

	// Add informational data
	if result.Valid {
		names := make([]string, len(puzzleConfig.Backgrounds))
		for i, bg := range puzzleConfig.Backgrounds {
			names[i] = bg.Name
		}
		result.info("Name: %s", puzzleConfig.Name)
		result.info("Backgrounds: %s (default %s)", strings.Join(names, ", "), names[puzzleConfig.DefaultBackground])
		result.info("Shuffle: %d moves", puzzleConfig.EffectiveShuffleSteps())
		result.info("Tick: every %ds", puzzleConfig.EffectiveTickSeconds())
		if puzzleConfig.VictorySound != "" {
			result.info("Victory sound: %s", puzzleConfig.VictorySound)
		}
	}

	return result
}

// configFiles lists the configuration files of a directory
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range config.Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// main scans the configs directory (first argument, ../configs by default)
// and validates each file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
