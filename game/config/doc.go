// Package config provides configuration management for the Fifteen Puzzle.
//
// The config package handles:
//   - Loading puzzle configurations from JSON and YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//   - Hot reload when files in the directory change
//
// Configuration Format:
//
// Puzzle configurations live in the configs directory as .json, .yaml or
// .yml files. A configuration never changes the rules of the puzzle; it
// defines:
//   - The selectable backgrounds and the one a new session starts with
//   - How many random steps a shuffle takes
//   - The elapsed-time tick period
//   - Welcome, shuffle, victory and status messages
//   - An optional victory sound
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzleConfig, err := manager.LoadConfig("mushroom")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
//	// Pick up edits without restarting
//	done, err := manager.Watch(ctx)
//
// The default is classic when present, otherwise the first valid file,
// otherwise the built-in engine.DefaultPuzzleConfig.
package config
