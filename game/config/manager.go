package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Extensions lists the file types the manager reads, in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// Manager handles puzzle configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleConfig
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry a .json,
// .yaml or .yml extension; without one each is tried in turn.
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, ErrConfigNotFound
	}
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	configPath, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.DecodePuzzleConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations,
// sorted by config ID. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			continue
		}
		seen[id] = true

		backgrounds := make([]string, len(config.Backgrounds))
		for i, bg := range config.Backgrounds {
			backgrounds[i] = bg.Name
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:     entry.Name(),
			ConfigID:     id,
			Name:         config.Name,
			Description:  config.Description,
			ShuffleSteps: config.EffectiveShuffleSteps(),
			Backgrounds:  backgrounds,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// ReloadConfig drops a configuration from the cache and reads it again
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// RefreshCache clears every cached configuration and re-resolves the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// Watch refreshes the cache whenever a configuration file in the directory
// changes. It returns once the watch is registered; the returned channel is
// closed when ctx is cancelled and the watcher has shut down.
func (m *Manager) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(m.configDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", m.configDir, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				m.handleEvent(event)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[CONFIG] watcher error: %v", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return done, nil
}

func (m *Manager) handleEvent(event fsnotify.Event) {
	if !isConfigFile(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	log.Printf("[CONFIG] %s changed (%s), refreshing cache", filepath.Base(event.Name), event.Op)
	m.RefreshCache()
}

// loadDefaultConfig picks classic, then the first valid file, then the
// built-in configuration
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig("classic")
	if err != nil {
		config = engine.DefaultPuzzleConfig()
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			if first, err := m.LoadConfig(configs[0].Filename); err == nil {
				config = first
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// resolve finds the file backing a configuration name. Callers must hold the
// lock.
func (m *Manager) resolve(name string) (string, error) {
	if isConfigFile(name) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}

	for _, ext := range Extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// configID strips a known extension from a file or config name
func configID(name string) string {
	base := filepath.Base(name)
	if isConfigFile(base) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

func isConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
