package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "dlpc350"
	configFile = "config.yaml"

	// CurrentVersion is the only config file version understood
	CurrentVersion = 1
)

var (
	// Global registry instance (loaded lazily)
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/dlpc350 or $HOME/.config/dlpc350
//   - macOS: $HOME/.config/dlpc350 (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\dlpc350
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistry loads the configuration registry from disk.
// If the file doesn't exist, returns a new default registry.
// Thread-safe - multiple calls will return the same instance.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		configPath, err := GetConfigPath()
		if err != nil {
			globalRegistryErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		globalRegistry, globalRegistryErr = LoadFile(configPath)
	})
	return globalRegistry, globalRegistryErr
}

// LoadFile loads a registry from path.
// A missing file yields a new default registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry and fills in defaults for missing sections.
func Parse(data []byte) (*Registry, error) {
	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", registry.Version, CurrentVersion)
	}

	if registry.Connection == nil {
		registry.Connection = DefaultConnection()
	}
	if registry.Timing == nil {
		registry.Timing = DefaultTiming()
	}
	if registry.Sequences == nil {
		registry.Sequences = make(map[string]*SequenceSpec)
	}
	if registry.Profiles == nil {
		registry.Profiles = make(map[string]*ProfileSpec)
	}

	return &registry, nil
}

// Save saves the registry to the default config path.
func (r *Registry) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveFile(configPath)
}

// SaveFile writes the registry to path.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) SaveFile(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# DLPC350 Configuration File
# Connection profile, driver timing and named pattern sequences.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// ExampleSequence returns eight 1-bit green bit planes of flash image 0
// followed by eight of image 1.
func ExampleSequence() *SequenceSpec {
	spec := &SequenceSpec{
		Description:      "1-bit planes G0-G7 of images 0 and 1",
		Period:           PeriodSpec{Exposure: 2700, Frame: 3000},
		Repeat:           true,
		TriggerOutPulses: 1,
	}
	for img := 0; img < 2; img++ {
		for bit := 0; bit < 8; bit++ {
			spec.Entries = append(spec.Entries, EntrySpec{
				Color:    "white",
				Trigger:  "internal",
				BitDepth: 1,
				Image:    uint8(img),
				StartBit: fmt.Sprintf("G%d", bit),
			})
		}
	}
	return spec
}

// ExampleProfile returns a profile showing the checkerboard test pattern
// at moderate LED currents.
func ExampleProfile() *ProfileSpec {
	current := 120
	return &ProfileSpec{
		Description: "Checkerboard focus target",
		LEDEnable:   "red,green,blue",
		Red:         &current,
		Green:       &current,
		Blue:        &current,
		Input:       "test_pattern",
		TestPattern: "checkerboard",
	}
}
