package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"clicache/pkg/clicache"
)

// Config holds all configuration options.
type Config struct {
	CacheDir   string `json:"cache_dir"`             //nolint:tagliatelle // snake_case for config file
	MaxRetries int    `json:"max_retries,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheDir:   "~/.clicache",
		MaxRetries: clicache.DefaultMaxRetries,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".clicache.json"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/clicache/config.json if set, otherwise
// ~/.config/clicache/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "clicache", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "clicache", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "clicache", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/clicache/config.json or ~/.config/clicache/config.json)
// 3. Project config file at default location (.clicache.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. Environment (CLICACHE_DIR, CLICACHE_MAX_RETRIES)
// 6. CLI overrides.
func LoadConfig(
	workDir, configPath string, cliOverrides Config, hasCacheDirOverride bool, env map[string]string,
) (Config, ConfigSources, error) {
	cfg := DefaultConfig()

	var sources ConfigSources

	// Load global config if it exists
	globalCfg, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	// Load project/explicit config file
	projectCfg, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	// Apply environment overrides
	envCfg, err := envConfig(env)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	cfg = mergeConfig(cfg, envCfg)

	// Apply CLI overrides
	if hasCacheDirOverride {
		cfg.CacheDir = cliOverrides.CacheDir
	}

	// Validate
	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, ConfigSources{}, validateErr
	}

	// Resolve ~ and relative paths so every consumer sees one absolute root.
	cfg.CacheDir, err = expandPath(cfg.CacheDir, workDir, env)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	return cfg, sources, nil
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["cache_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, globalCfgPath, errCacheDirEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.clicache.json) or an
// explicit config file. Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		// Check existence first to provide a clear "not found" error
		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["cache_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", errConfigInvalid, cfgFile, errCacheDirEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, a map of explicitly empty fields,
// whether the file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["cache_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["cache_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

// envConfig reads overrides from the process environment.
func envConfig(env map[string]string) (Config, error) {
	var cfg Config

	cfg.CacheDir = env["CLICACHE_DIR"]

	if raw, ok := env["CLICACHE_MAX_RETRIES"]; ok && raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil || retries < 1 {
			return Config{}, fmt.Errorf("%w: CLICACHE_MAX_RETRIES=%q", errMaxRetriesInvalid, raw)
		}

		cfg.MaxRetries = retries
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.CacheDir != "" {
		base.CacheDir = overlay.CacheDir
	}

	if overlay.MaxRetries != 0 {
		base.MaxRetries = overlay.MaxRetries
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.CacheDir == "" {
		return errCacheDirEmpty
	}

	if cfg.MaxRetries < 1 {
		return fmt.Errorf("%w: got %d", errMaxRetriesInvalid, cfg.MaxRetries)
	}

	return nil
}

// expandPath resolves a leading ~ and makes relative paths absolute
// against workDir.
func expandPath(path, workDir string, env map[string]string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home := env["HOME"]
		if home == "" {
			var err error

			home, err = os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("%w: %w", errHomeNotFound, err)
			}
		}

		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}

	if !filepath.IsAbs(path) {
		return filepath.Join(workDir, path), nil
	}

	return path, nil
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
