// Package config provides configuration for the flywheel binary.
// Loads from: CLI flags > env vars > .flywheel/config.toml > built-in defaults.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Strictness controls the Scorer's adaptive threshold base.
type Strictness string

const (
	Conservative Strictness = "conservative"
	Balanced     Strictness = "balanced"
	Aggressive   Strictness = "aggressive"
)

// Engine-wide defaults from the external-interfaces contract.
const (
	DefaultCommitPrefix   = "[Flywheel]"
	DefaultMaxSuggestions = 3
	DefaultStalenessMs    = 3_600_000
)

// Config holds all Flywheel configuration, loaded from TOML + env + flags.
type Config struct {
	Vault   VaultConfig   `toml:"vault"`
	Engine  EngineConfig  `toml:"engine"`
	Display DisplayConfig `toml:"display"`
}

// VaultConfig holds vault-related settings.
type VaultConfig struct {
	Path string `toml:"path"`
}

// EngineConfig holds the suggestion/linking engine's tunables, per the
// external interfaces contract (spec.md §6).
type EngineConfig struct {
	Strictness      string   `toml:"strictness"`
	CommitPrefix    string   `toml:"commit_prefix"`
	MaxSuggestions  int      `toml:"max_suggestions"`
	ExcludedFolders []string `toml:"excluded_folders"`
	StalenessMs     int64    `toml:"staleness_ms"`
	AutoCommit      bool     `toml:"auto_commit"`
}

// DisplayConfig controls visual output settings.
type DisplayConfig struct {
	Mode string `toml:"mode"` // "full" (default), "compact", "quiet"
}

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Strictness:     string(Conservative),
			CommitPrefix:   DefaultCommitPrefix,
			MaxSuggestions: DefaultMaxSuggestions,
			StalenessMs:    DefaultStalenessMs,
		},
		Display: DisplayConfig{
			Mode: "full",
		},
	}
}

// LoadConfig merges all configuration sources: defaults < TOML file < env vars.
// CLI flags (VaultOverride) are handled separately by the existing VaultPath() logic.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath := findConfigFile()
	if configPath != "" {
		meta, err := toml.DecodeFile(configPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
		warnUnknownKeys(meta, configPath)
	}

	if v := os.Getenv("VAULT_PATH"); v != "" {
		cfg.Vault.Path = v
	}
	if v := os.Getenv("FLYWHEEL_STRICTNESS"); v != "" {
		cfg.Engine.Strictness = v
	}
	if v := os.Getenv("FLYWHEEL_COMMIT_PREFIX"); v != "" {
		cfg.Engine.CommitPrefix = v
	}
	if v := os.Getenv("FLYWHEEL_EXCLUDED_FOLDERS"); v != "" {
		for _, d := range strings.Split(v, ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				cfg.Engine.ExcludedFolders = append(cfg.Engine.ExcludedFolders, d)
			}
		}
	}

	if cfg.Engine.Strictness == "" {
		cfg.Engine.Strictness = string(Conservative)
	}
	if cfg.Engine.CommitPrefix == "" {
		cfg.Engine.CommitPrefix = DefaultCommitPrefix
	}
	if cfg.Engine.MaxSuggestions == 0 {
		cfg.Engine.MaxSuggestions = DefaultMaxSuggestions
	}
	if cfg.Engine.StalenessMs == 0 {
		cfg.Engine.StalenessMs = DefaultStalenessMs
	}

	if len(cfg.Engine.ExcludedFolders) > 0 {
		RebuildSkipDirs(cfg.Engine.ExcludedFolders)
	}

	return cfg, nil
}

// LoadConfigFrom loads configuration from a specific file path, merging with
// defaults and env vars. Use this instead of LoadConfig() when you know
// exactly which config file to load (e.g., after writing a config during
// init).
func LoadConfigFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		}
	}

	if v := os.Getenv("VAULT_PATH"); v != "" {
		cfg.Vault.Path = v
	}
	return cfg, nil
}

// findConfigFile looks for .flywheel/config.toml starting from vault path,
// then CWD.
func findConfigFile() string {
	if vp := resolveVaultForConfig(); vp != "" {
		p := filepath.Join(vp, ".flywheel", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, ".flywheel", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// resolveVaultForConfig resolves the vault path for config loading without
// calling VaultPath() to avoid circular dependency with config loading.
func resolveVaultForConfig() string {
	if VaultOverride != "" {
		reg := LoadRegistry()
		if resolved := reg.ResolveVault(VaultOverride); resolved != "" {
			return resolved
		}
		return VaultOverride
	}
	if v := os.Getenv("VAULT_PATH"); v != "" {
		return v
	}
	return ""
}

// ConfigFilePath returns the path where the config file should be written
// for the given vault path.
func ConfigFilePath(vaultPath string) string {
	return filepath.Join(vaultPath, ".flywheel", "config.toml")
}

// GenerateConfig writes a default .flywheel/config.toml with comments.
func GenerateConfig(vaultPath string) error {
	configPath := ConfigFilePath(vaultPath)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := generateTOMLContent(vaultPath)
	return os.WriteFile(configPath, []byte(content), 0o600)
}

func generateTOMLContent(vaultPath string) string {
	var b strings.Builder
	b.WriteString("# Flywheel configuration\n")
	b.WriteString("#\n")
	b.WriteString("# Priority: CLI flags > environment variables > this file > built-in defaults\n")
	b.WriteString("# Environment variables: VAULT_PATH, FLYWHEEL_STRICTNESS,\n")
	b.WriteString("#   FLYWHEEL_COMMIT_PREFIX, FLYWHEEL_EXCLUDED_FOLDERS\n\n")

	b.WriteString("[vault]\n")
	if vaultPath != "" {
		b.WriteString(fmt.Sprintf("path = %q\n", vaultPath))
	} else {
		b.WriteString("# path = \"/path/to/your/vault\"  # auto-detected if unset\n")
	}
	b.WriteString("\n[engine]\n")
	b.WriteString("# strictness: \"conservative\" (default), \"balanced\", \"aggressive\"\n")
	b.WriteString(fmt.Sprintf("strictness = %q\n", string(Conservative)))
	b.WriteString(fmt.Sprintf("commit_prefix = %q\n", DefaultCommitPrefix))
	b.WriteString(fmt.Sprintf("max_suggestions = %d\n", DefaultMaxSuggestions))
	b.WriteString("# excluded_folders = [\"archive\", \"templates\"]\n")
	b.WriteString(fmt.Sprintf("staleness_ms = %d\n", DefaultStalenessMs))
	b.WriteString("auto_commit = false\n\n")

	b.WriteString("[display]\n")
	b.WriteString("mode = \"full\"\n")

	return b.String()
}

// ShowConfig returns the current effective configuration as TOML.
func ShowConfig() string {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Sprintf("# Error loading config: %v\n", err)
	}
	if cfg.Vault.Path == "" {
		cfg.Vault.Path = VaultPath()
	}
	var b strings.Builder
	b.WriteString("# Effective Flywheel configuration (merged from all sources)\n\n")
	enc := toml.NewEncoder(&b)
	enc.Encode(cfg)
	return b.String()
}

// EngineStrictness returns the configured strictness, defaulting to
// conservative.
func EngineStrictness() string {
	if v := os.Getenv("FLYWHEEL_STRICTNESS"); v != "" {
		return v
	}
	if cfg := loadConfigSafe(); cfg != nil && cfg.Engine.Strictness != "" {
		return cfg.Engine.Strictness
	}
	return string(Conservative)
}

// CommitPrefix returns the configured VCS commit message prefix.
func CommitPrefix() string {
	if v := os.Getenv("FLYWHEEL_COMMIT_PREFIX"); v != "" {
		return v
	}
	if cfg := loadConfigSafe(); cfg != nil && cfg.Engine.CommitPrefix != "" {
		return cfg.Engine.CommitPrefix
	}
	return DefaultCommitPrefix
}

// MaxSuggestions returns the configured suggestion cap.
func MaxSuggestions() int {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Engine.MaxSuggestions > 0 {
		return cfg.Engine.MaxSuggestions
	}
	return DefaultMaxSuggestions
}

// ExcludedFolders returns folder prefixes skipped by RecencyBuilder and
// CoOccurrenceBuilder.
func ExcludedFolders() []string {
	if cfg := loadConfigSafe(); cfg != nil {
		return cfg.Engine.ExcludedFolders
	}
	return nil
}

// StalenessMs returns the configured recency-cache staleness window.
func StalenessMs() int64 {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Engine.StalenessMs > 0 {
		return cfg.Engine.StalenessMs
	}
	return DefaultStalenessMs
}

// AutoCommit reports whether mutating operations should commit by default.
func AutoCommit() bool {
	cfg := loadConfigSafe()
	return cfg != nil && cfg.Engine.AutoCommit
}

// --- Existing API (preserved) ---

// loadConfigSafe loads config without risking recursion. Returns nil on error.
func loadConfigSafe() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		return nil
	}
	return cfg
}

// ConfigWarning returns any config file parse error, or empty string if OK.
func ConfigWarning() string {
	_, err := LoadConfig()
	if err != nil {
		return err.Error()
	}
	return ""
}

// FindConfigFile returns the path to the active config file, or empty
// string if none found.
func FindConfigFile() string {
	return findConfigFile()
}

// configSuggestions maps common wrong keys to the correct TOML key name.
var configSuggestions = map[string]string{
	"exclude_folders": "excluded_folders",
	"exclude_dirs":    "excluded_folders",
	"skip_dirs":       "excluded_folders",
	"prefix":          "commit_prefix",
	"commitprefix":    "commit_prefix",
	"max_links":       "max_suggestions",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]
		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(os.Stderr, "flywheel: WARNING: unknown key %q in %s — did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(os.Stderr, "flywheel: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}

// defaultSkipDirs are directories to skip during vault walks.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".obsidian":    true,
	".logseq":      true,
	".flywheel":    true,
	".trash":       true,
}

// SkipFiles are filenames excluded from entity/recency scanning.
var SkipFiles = map[string]bool{
	"CLAUDE.md": true,
}

// SkipDirs returns the set of directories to skip during vault walks.
var SkipDirs = buildSkipDirs()

func buildSkipDirs() map[string]bool {
	dirs := make(map[string]bool)
	for k, v := range defaultSkipDirs {
		dirs[k] = v
	}
	if extra := os.Getenv("FLYWHEEL_EXCLUDED_FOLDERS"); extra != "" {
		for _, d := range strings.Split(extra, ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				dirs[d] = true
			}
		}
	}
	return dirs
}

// RebuildSkipDirs rebuilds the SkipDirs map, incorporating config file settings.
func RebuildSkipDirs(extra []string) {
	dirs := make(map[string]bool)
	for k, v := range defaultSkipDirs {
		dirs[k] = v
	}
	if envExtra := os.Getenv("FLYWHEEL_EXCLUDED_FOLDERS"); envExtra != "" {
		for _, d := range strings.Split(envExtra, ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				dirs[d] = true
			}
		}
	}
	for _, d := range extra {
		d = strings.TrimSpace(d)
		if d != "" {
			dirs[d] = true
		}
	}
	SkipDirs = dirs
}

// VaultPath returns the vault root directory.
func VaultPath() string {
	var path string
	if VaultOverride != "" {
		reg := LoadRegistry()
		if resolved := reg.ResolveVault(VaultOverride); resolved != "" {
			path = resolved
		} else {
			path = VaultOverride
		}
	} else if v := os.Getenv("VAULT_PATH"); v != "" {
		path = v
	} else if cfg := loadConfigSafe(); cfg != nil && cfg.Vault.Path != "" {
		path = cfg.Vault.Path
	} else {
		path = defaultVaultPath()
	}
	if path != "" {
		path = validateVaultPath(path)
	}
	return path
}

// validateVaultPath rejects vault paths that are too broad (e.g., /, /home,
// /Users) and resolves symlinks to prevent symlink-based escapes.
func validateVaultPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	dangerous := []string{"/", "/home", "/Users", "/tmp", "/var", "/etc", "/opt"}
	if runtime.GOOS == "windows" && len(abs) >= 3 {
		for _, letter := range "ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
			dangerous = append(dangerous, string(letter)+":\\")
		}
		driveRoot := abs[:3]
		dangerous = append(dangerous, filepath.Join(driveRoot, "Users"), filepath.Join(driveRoot, "Windows"))
	}
	for _, d := range dangerous {
		if abs == d {
			fmt.Fprintf(os.Stderr, "WARNING: VAULT_PATH=%q is too broad, ignoring.\n", abs)
			return ""
		}
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return path
	}
	for _, d := range dangerous {
		if resolved == d {
			fmt.Fprintf(os.Stderr, "WARNING: VAULT_PATH=%q resolves to %q which is too broad, ignoring.\n", abs, resolved)
			return ""
		}
		if resolvedDangerous, err := filepath.EvalSymlinks(d); err == nil {
			if resolved == resolvedDangerous {
				fmt.Fprintf(os.Stderr, "WARNING: VAULT_PATH=%q resolves to %q which is too broad, ignoring.\n", abs, resolved)
				return ""
			}
		}
	}
	return path
}

// Sentinel errors for consistent messaging across CLI.
var (
	ErrNoVault    = fmt.Errorf("no vault found — run 'flywheel init' or set VAULT_PATH")
	ErrNoDatabase = fmt.Errorf("cannot open Flywheel database — run 'flywheel init' or 'flywheel index'")
)

// DataDir returns the data directory for the flywheel binary.
func DataDir() string {
	if v := os.Getenv("FLYWHEEL_DATA_DIR"); v != "" {
		return validateDataDir(v)
	}
	return filepath.Join(VaultPath(), ".flywheel", "data")
}

func validateDataDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: FLYWHEEL_DATA_DIR=%q is not a valid path, using default.\n", dir)
		return filepath.Join(VaultPath(), ".flywheel", "data")
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			fmt.Fprintf(os.Stderr, "WARNING: FLYWHEEL_DATA_DIR=%q is not a directory, using default.\n", abs)
			return filepath.Join(VaultPath(), ".flywheel", "data")
		}
		testFile := filepath.Join(abs, ".flywheel_write_test")
		if f, err := os.Create(testFile); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: FLYWHEEL_DATA_DIR=%q is not writable, using default.\n", abs)
			return filepath.Join(VaultPath(), ".flywheel", "data")
		} else {
			f.Close()
			os.Remove(testFile)
		}
		return abs
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: FLYWHEEL_DATA_DIR=%q cannot be created (%v), using default.\n", abs, err)
		return filepath.Join(VaultPath(), ".flywheel", "data")
	}
	return abs
}

// VaultRegistry holds registered vault paths with aliases.
type VaultRegistry struct {
	Vaults  map[string]string `json:"vaults"`
	Default string            `json:"default"`
}

// RegistryPath returns the path to the vault registry file.
func RegistryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "flywheel", "vaults.json")
}

// LoadRegistry loads or creates the vault registry.
func LoadRegistry() *VaultRegistry {
	data, err := os.ReadFile(RegistryPath())
	if err != nil {
		return &VaultRegistry{Vaults: make(map[string]string)}
	}
	var reg VaultRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return &VaultRegistry{Vaults: make(map[string]string)}
	}
	if reg.Vaults == nil {
		reg.Vaults = make(map[string]string)
	}
	return &reg
}

// Save writes the registry to disk, guarded by a lockfile against
// concurrent writers.
func (r *VaultRegistry) Save() error {
	path := RegistryPath()
	os.MkdirAll(filepath.Dir(path), 0o755)

	lockPath := path + ".lock"
	unlock, err := acquireFileLock(lockPath)
	if err != nil {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o600)
	}
	defer unlock()

	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// acquireFileLock creates a lockfile using O_EXCL for atomic creation.
func acquireFileLock(lockPath string) (func(), error) {
	const maxRetries = 20
	const retryDelay = 50 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if info, statErr := os.Stat(lockPath); statErr == nil {
			if time.Since(info.ModTime()) > 10*time.Second {
				if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
					return nil, fmt.Errorf("remove stale lockfile %s: %w", lockPath, err)
				}
				continue
			}
		}
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("could not acquire lock on %s", lockPath)
}

// ResolveVault resolves a vault alias to a path. Returns empty string if not found.
func (r *VaultRegistry) ResolveVault(alias string) string {
	if p, ok := r.Vaults[alias]; ok {
		return p
	}
	if info, err := os.Stat(alias); err == nil && info.IsDir() {
		return alias
	}
	return ""
}

// VaultOverride is set by the --vault global flag.
var VaultOverride string

// VaultMarkers are dotfiles/directories that indicate a knowledge base root.
var VaultMarkers = []string{".flywheel", ".obsidian", ".logseq", ".foam", ".dendron"}

func defaultVaultPath() string {
	if VaultOverride != "" {
		reg := LoadRegistry()
		if resolved := reg.ResolveVault(VaultOverride); resolved != "" {
			return resolved
		}
		return VaultOverride
	}

	if cwd, err := os.Getwd(); err == nil {
		for _, marker := range VaultMarkers {
			if _, err := os.Stat(filepath.Join(cwd, marker)); err == nil {
				return cwd
			}
		}
	}

	reg := LoadRegistry()
	if reg.Default != "" {
		if p, ok := reg.Vaults[reg.Default]; ok {
			return p
		}
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for i := 0; i < 5; i++ {
			for _, marker := range VaultMarkers {
				if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
					return dir
				}
			}
			dir = filepath.Dir(dir)
		}
	}

	return ""
}

// DisplayMode returns the current display mode from config.
func DisplayMode() string {
	cfg := loadConfigSafe()
	if cfg == nil || cfg.Display.Mode == "" {
		return "full"
	}
	return cfg.Display.Mode
}

// SetDisplayMode updates the display mode in the config file.
func SetDisplayMode(vaultPath, mode string) error {
	cfgPath := ConfigFilePath(vaultPath)
	cfg, err := LoadConfigFrom(cfgPath)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.Display.Mode = mode

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	os.MkdirAll(filepath.Dir(cfgPath), 0o755)
	return os.WriteFile(cfgPath, buf.Bytes(), 0o600)
}

// SetEngineConfig updates strictness/commit-prefix/max-suggestions in the
// config file for vaultPath.
func SetEngineConfig(vaultPath string, strictness Strictness, commitPrefix string, maxSuggestions int) error {
	cfgPath := ConfigFilePath(vaultPath)
	cfg, err := LoadConfigFrom(cfgPath)
	if err != nil {
		cfg = DefaultConfig()
	}
	if strictness != "" {
		cfg.Engine.Strictness = string(strictness)
	}
	if commitPrefix != "" {
		cfg.Engine.CommitPrefix = commitPrefix
	}
	if maxSuggestions > 0 {
		cfg.Engine.MaxSuggestions = maxSuggestions
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	os.MkdirAll(filepath.Dir(cfgPath), 0o755)
	return os.WriteFile(cfgPath, buf.Bytes(), 0o600)
}

// VerboseEnabled returns true when verbose monitoring is active.
func VerboseEnabled() bool {
	if os.Getenv("FLYWHEEL_VERBOSE") != "" {
		return true
	}
	_, err := os.Stat(filepath.Join(DataDir(), "verbose"))
	return err == nil
}

// MachineName returns the user-configured machine name, or falls back to
// hostname.
func MachineName() string {
	cfg := loadUserConfig()
	if cfg.MachineName != "" {
		return cfg.MachineName
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// SetMachineName saves the user's preferred machine name.
func SetMachineName(name string) error {
	cfg := loadUserConfig()
	cfg.MachineName = name
	return saveUserConfig(cfg)
}

// userConfig holds user-level preferences (not vault-specific).
type userConfig struct {
	MachineName string `json:"machine_name,omitempty"`
}

func userConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "flywheel", "config.json")
}

func loadUserConfig() userConfig {
	data, err := os.ReadFile(userConfigPath())
	if err != nil {
		return userConfig{}
	}
	var cfg userConfig
	json.Unmarshal(data, &cfg)
	return cfg
}

func saveUserConfig(cfg userConfig) error {
	path := userConfigPath()
	os.MkdirAll(filepath.Dir(path), 0o755)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
