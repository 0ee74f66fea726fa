// internal/config/global.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/innobuild/innobuild/internal/config/validate"
	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/security"
	"gopkg.in/yaml.v3"
)

var log = logger.Logger()

// Environment variables that override the matching config fields.
const (
	EnvCompilerPath = "INNOBUILD_COMPILER"
	EnvUnityEditor  = "UNITY_EDITOR"
)

// DefaultRegistryKey is where Inno Setup registers the open command for .iss files.
const DefaultRegistryKey = `SOFTWARE\Classes\InnoSetupScriptFile\shell\open\command`

// GlobalConfig holds tool-level settings. Relative paths are resolved against ProjectDir.
type GlobalConfig struct {
	ProjectDir    string `yaml:"project_dir" json:"project_dir"`       // Unity project root, the directory that contains Assets/ (default: .)
	SettingsFile  string `yaml:"settings_file" json:"settings_file"`   // Player/build settings file
	BuildsDir     string `yaml:"builds_dir" json:"builds_dir"`         // Build output directory (default: Builds)
	InstallersDir string `yaml:"installers_dir" json:"installers_dir"` // Installer script directory (default: Installers)

	Installer InstallerConfig `yaml:"installer" json:"installer"`
	Unity     UnityConfig     `yaml:"unity" json:"unity"`
	Pipeline  PipelineConfig  `yaml:"pipeline" json:"pipeline"`
	Export    ExportConfig    `yaml:"export" json:"export"`
	History   HistoryConfig   `yaml:"history" json:"history"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// InstallerConfig locates the installer script, its template and the Inno Setup compiler.
type InstallerConfig struct {
	Script          string   `yaml:"script" json:"script"`                                         // Script file name inside InstallersDir
	TemplateDir     string   `yaml:"template_dir,omitempty" json:"template_dir,omitempty"`         // Directory copied into InstallersDir when the script is missing
	CompilerPath    string   `yaml:"compiler_path,omitempty" json:"compiler_path,omitempty"`       // Explicit compiler path, checked before the registry
	CompilerWrapper []string `yaml:"compiler_wrapper,omitempty" json:"compiler_wrapper,omitempty"` // Command prefix for the compiler, e.g. [wine]
	RegistryKey     string   `yaml:"registry_key" json:"registry_key"`                             // HKLM key holding the .iss open command
}

type UnityConfig struct {
	EditorPath string `yaml:"editor_path,omitempty" json:"editor_path,omitempty"`
}

type PipelineConfig struct {
	RequireSetup bool `yaml:"require_setup" json:"require_setup"` // Skip post-build steps until setup-installer has run
}

type ExportConfig struct {
	VersionInfo bool `yaml:"version_info" json:"version_info"` // Also write versioninfo.json
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig controls basic logging behavior
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`                   // debug, info (default), warn, error
	File  string `yaml:"file,omitempty" json:"file,omitempty"` // Optional log file path for teeing output to disk
}

var (
	globalInstance *GlobalConfig
	globalMutex    sync.RWMutex
	once           sync.Once
)

// SetGlobal sets the global config instance (call once at startup in main.go)
func SetGlobal(config *GlobalConfig) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalInstance = config
}

// Global returns the global config instance
func Global() *GlobalConfig {
	once.Do(func() {
		globalMutex.Lock()
		defer globalMutex.Unlock()
		if globalInstance == nil {
			globalInstance = DefaultGlobalConfig()
		}
	})

	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalInstance
}

// DefaultGlobalConfig returns a GlobalConfig laid out like a Unity project:
// Builds/ and Installers/ next to Assets/.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ProjectDir:    ".",
		SettingsFile:  filepath.Join("ProjectSettings", "innobuild-player.yml"),
		BuildsDir:     "Builds",
		InstallersDir: "Installers",

		Installer: InstallerConfig{
			Script:      "installer.iss",
			RegistryKey: DefaultRegistryKey,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join("Library", "innobuild", "history.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadGlobalConfig loads configuration from the specified path
func LoadGlobalConfig(configPath string) (*GlobalConfig, error) {
	config := DefaultGlobalConfig()

	if configPath == "" {
		config.applyEnv()
		return config, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		if errors.Is(err, os.ErrPermission) {
			log.Warnf("Config file %s is not accessible (%v); using defaults", configPath, err)
			config.applyEnv()
			return config, nil
		}
		log.Errorf("Error accessing config file %s: %v", configPath, err)
		return nil, fmt.Errorf("accessing config file %s: %w", configPath, err)
	}

	data, err := security.SafeReadFile(configPath, security.RejectSymlinks)
	if err != nil {
		log.Errorf("Error reading config file %s: %v", configPath, err)
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	ext := strings.ToLower(filepath.Ext(configPath))
	if ext != ".yaml" && ext != ".yml" {
		log.Errorf("Unsupported config file format: %s", ext)
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml)", ext)
	}

	// Validate the file as written; defaults would otherwise mask unknown keys.
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Errorf("Error parsing YAML config: %v", err)
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	if raw != nil {
		jsonData, err := json.Marshal(raw)
		if err != nil {
			log.Errorf("Error converting config to JSON for validation: %v", err)
			return nil, fmt.Errorf("converting config to JSON for validation: %w", err)
		}
		if err := validate.ValidateConfigJSON(jsonData); err != nil {
			log.Errorf("Schema validation failed: %v", err)
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		log.Errorf("Error parsing YAML config: %v", err)
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		log.Errorf("Config validation failed: %v", err)
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (gc *GlobalConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvCompilerPath)); v != "" {
		gc.Installer.CompilerPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUnityEditor)); v != "" {
		gc.Unity.EditorPath = v
	}
}

// SaveGlobalConfigWithComments writes the configuration with descriptive
// comments. Used by `config init`.
func (gc *GlobalConfig) SaveGlobalConfigWithComments(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is empty")
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Errorf("Failed to create config directory: %v", err)
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	jsonData, err := json.Marshal(gc)
	if err != nil {
		return fmt.Errorf("converting config to JSON for validation: %w", err)
	}
	if err := validate.ValidateConfigJSON(jsonData); err != nil {
		log.Errorf("Config validation failed before save: %v", err)
		return fmt.Errorf("config validation failed before save: %w", err)
	}

	if err := file.WriteFileAtomic(configPath, []byte(gc.renderCommentedYAML()), 0o644); err != nil {
		log.Errorf("Error writing config file: %v", err)
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (gc *GlobalConfig) renderCommentedYAML() string {
	var b strings.Builder

	b.WriteString("# innobuild - Global Configuration\n")
	b.WriteString("# Relative paths are resolved against project_dir.\n\n")

	fmt.Fprintf(&b, "project_dir: %q\n", gc.ProjectDir)
	b.WriteString("# Unity project root, the directory containing Assets/ (default: .)\n\n")

	fmt.Fprintf(&b, "settings_file: %q\n", gc.SettingsFile)
	b.WriteString("# Player settings (bundleVersion, companyName, productName, applicationIdentifier)\n")
	b.WriteString("# and build settings (activeTarget, scenes). bundleVersion is rewritten before each build.\n\n")

	fmt.Fprintf(&b, "builds_dir: %q\n", gc.BuildsDir)
	b.WriteString("# Quick build output; setup-installer writes the metadata files here\n\n")

	fmt.Fprintf(&b, "installers_dir: %q\n", gc.InstallersDir)
	b.WriteString("# Holds the Inno Setup script and the files copied from the installer template\n\n")

	b.WriteString("installer:\n")
	fmt.Fprintf(&b, "  script: %q\n", gc.Installer.Script)
	fmt.Fprintf(&b, "  template_dir: %q\n", gc.Installer.TemplateDir)
	b.WriteString("  # Copied (without .meta files, never overwriting) when the script is missing.\n")
	b.WriteString("  # Empty uses the template built into innobuild.\n")
	fmt.Fprintf(&b, "  compiler_path: %q\n", gc.Installer.CompilerPath)
	b.WriteString("  # Path to Compil32.exe or ISCC.exe. Empty falls back to the Windows registry.\n")
	fmt.Fprintf(&b, "  # Overridden by the %s environment variable.\n", EnvCompilerPath)
	if len(gc.Installer.CompilerWrapper) > 0 {
		b.WriteString("  compiler_wrapper:\n")
		for _, w := range gc.Installer.CompilerWrapper {
			fmt.Fprintf(&b, "    - %q\n", w)
		}
	} else {
		b.WriteString("  # compiler_wrapper: [\"wine\"]\n")
	}
	fmt.Fprintf(&b, "  registry_key: %q\n\n", gc.Installer.RegistryKey)

	b.WriteString("unity:\n")
	fmt.Fprintf(&b, "  editor_path: %q\n", gc.Unity.EditorPath)
	fmt.Fprintf(&b, "  # Unity editor executable used by quick-build. Overridden by %s.\n\n", EnvUnityEditor)

	b.WriteString("pipeline:\n")
	fmt.Fprintf(&b, "  require_setup: %t\n", gc.Pipeline.RequireSetup)
	b.WriteString("  # When true, post-build does nothing until setup-installer has exported\n")
	b.WriteString("  # the metadata files into builds_dir.\n\n")

	b.WriteString("export:\n")
	fmt.Fprintf(&b, "  version_info: %t\n", gc.Export.VersionInfo)
	b.WriteString("  # Also write versioninfo.json (goversioninfo format) next to the metadata files\n\n")

	b.WriteString("history:\n")
	fmt.Fprintf(&b, "  enabled: %t\n", gc.History.Enabled)
	fmt.Fprintf(&b, "  path: %q\n\n", gc.History.Path)

	b.WriteString("logging:\n")
	fmt.Fprintf(&b, "  level: %q\n", gc.Logging.Level)
	b.WriteString("  # debug, info, warn or error\n")
	if gc.Logging.File != "" {
		fmt.Fprintf(&b, "  file: %q\n", gc.Logging.File)
		b.WriteString("  # Tee logs to this file in addition to stderr (overwritten on each run)\n")
	}

	return b.String()
}

// Validate checks the configuration for consistency. It does not apply defaults.
func (gc *GlobalConfig) Validate() error {
	if strings.TrimSpace(gc.ProjectDir) == "" {
		return fmt.Errorf("project_dir cannot be empty")
	}
	if strings.TrimSpace(gc.SettingsFile) == "" {
		return fmt.Errorf("settings_file cannot be empty")
	}
	if strings.TrimSpace(gc.BuildsDir) == "" {
		return fmt.Errorf("builds_dir cannot be empty")
	}
	if strings.TrimSpace(gc.InstallersDir) == "" {
		return fmt.Errorf("installers_dir cannot be empty")
	}
	if gc.Installer.Script == "" || filepath.Base(gc.Installer.Script) != gc.Installer.Script {
		return fmt.Errorf("installer.script must be a file name, got %q", gc.Installer.Script)
	}
	if gc.History.Enabled && strings.TrimSpace(gc.History.Path) == "" {
		return fmt.Errorf("history.path cannot be empty when history is enabled")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, gc.Logging.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s",
			gc.Logging.Level, strings.Join(validLevels, ", "))
	}

	gc.Logging.File = strings.TrimSpace(gc.Logging.File)
	return nil
}

// GetConfigPaths returns the standard configuration file paths to check
func GetConfigPaths() []string {
	paths := []string{
		"innobuild.yml",
		".innobuild.yml",
		"innobuild.yaml",
		".innobuild.yaml",
	}

	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		paths = append(paths,
			filepath.Join(homeDir, ".innobuild", "config.yml"),
			filepath.Join(homeDir, ".innobuild", "config.yaml"),
			filepath.Join(homeDir, ".config", "innobuild", "config.yml"),
			filepath.Join(homeDir, ".config", "innobuild", "config.yaml"),
		)
	}
	return paths
}

// FindConfigFile searches for a configuration file in standard locations
func FindConfigFile() string {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ProjectDir returns the absolute project root.
func ProjectDir() (string, error) {
	dir, err := filepath.Abs(Global().ProjectDir)
	if err != nil {
		log.Errorf("Failed to resolve project directory: %v", err)
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return dir, nil
}

func resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	root, err := ProjectDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, p), nil
}

// DataDir is the project's Assets directory.
func DataDir() (string, error) {
	return resolve("Assets")
}

func SettingsPath() (string, error) {
	return resolve(Global().SettingsFile)
}

func BuildsDir() (string, error) {
	return resolve(Global().BuildsDir)
}

func InstallersDir() (string, error) {
	return resolve(Global().InstallersDir)
}

// TemplateDir returns the configured installer template directory, or "" when
// the built-in template should be used.
func TemplateDir() (string, error) {
	if Global().Installer.TemplateDir == "" {
		return "", nil
	}
	return resolve(Global().Installer.TemplateDir)
}

func HistoryPath() (string, error) {
	return resolve(Global().History.Path)
}

func LogLevel() string {
	return Global().Logging.Level
}
