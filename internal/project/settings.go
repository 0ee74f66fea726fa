// Package project reads and updates the Unity player and build settings
// innobuild works from.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/innobuild/innobuild/internal/config/validate"
	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/security"
	"gopkg.in/yaml.v3"
)

// StandaloneGroup is the platform group of desktop player targets.
const StandaloneGroup = "Standalone"

type Settings struct {
	Player PlayerSettings `yaml:"player"`
	Build  BuildSettings  `yaml:"build,omitempty"`
}

type PlayerSettings struct {
	BundleVersion         string `yaml:"bundleVersion"`
	CompanyName           string `yaml:"companyName"`
	ProductName           string `yaml:"productName"`
	ApplicationIdentifier string `yaml:"applicationIdentifier"`
}

type BuildSettings struct {
	ActiveTarget string  `yaml:"activeTarget,omitempty"`
	Scenes       []Scene `yaml:"scenes,omitempty"`
}

type Scene struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// EnabledScenes returns the paths of the scenes that take part in a build, in order.
func (s *Settings) EnabledScenes() []string {
	var scenes []string
	for _, sc := range s.Build.Scenes {
		if sc.Enabled {
			scenes = append(scenes, sc.Path)
		}
	}
	return scenes
}

// Store is the persistent project configuration.
type Store interface {
	Load() (*Settings, error)
	BundleVersion() (string, error)
	SetBundleVersion(v string) error
}

// Load reads and validates the settings file at path.
func Load(path string) (*Settings, error) {
	log := logger.Logger()

	data, err := security.SafeReadFile(path, security.ResolveSymlinks)
	if err != nil {
		log.Errorf("Failed to read project settings %s: %v", path, err)
		return nil, fmt.Errorf("reading project settings %s: %w", path, err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Settings, error) {
	log := logger.Logger()

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("project settings %s are empty", path)
	}
	if err := validate.ValidateProjectSettingsYAML(data); err != nil {
		log.Errorf("Project settings %s failed validation: %v", path, err)
		return nil, fmt.Errorf("invalid project settings %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		log.Errorf("Failed to parse project settings %s: %v", path, err)
		return nil, fmt.Errorf("parsing project settings %s: %w", path, err)
	}
	if err := security.ValidateStructStrings(&settings, security.DefaultLimits()); err != nil {
		return nil, fmt.Errorf("invalid project settings %s: %w", path, err)
	}
	return &settings, nil
}

// FileStore keeps the settings in a YAML file. Updates rewrite the file in place,
// preserving comments and key order.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (fs *FileStore) Load() (*Settings, error) {
	return Load(fs.Path)
}

func (fs *FileStore) BundleVersion() (string, error) {
	settings, err := fs.Load()
	if err != nil {
		return "", err
	}
	return settings.Player.BundleVersion, nil
}

// SetBundleVersion stores v as player.bundleVersion, creating the key if needed.
func (fs *FileStore) SetBundleVersion(v string) error {
	log := logger.Logger()

	info, err := os.Stat(fs.Path)
	if err != nil {
		return fmt.Errorf("project settings %s: %w", fs.Path, err)
	}
	data, err := security.SafeReadFile(fs.Path, security.ResolveSymlinks)
	if err != nil {
		return fmt.Errorf("reading project settings %s: %w", fs.Path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing project settings %s: %w", fs.Path, err)
	}
	if err := setScalar(&doc, []string{"player", "bundleVersion"}, v); err != nil {
		return fmt.Errorf("updating %s: %w", fs.Path, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding project settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding project settings: %w", err)
	}

	// Rename would replace a symlink with a regular file; write through it instead.
	target := fs.Path
	if resolved, err := filepath.EvalSymlinks(fs.Path); err == nil {
		target = resolved
	}
	if err := file.WriteFileAtomic(target, buf.Bytes(), info.Mode().Perm()); err != nil {
		log.Errorf("Failed to write project settings: %v", err)
		return err
	}
	log.Debugf("bundleVersion set to %s in %s", v, fs.Path)
	return nil
}

func setScalar(doc *yaml.Node, keyPath []string, value string) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return errors.New("settings document is empty")
	}
	node := doc.Content[0]
	for i, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", strings.Join(keyPath[:i], "."))
		}
		child := lookup(node, key)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if i == len(keyPath)-1 {
				child = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		node = child
	}
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%s is not a scalar", strings.Join(keyPath, "."))
	}
	node.Tag = "!!str"
	node.Value = value
	return nil
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// MemoryStore holds settings in memory. Used when no settings file is wanted.
type MemoryStore struct {
	Settings Settings
	Writes   int
}

func (m *MemoryStore) Load() (*Settings, error) {
	s := m.Settings
	s.Build.Scenes = append([]Scene(nil), m.Settings.Build.Scenes...)
	return &s, nil
}

func (m *MemoryStore) BundleVersion() (string, error) {
	return m.Settings.Player.BundleVersion, nil
}

func (m *MemoryStore) SetBundleVersion(v string) error {
	m.Settings.Player.BundleVersion = v
	m.Writes++
	return nil
}
