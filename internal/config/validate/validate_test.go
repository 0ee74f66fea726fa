package validate

import (
	"encoding/json"
	"testing"

	"sigs.k8s.io/yaml"
)

func TestValidateConfigJSON(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "full config",
			yaml: `project_dir: "."
settings_file: "ProjectSettings/innobuild-player.yml"
builds_dir: "Builds"
installers_dir: "Installers"
installer:
  script: "installer.iss"
  template_dir: "Packages/com.example.installer/InstallerTemplate/Installers"
  compiler_wrapper: ["wine"]
pipeline:
  require_setup: true
history:
  enabled: false
logging:
  level: debug
`,
		},
		{name: "empty document", yaml: `{}`},
		{name: "unknown key", yaml: `workers: 8`, wantErr: true},
		{name: "bad log level", yaml: "logging:\n  level: verbose\n", wantErr: true},
		{name: "script must be an iss file name", yaml: "installer:\n  script: ../setup.iss\n", wantErr: true},
		{name: "require_setup must be boolean", yaml: "pipeline:\n  require_setup: sometimes\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw interface{}
			if err := yaml.Unmarshal([]byte(tt.yaml), &raw); err != nil {
				t.Fatalf("yml parsing error: %v", err)
			}
			dataJSON, err := json.Marshal(raw)
			if err != nil {
				t.Fatalf("json marshaling error: %v", err)
			}

			err = ValidateConfigJSON(dataJSON)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfigJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectSettingsYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "complete settings",
			yaml: `player:
  bundleVersion: "1.4.9"
  companyName: Dragyn Games
  productName: Skyward
  applicationIdentifier: com.dragyn.skyward
build:
  activeTarget: StandaloneWindows64
  scenes:
    - path: Assets/Scenes/Main.unity
      enabled: true
`,
		},
		{name: "unquoted numeric version", yaml: "player:\n  bundleVersion: 0.1\n"},
		{name: "empty version", yaml: "player:\n  bundleVersion:\n  productName:\n"},
		{name: "missing player section", yaml: "build:\n  activeTarget: StandaloneWindows64\n", wantErr: true},
		{name: "scene without path", yaml: "player: {}\nbuild:\n  scenes:\n    - enabled: true\n", wantErr: true},
		{name: "company name must be a string", yaml: "player:\n  companyName: [a, b]\n", wantErr: true},
		{name: "not yaml", yaml: "player: [unclosed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectSettingsYAML([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectSettingsYAML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
