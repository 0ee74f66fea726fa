package schema

import _ "embed"

//go:embed innobuild-config.schema.json
var ConfigSchema []byte

//go:embed project-settings.schema.json
var ProjectSettingsSchema []byte
