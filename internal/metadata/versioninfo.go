package metadata

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/innobuild/innobuild/internal/bundleversion"
	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/josephspurrier/goversioninfo"
)

const VersionInfoFile = "versioninfo.json"

// versionInfoDoc is the part of goversioninfo.VersionInfo read from versioninfo.json.
type versionInfoDoc struct {
	FixedFileInfo  goversioninfo.FixedFileInfo  `json:"FixedFileInfo"`
	StringFileInfo goversioninfo.StringFileInfo `json:"StringFileInfo"`
	VarFileInfo    goversioninfo.VarFileInfo    `json:"VarFileInfo"`
	IconPath       string                       `json:"IconPath"`
	ManifestPath   string                       `json:"ManifestPath"`
}

// VersionInfo builds the goversioninfo description of rec. A version that is
// not major.minor.patch leaves the numeric fields at zero.
func VersionInfo(rec Record) goversioninfo.VersionInfo {
	var fv goversioninfo.FileVersion
	if v, ok := bundleversion.Parse(rec.Version); ok {
		fv = goversioninfo.FileVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	}

	var vi goversioninfo.VersionInfo
	vi.FixedFileInfo = goversioninfo.FixedFileInfo{
		FileVersion:    fv,
		ProductVersion: fv,
		FileFlagsMask:  "3f",
		FileFlags:      "00",
		FileOS:         "040004",
		FileType:       "01",
		FileSubType:    "00",
	}
	vi.StringFileInfo = goversioninfo.StringFileInfo{
		CompanyName:     rec.CompanyName,
		ProductName:     rec.ProductName,
		FileDescription: rec.ProductName,
		InternalName:    rec.ApplicationID,
		FileVersion:     rec.Version,
		ProductVersion:  rec.Version,
	}
	vi.VarFileInfo = goversioninfo.VarFileInfo{
		Translation: goversioninfo.Translation{LangID: 0x0409, CharsetID: 0x04B0},
	}
	return vi
}

// WriteVersionInfo writes versioninfo.json for rec into dir.
func WriteVersionInfo(dir string, rec Record) (string, error) {
	log := logger.Logger()

	vi := VersionInfo(rec)
	doc := versionInfoDoc{
		FixedFileInfo:  vi.FixedFileInfo,
		StringFileInfo: vi.StringFileInfo,
		VarFileInfo:    vi.VarFileInfo,
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", VersionInfoFile, err)
	}

	path := filepath.Join(dir, VersionInfoFile)
	if err := file.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		log.Errorf("Failed to write %s: %v", path, err)
		return "", err
	}
	log.Debugf("Wrote %s", path)
	return path, nil
}
