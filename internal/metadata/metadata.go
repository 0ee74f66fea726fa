// Package metadata writes the build metadata text files the installer script reads.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
)

// File names written by Export, in write order.
const (
	VersionFile       = "Version.txt"
	CompanyNameFile   = "CompanyName.txt"
	ProductNameFile   = "ProductName.txt"
	ApplicationIDFile = "ApplicationID.txt"
)

// Files lists the metadata file names.
var Files = []string{VersionFile, CompanyNameFile, ProductNameFile, ApplicationIDFile}

type Record struct {
	Version       string
	CompanyName   string
	ProductName   string
	ApplicationID string
}

func FromSettings(s *project.Settings) Record {
	return Record{
		Version:       s.Player.BundleVersion,
		CompanyName:   s.Player.CompanyName,
		ProductName:   s.Player.ProductName,
		ApplicationID: s.Player.ApplicationIdentifier,
	}
}

func (r Record) values() map[string]string {
	return map[string]string{
		VersionFile:       r.Version,
		CompanyNameFile:   r.CompanyName,
		ProductNameFile:   r.ProductName,
		ApplicationIDFile: r.ApplicationID,
	}
}

// Export writes the metadata files into the directory containing outputPath
// and returns that directory.
func Export(outputPath string, rec Record) (string, error) {
	dir := filepath.Dir(outputPath)
	return dir, ExportDir(dir, rec)
}

// ExportDir writes the metadata files into dir, replacing existing ones.
// The first failed write stops the export.
func ExportDir(dir string, rec Record) error {
	log := logger.Logger()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("Failed to create metadata directory %s: %v", dir, err)
		return fmt.Errorf("creating metadata directory %s: %w", dir, err)
	}

	values := rec.values()
	for _, name := range Files {
		path := filepath.Join(dir, name)
		if err := file.WriteFileAtomic(path, []byte(values[name]), 0o644); err != nil {
			log.Errorf("Failed to write %s: %v", path, err)
			return err
		}
	}
	log.Infof("Exported build metadata (version %s) to %s", rec.Version, dir)
	return nil
}

// IsSetup reports whether every metadata file exists in dir.
func IsSetup(dir string) bool {
	for _, name := range Files {
		if !file.IsFile(filepath.Join(dir, name)) {
			return false
		}
	}
	return true
}

// Read loads a previously exported record from dir. Missing files read as empty.
func Read(dir string) Record {
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return ""
		}
		return string(data)
	}
	return Record{
		Version:       read(VersionFile),
		CompanyName:   read(CompanyNameFile),
		ProductName:   read(ProductNameFile),
		ApplicationID: read(ApplicationIDFile),
	}
}
