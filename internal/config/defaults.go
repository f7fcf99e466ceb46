package config

import (
	"os"
	"path/filepath"

	"dicomsort/internal/pattern"
)

const (
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultSelfTestURL    = "https://s3.amazonaws.com/ec2.isomics.com/dicomsort-testdata.zip"
	defaultSelfTestLayout = "%PatientName/%StudyDescription-%StudyDate/%SeriesDescription-%SeriesNumber-%InstanceNumber.dcm"
	defaultConfigRelPath  = "~/.config/dicomsort/config.toml"
	projectConfigName     = "dicomsort.toml"
	// ArchiveExtension is appended to the target root when no archive path is configured.
	ArchiveExtension = ".zip"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sort: Sort{
			DefaultPattern: pattern.DefaultPattern,
			Action:         ActionCopy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		SelfTest: SelfTest{
			DataURL: defaultSelfTestURL,
			Pattern: defaultSelfTestLayout,
			WorkDir: defaultSelfTestDir(),
		},
	}
}

func defaultSelfTestDir() string {
	return filepath.Join(os.TempDir(), "dicomsort-selftest")
}
