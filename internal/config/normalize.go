package config

import (
	"fmt"
	"strings"
)

// Normalize trims and lowercases enumerated values, expands paths, restores
// defaults for blank fields, and applies implied options. It is idempotent.
func (c *Config) Normalize() error {
	c.normalizeSort()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeSelfTest()
}

func (c *Config) normalizeSort() {
	c.Sort.DefaultPattern = strings.TrimSpace(c.Sort.DefaultPattern)
	if c.Sort.DefaultPattern == "" {
		c.Sort.DefaultPattern = Default().Sort.DefaultPattern
	}
	c.Sort.Action = Action(strings.ToLower(strings.TrimSpace(string(c.Sort.Action))))
	if c.Sort.Action == "" {
		c.Sort.Action = ActionCopy
	}
	if c.Sort.ForceDelete {
		c.Sort.DeleteSource = true
	}
}

func (c *Config) normalizeArchive() error {
	var err error
	if c.Archive.Path, err = expandPath(strings.TrimSpace(c.Archive.Path)); err != nil {
		return fmt.Errorf("archive.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSelfTest() error {
	defaults := Default().SelfTest
	c.SelfTest.DataURL = strings.TrimSpace(c.SelfTest.DataURL)
	if c.SelfTest.DataURL == "" {
		c.SelfTest.DataURL = defaults.DataURL
	}
	c.SelfTest.Pattern = strings.TrimSpace(c.SelfTest.Pattern)
	if c.SelfTest.Pattern == "" {
		c.SelfTest.Pattern = defaults.Pattern
	}
	if strings.TrimSpace(c.SelfTest.WorkDir) == "" {
		c.SelfTest.WorkDir = defaults.WorkDir
	}
	var err error
	if c.SelfTest.WorkDir, err = expandPath(strings.TrimSpace(c.SelfTest.WorkDir)); err != nil {
		return fmt.Errorf("self_test.work_dir: %w", err)
	}
	return nil
}
