package config

import (
	"fmt"

	"dicomsort/internal/pattern"
	"dicomsort/internal/services"
)

// Validate ensures the configuration is usable. Every returned error is
// marked with services.ErrConfiguration or services.ErrInvalidPattern.
func (c *Config) Validate() error {
	if err := c.validateSort(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateSelfTest()
}

// ValidateSource applies the checks that depend on how sources are supplied.
// Reading the source list from standard input leaves no terminal for the
// deletion prompt, so delete_source requires force_delete in that case.
func (c *Config) ValidateSource(fromStdin bool) error {
	if fromStdin && c.Sort.DeleteSource && !c.Sort.ForceDelete {
		return configError("sort.delete_source",
			"source deletion with a source list on stdin requires force_delete",
			"pass --force or drop --delete")
	}
	return nil
}

func (c *Config) validateSort() error {
	switch c.Sort.Action {
	case ActionCopy, ActionSymlink, ActionMove:
	default:
		return configError("sort.action",
			fmt.Sprintf("unsupported value %q", c.Sort.Action),
			"use one of copy, symlink, move")
	}
	if c.Sort.Action == ActionSymlink {
		if c.Sort.Compress {
			return configError("sort.compress", "an archive cannot hold symbolic links", "drop --symlink or --compress")
		}
		if c.Sort.DeleteSource {
			return configError("sort.delete_source", "deleting sources would leave dangling symbolic links", "drop --symlink or --delete")
		}
	}
	if c.Sort.Action == ActionMove && c.Sort.Compress && !c.Archive.KeepLoose {
		return configError("sort.action", "move without loose output would discard sources before the archive is finalized", "add --keep-loose, or use --delete with --compress instead")
	}
	if _, err := pattern.Compile(c.Sort.DefaultPattern); err != nil {
		return services.WithHint(err, "fix sort.default_pattern in the config file")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return configError("logging.format", fmt.Sprintf("unsupported value %q", c.Logging.Format), "use console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return configError("logging.level", fmt.Sprintf("unsupported value %q", c.Logging.Level), "use debug, info, warn, or error")
	}
	return nil
}

func (c *Config) validateSelfTest() error {
	if _, err := pattern.Compile(c.SelfTest.Pattern); err != nil {
		return services.WithHint(err, "fix self_test.pattern in the config file")
	}
	return nil
}

func configError(field, message, hint string) error {
	return services.WithHint(services.Wrap(services.ErrConfiguration, "config", field, message, nil), hint)
}
