package cli

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/syspulse/syspulse/internal/config"
	"github.com/syspulse/syspulse/internal/errors"
)

func configShowCommand(w io.Writer) error {
	cfg, path, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	return writeConfig(w, cfg, path)
}

// writeConfig prints cfg as YAML with a comment naming where it came from.
func writeConfig(w io.Writer, cfg *config.Config, path string) error {
	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is a bug, please report it")
	}

	if _, err := fmt.Fprintf(w, "# source: %s\n%s", source, data); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Failed to write config",
			"Check that stdout is writable")
	}
	return nil
}
