package cli

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotring/pkg/config"
	"github.com/matzehuels/dotring/pkg/errors"
)

// configCommand groups configuration file helpers.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

// resolvedConfigPath returns --config, or the default file path.
func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printKeyValue(w, "Path", path)
			if _, err := os.Stat(path); err != nil {
				printDetail(w, "file does not exist, defaults apply")
			}
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				printWarning(w, "%s already exists", path)
				printNextStep(w, "Overwrite it with", appName+" config init --force")
				return nil
			}

			var buf bytes.Buffer
			if err := config.Default().Encode(&buf); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "encode defaults")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(path))
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
			}
			printSuccess(w, "Wrote default configuration (%d bytes)", buf.Len())
			printFile(w, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
