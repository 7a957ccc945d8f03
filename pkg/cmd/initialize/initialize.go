/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package initialize

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/config"
	"github.com/Paintersrp/linkrank/internal/state"
)

func NewCmdInit(l *state.Loader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "initialize",
		Aliases: []string{"i", "init"},
		Short:   "Write a default linkrank configuration file.",
		Long:    "This command writes the default configuration to $HOME/.linkrank/cfg.yaml, or to the --config path when given.",
		Example: "linkrank init",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := writeConfig(l, force)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s (use --force to overwrite)\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file.")

	return cmd
}

func writeConfig(l *state.Loader, force bool) (string, bool, error) {
	if l.ConfigPath == "" {
		home, err := state.GetHomeDir()
		if err != nil {
			return "", false, err
		}
		if !force {
			return config.EnsureConfigExists(home)
		}
		l.ConfigPath = config.GetConfigPath(home)
	}

	if !force {
		if _, err := os.Stat(l.ConfigPath); err == nil {
			return l.ConfigPath, false, nil
		}
	}

	if err := config.Save(l.ConfigPath, config.Default()); err != nil {
		return "", false, err
	}
	return l.ConfigPath, true, nil
}
