// Command globalize inspects locale fallback chains and manages
// translation tables for the models declared in a manifest.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-globalize/cmd/globalize/internal/bootstrap"
)

var environmentBuilder = bootstrap.Build

type rootOptions struct {
	configFile   string
	manifestFile string
	env          *bootstrap.Environment
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "globalize",
		Short:         "Inspect locale chains and manage translation tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := bootstrap.NewViper(opts.configFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			env, err := environmentBuilder(bootstrap.Options{
				ManifestFile: opts.manifestFile,
				Viper:        v,
			})
			if err != nil {
				return err
			}
			opts.env = env
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.StringVar(&opts.manifestFile, "manifest", "", "model manifest (YAML)")
	flags.String("driver", "", "storage driver: sqlite3 or postgres")
	flags.String("dsn", "", "storage DSN")
	flags.Bool("debug", false, "log SQL queries")
	flags.String("default-locale", "", "default locale, last link of every chain")

	cmd.AddCommand(newChainCmd(opts))
	cmd.AddCommand(newSchemaCmd(opts))
	return cmd
}

// bindFlags lets explicitly set flags override file and env values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"driver":         "storage.driver",
		"dsn":            "storage.dsn",
		"debug":          "storage.debug",
		"default-locale": "default_locale",
	}
	for flag, key := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}
