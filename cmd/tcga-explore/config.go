package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys is the settings schema: every key the tool understands,
// with a parser that validates and types the raw value from the
// command line.
var configKeys = map[string]struct {
	usage string
	parse func(value string) (any, error)
}{
	"project": {
		usage: "GDC project ID used by download and ingest (e.g. TCGA-LGG)",
		parse: func(value string) (any, error) {
			if value == "" {
				return nil, fmt.Errorf("project cannot be empty")
			}
			return value, nil
		},
	},
	"data_dir": {
		usage: "local directory for downloads and DuckDB stores",
		parse: func(value string) (any, error) {
			if value == "" {
				return nil, fmt.Errorf("data_dir cannot be empty")
			}
			return value, nil
		},
	},
	"workers": {
		usage: "annotation worker count (0 = number of CPUs)",
		parse: func(value string) (any, error) {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("workers must be an integer, got %q", value)
			}
			if n < 0 {
				return nil, fmt.Errorf("workers cannot be negative, got %d", n)
			}
			return n, nil
		},
	},
}

// knownKeys returns the schema keys in sorted order for error messages
// and the show listing.
func knownKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tcga-explore configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.tcga-explore.yaml.",
		Example: `  tcga-explore config                      # show effective config
  tcga-explore config set project TCGA-GBM # switch cohort
  tcga-explore config get data_dir         # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

// runConfigShow prints the effective value of every known key, so
// defaults show up alongside values set in the config file.
func runConfigShow() error {
	settings := make(map[string]any, len(configKeys))
	for _, key := range knownKeys() {
		settings[key] = viper.Get(key)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	schema, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)",
			key, strings.Join(knownKeys(), ", "))
	}

	typed, err := schema.parse(value)
	if err != nil {
		return err
	}
	viper.Set(key, typed)

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".tcga-explore.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, typed, cfgFile)
	return nil
}

// runConfigGet prints the effective value, falling back to the default
// when the key is not in the config file.
func runConfigGet(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)",
			key, strings.Join(knownKeys(), ", "))
	}
	fmt.Println(viper.Get(key))
	return nil
}
