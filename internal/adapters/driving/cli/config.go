package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deskref/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `View and edit the TOML configuration file.

Values are layered: built-in defaults, then the config file, then the env
file, then environment variables (CHUNK_SIZE, RAG_TOP_K, DOCS_PATH, ...),
then command-line flags.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List values stored in the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a value in the config file",
	Long: `Stores a value in the config file. The value is rejected if the
resulting configuration would be invalid, for example a chunk_overlap that
is not smaller than chunk_size.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in defaults as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfigDefaults,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configDefaultsCmd)
	rootCmd.AddCommand(configCmd)
}

func openConfigStore() (*file.ConfigStore, error) {
	if globalOpts.ConfigPath != "" {
		return file.NewConfigStoreAt(globalOpts.ConfigPath), nil
	}
	return file.NewConfigStore("")
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}
	values, err := store.Values()
	if err != nil {
		return err
	}
	keys, err := store.Keys()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		cmd.Printf("No values set in %s\n", store.Path())
		return nil
	}
	out := cmd.OutOrStdout()
	for _, k := range keys {
		fmt.Fprintf(out, "%s = %v\n", k, values[k])
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}
	values, err := store.Values()
	if err != nil {
		return err
	}
	v, ok := values[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s is not set in %s", domain.ErrNotFound, args[0], store.Path())
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}
	if err := store.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s in %s\n", args[0], store.Path())
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Path())
	return nil
}

func runConfigDefaults(cmd *cobra.Command, _ []string) error {
	data, err := toml.Marshal(domain.DefaultSettings())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
