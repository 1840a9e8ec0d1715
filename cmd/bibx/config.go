package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibextract/internal/config"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set global configuration values",
	Long: `Get or set values in the global config file (~/.config/bibx/config.yml).

Keys:
  library_path  Library directory used instead of the working directory
  style         Default citation style (APA 7, IEEE, ISO 690, MLA 9)
  workers       Parallel workers (0 = number of CPUs)
  log.level     debug, info, warn or error
  log.format    text or json

Environment variables (BIBX_LIBRARY_PATH, BIBX_STYLE, BIBX_WORKERS,
BIBX_LOG_LEVEL, BIBX_LOG_FORMAT) override the file.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show all values or a single value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the global config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the global config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	keys := config.GlobalKeys
	if len(args) == 1 {
		keys = []string{args[0]}
	}

	values := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := config.GetGlobalValue(globalCfg, k)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		values[k] = v
	}

	if humanOutput {
		for _, k := range keys {
			fmt.Printf("%-13s %s\n", k+":", values[k])
		}
		return nil
	}
	outputJSON(values)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])

	if err := config.SetGlobalValue(key, value); err != nil {
		exitWithError(ExitConfigError, "setting %s: %v", key, err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := config.GlobalConfigPath()
	if humanOutput {
		fmt.Println(path)
	} else {
		outputJSON(StatusResponse{Status: "ok", Path: path})
	}
	return nil
}
