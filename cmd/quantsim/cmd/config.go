package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/quantsim/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or write the default configuration",
	RunE:  runConfig,
}

var configOut string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configOut, "out", "o", "", "write default config to this file instead of stdout")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if configOut != "" {
		if err := cfg.SaveToFile(configOut); err != nil {
			return err
		}
		fmt.Println("wrote", configOut)
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
