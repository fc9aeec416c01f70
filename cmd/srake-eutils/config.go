package main

import (
	"fmt"
	"os"

	"github.com/nishad/srake-eutils/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage srake-eutils configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration: defaults overlaid with the config file.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long: `Create a default configuration file. If a config file already exists,
use --force to overwrite it.`,
	Example: `  srake-eutils config init
  srake-eutils config init --force`,
	RunE: runConfigInit,
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(cfg)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	printSuccess("Wrote default configuration to %s", path)
	return nil
}
