// Package cmd implements the relay CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/initializ/copilot-relay/config"
	"github.com/initializ/copilot-relay/internal/tui"
	"github.com/initializ/copilot-relay/runtime"
	"github.com/initializ/copilot-relay/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile       string
	envFile       string
	verbose       bool
	themeOverride string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "relay — stream replies from Copilot Studio bots",
	Long:  "relay talks to Copilot Studio bots over the Direct Line API and streams their replies as incremental generation output.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "endpoints.yaml", "endpoints config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to .env file, relative to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "color theme: dark, light, or auto")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(endpointsCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("relay %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEndpoints resolves the config path, loads the .env file next to it
// and returns the parsed endpoints config.
func loadEndpoints() (*types.EndpointsConfig, error) {
	cfgPath := cfgFile
	if !filepath.IsAbs(cfgPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		cfgPath = filepath.Join(wd, cfgPath)
	}

	envPath := envFile
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(filepath.Dir(cfgPath), envPath)
	}
	fileVars, err := runtime.LoadEnvFile(envPath)
	if err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg, err := config.LoadEndpointsConfig(cfgPath, runtime.Environ(fileVars))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// stylesFor returns themed styles when w is a terminal and plain ones
// otherwise.
func stylesFor(w io.Writer) *tui.StyleSet {
	if isTerminal(w) {
		return tui.NewStyleSet(tui.DetectTheme(themeOverride))
	}
	return tui.PlainStyleSet()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
