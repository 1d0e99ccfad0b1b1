package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"emberline/internal/api"
	"emberline/internal/app"
	"emberline/internal/config"
	"emberline/internal/logging"
)

// version is stamped by the build.
var version = "dev"

func main() {
	// Local overrides live in .env next to the binary; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "emberline",
		Short: "Emberline game engine",
	}

	var configPath string
	var debugAddr string
	var noDebug bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the engine and run until shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(configPath, debugAddr, noDebug)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the app config (default: platform config dir)")
	runCmd.Flags().StringVar(&debugAddr, "debug-addr", api.DefaultListenAddr, "debug server listen address")
	runCmd.Flags().BoolVar(&noDebug, "no-debug", false, "disable the debug server")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	var dumpPath string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Dump the committed app config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(dumpPath)
		},
	}
	configCmd.Flags().StringVar(&dumpPath, "config", "", "path to the app config")

	root.AddCommand(runCmd, versionCmd, configCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEngine(configPath, debugAddr string, noDebug bool) error {
	log := logging.For("main")
	log.Info("emberline starting", "version", version)

	a, err := app.New(app.Options{ConfigPath: configPath})
	if err != nil {
		return err
	}

	if !noDebug {
		api.StartDebugServer(debugAddr, api.RouterConfig{
			Engine: a,
			Config: a.Config,
			LogHub: api.NewLogHub(),
		})
	}

	a.StartApp()
	a.Run()
	log.Info("emberline exited")
	return nil
}

func dumpConfig(path string) error {
	if path == "" {
		return fmt.Errorf("--config is required")
	}
	store, err := config.Load(path)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(store.Snapshot())
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}
