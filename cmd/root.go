package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/josean798/lansim/sim"
)

var (
	logLevel     string // Log verbosity level
	configFile   string // Running-config to load on startup (if it exists)
	indexFile    string // Snapshot index persistence file
	errLogSize   int    // Max retained error-log records
	scenarioFile string // Scenario yaml for replay
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "lansim",
	Short: "Discrete-time simulator for a small LAN of routing devices",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd starts the interactive console.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive device console",
	Run: func(cmd *cobra.Command, args []string) {
		errlog := sim.NewErrorLog(errLogSize)
		console := NewConsole(errlog, os.Stdout)

		if _, err := os.Stat(configFile); err == nil {
			if err := console.LoadConfig(configFile); err != nil {
				logrus.Warnf("could not load %s: %v", configFile, err)
			}
		}
		if err := sim.LoadSnapshotIndex(console.Index, indexFile); err != nil {
			logrus.Warnf("could not load snapshot index: %v", err)
		}

		console.Run(os.Stdin)

		if err := sim.SaveNetworkConfig(console.Network, configFile); err != nil {
			logrus.Warnf("could not save %s: %v", configFile, err)
		}
		if err := sim.SaveSnapshotIndex(console.Index, indexFile); err != nil {
			logrus.Warnf("could not save snapshot index: %v", err)
		}
	},
}

// replayCmd runs a scripted scenario end to end and prints statistics.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scenario file and print network statistics",
	Run: func(cmd *cobra.Command, args []string) {
		if scenarioFile == "" {
			logrus.Fatalf("No scenario file provided. Use --scenario.")
		}
		sc, err := sim.LoadScenario(scenarioFile)
		if err != nil {
			logrus.Fatalf("load scenario: %v", err)
		}
		errlog := sim.NewErrorLog(errLogSize)
		nw, err := sc.Build(errlog)
		if err != nil {
			logrus.Fatalf("build scenario: %v", err)
		}
		if err := sc.Run(nw); err != nil {
			logrus.Fatalf("run scenario: %v", err)
		}
		nw.Stats.Report().Print()
	},
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&configFile, "config", "running-config.json", "Running-config file loaded on start and saved on exit")
	runCmd.Flags().StringVar(&indexFile, "index", "snapshot-index.json", "Snapshot index file")
	runCmd.Flags().IntVar(&errLogSize, "error-log-size", sim.DefaultErrorLogCapacity, "Max retained error-log records")

	replayCmd.Flags().StringVar(&scenarioFile, "scenario", "", "Scenario yaml file")
	replayCmd.Flags().IntVar(&errLogSize, "error-log-size", sim.DefaultErrorLogCapacity, "Max retained error-log records")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
}
