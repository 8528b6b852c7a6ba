/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

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
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rotblauer/sailtrack/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sailtrack",
	Short: "Find the tacks in a sailing track",
	Long: `sailtrack reads a track logged by a phone or GPS on a sailing boat,
corrects its clock against GPS time, and cuts it into tacks and tack series
for a given wind bearing.

Settings are read from flags, from SAILTRACK_* environment variables
and from $HOME/.sailtrack.yaml, in that order of precedence.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := params.DefaultAnalysisConfig()

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sailtrack.yaml)")
	pFlags.String("log-level", "info", "Log level: debug, info, warn, error")
	pFlags.String("log-format", "text", "Log format: text or json")

	pFlags.Bool("clean", true, "Drop replayed samples, invalid positions and GPS jumps")
	pFlags.Duration("max-clock-offset", defaults.TimeCorrection.MaxOffset,
		"Ignore GPS times further than this from the device clock")
	pFlags.Int("tack-extension", defaults.TackDetector.TackExtension,
		"Points trimmed from each end of a tack as maneuver")
	pFlags.Int("window-size", defaults.TackDetector.WindowSize,
		"Bearings compared before and after a candidate maneuver")
	pFlags.Float64("min-window-consistency", defaults.TackDetector.MinWindowConsistency,
		"Least bearing consistency (0..1) of a straight run")
	pFlags.Float64("min-consistency-drop", defaults.TackDetector.MinConsistencyDrop,
		"Least consistency drop across a maneuver")
	pFlags.Int("min-tacks", defaults.TackSeries.MinTacks,
		"Least close hauled tacks in a tack series")
	pFlags.Int("bins", defaults.TackSeries.NumberOfBearingBins,
		"Relative bearing histogram bins")

	if err := viper.BindPFlags(pFlags); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(params.ConfigFileName)
	}

	viper.SetEnvPrefix(params.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaultSlog configures the default logger from the log flags.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid log level, using info:", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch viper.GetString("log-format") {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("cmd", cmd.Name()))
}

// analysisConfig builds the analysis settings from flags, env and config file.
func analysisConfig() *params.AnalysisConfig {
	config := params.DefaultAnalysisConfig()
	config.TimeCorrection.MaxOffset = viper.GetDuration("max-clock-offset")
	config.TackDetector.TackExtension = viper.GetInt("tack-extension")
	config.TackDetector.WindowSize = viper.GetInt("window-size")
	config.TackDetector.MinWindowConsistency = viper.GetFloat64("min-window-consistency")
	config.TackDetector.MinConsistencyDrop = viper.GetFloat64("min-consistency-drop")
	config.TackSeries.MinTacks = viper.GetInt("min-tacks")
	config.TackSeries.NumberOfBearingBins = viper.GetInt("bins")
	return config
}
