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
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/daemon/webd"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/state"
	"github.com/rotblauer/sailtrack/trackz"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd [FILE]",
	Short: "Start the webserver",
	Long: `Serves the analysis of a track over HTTP and websocket.

The track is read from FILE, or from the session database given by --db.
With --db, the track and the last wind bearing are kept across restarts,
including points posted to /points.

Routes:

  GET  /analysis?wind=DEG   tacks, tack series and statistics
  GET  /tacks.geojson       tacks as GeoJSON line strings
  GET  /stats               sensor coverage
  GET  /timings             pipeline stage timings
  GET  /status              daemon status
  POST /points              append NDJSON points (token required when set)
  GET  /socket              websocket; send {"wind": DEG} to re-analyze
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		config := params.DefaultWebDaemonConfig()
		config.Network = viper.GetString("network")
		config.Address = viper.GetString("address")
		config.Token = viper.GetString("token")
		config.Analysis = analysisConfig()
		config.HistogramBins = config.Analysis.TackSeries.NumberOfBearingBins

		var session *state.Session
		if dbPath := viper.GetString("db"); dbPath != "" {
			var err error
			session, err = state.Open(dbPath, false)
			if err != nil {
				return err
			}
			defer session.Close()
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var points datapoint.DataPoints
		var err error
		comment := ""
		switch {
		case len(args) > 0 && args[0] != "":
			points, err = readTrack(ctx, args[0], viper.GetBool("clean"))
		case session != nil:
			points, err = session.ReadPoints()
			if errors.Is(err, state.ErrNoSession) {
				slog.Warn("Empty session, waiting for points", "db", viper.GetString("db"))
				err = nil
			}
			if err == nil {
				comment, err = session.ReadComment()
			}
		default:
			points, err = readTrack(ctx, trackz.Stdio, viper.GetBool("clean"))
		}
		if err != nil {
			return err
		}

		wind := optWind
		if !cmd.Flags().Changed("wind") && session != nil {
			if stored, ok, err := session.ReadWind(); err == nil && ok {
				wind = stored
			}
		}

		data := sail.NewData(points)
		data.Comment = comment
		server, err := webd.NewWebDaemon(config, data, wind)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		if session != nil {
			if err := server.Persist(session); err != nil {
				return err
			}
		}

		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var webdListenerFlags = pflag.NewFlagSet("webd.listen", pflag.ContinueOnError)

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	webdListenerFlags.String("network", defaults.Network, "Network to listen on: tcp, tcp4, tcp6 or unix")
	webdListenerFlags.String("address", defaults.Address, "Address to listen on")
	webdListenerFlags.String("token", "", `Token required to post points
Also read from SAILTRACK_TOKEN.`)
	if err := viper.BindPFlags(webdListenerFlags); err != nil {
		panic(err)
	}

	flags := webdCmd.Flags()
	flags.AddFlagSet(webdListenerFlags)
	flags.String("db", "", "Session database keeping the track and wind across restarts")
	flags.Float64Var(&optWind, "wind", 0, "Initial wind bearing in degrees, [0, 360)")
	if err := viper.BindPFlag("db", flags.Lookup("db")); err != nil {
		panic(err)
	}
}
