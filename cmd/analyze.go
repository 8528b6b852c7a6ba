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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/sailtrack/api"
	"github.com/rotblauer/sailtrack/geo/clean"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/stream"
	"github.com/rotblauer/sailtrack/trackz"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var optWind float64
var optGeoJSONOut string
var optPointsOut string
var optJSON bool
var optHistogram bool
var optComment string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Analyze a track for a wind bearing",
	Long: `Reads points from FILE, or stdin when FILE is - or missing,
and prints the tacks and tack series sailed against a wind from --wind degrees.

Points are newline-delimited JSON, either sailtrack data points or GeoJSON point
features as logged by cat tracker apps. Gzipped input is detected.

Examples:

  sailtrack analyze race3.ndjson.gz --wind 250
  zcat race3.ndjson.gz | sailtrack analyze --wind 250 --geojson tacks.geojson
  sailtrack analyze race3.ndjson.gz --wind 250 --json | jq '.tackSeries'
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		path := trackz.Stdio
		if len(args) > 0 {
			path = args[0]
		}
		ctx := context.Background()
		points, err := readTrack(ctx, path, viper.GetBool("clean"))
		if err != nil {
			return err
		}

		data := sail.NewData(points)
		data.Comment = optComment
		config := analysisConfig()
		analyzer := api.NewAnalyzer(config)
		if err := analyzer.Run(data, optWind); err != nil {
			return err
		}
		for stage, d := range analyzer.Timings() {
			slog.Debug("Stage timing", "stage", stage, "took", d)
		}

		if optGeoJSONOut != "" {
			if err := writeTacksGeoJSON(optGeoJSONOut, data); err != nil {
				return err
			}
		}
		if optPointsOut != "" {
			if err := writePoints(optPointsOut, data.AllPoints()); err != nil {
				return err
			}
		}

		bins := 0
		if optHistogram || optJSON {
			bins = config.TackSeries.NumberOfBearingBins
		}
		report := api.NewReport(data, optWind, bins)
		if optJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(os.Stdout, data, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.Float64Var(&optWind, "wind", 0, "Wind bearing in degrees, [0, 360), the direction the wind comes from")
	flags.StringVar(&optGeoJSONOut, "geojson", "", "Write the tacks as a GeoJSON FeatureCollection to this file (.gz to compress, - for stdout)")
	flags.StringVar(&optPointsOut, "points", "", "Write the corrected and analyzed points as NDJSON to this file (.gz to compress)")
	flags.BoolVar(&optJSON, "json", false, "Print the analysis as JSON")
	flags.BoolVar(&optHistogram, "histogram", false, "Print the relative bearing histogram")
	flags.StringVar(&optComment, "comment", "", "Comment stored with the analysis")
	_ = analyzeCmd.MarkFlagRequired("wind")
}

// readTrack reads all points from path, cleaning them if asked.
func readTrack(ctx context.Context, path string, cleanPoints bool) (datapoint.DataPoints, error) {
	r, err := trackz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	defer r.Close()

	points, errs := stream.ReadPoints(ctx, r)
	if cleanPoints {
		points = clean.Clean(ctx, params.DefaultCleanConfig, points)
	}
	all := stream.Collect(ctx, points)
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("read track %s: %w", path, err)
	}
	slog.Info("Read track", "path", path, "points", len(all), "gzip", r.Compressed())
	return all, nil
}

func writeTacksGeoJSON(path string, data *sail.Data) error {
	w, err := trackz.Create(path, nil)
	if err != nil {
		return err
	}
	b, err := api.TacksFeatureCollection(data).MarshalJSON()
	if err != nil {
		_ = w.Close()
		return err
	}
	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writePoints(path string, points datapoint.DataPoints) error {
	w, err := trackz.Create(path, nil)
	if err != nil {
		return err
	}
	if err := stream.WritePoints(w, points); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func printSpan(tw io.Writer, name string, s sail.Span) {
	if s.Count == 0 {
		fmt.Fprintf(tw, "%s\t0\t\t\t\n", name)
		return
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f Hz\n", name, humanize.Comma(int64(s.Count)),
		s.Start.Format(time.DateTime), s.Duration().Round(time.Second), s.Frequency)
}

func printReport(out io.Writer, data *sail.Data, report api.Report) {
	if report.Comment != "" {
		fmt.Fprintln(out, report.Comment)
	}
	fmt.Fprintf(out, "Wind from %v°\n\n", report.WindDegrees)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENSOR\tPOINTS\tSTART (UTC)\tDURATION\tRATE")
	printSpan(tw, "all", report.Stats.All)
	printSpan(tw, "location", report.Stats.Location)
	printSpan(tw, "magnetic", report.Stats.MagneticField)
	printSpan(tw, "acceleration", report.Stats.Acceleration)
	_ = tw.Flush()

	if cs := report.DeviceOrientation; cs != nil {
		fmt.Fprintf(out, "\nDevice orientation: front %v, right %v, down %v\n", cs.Front, cs.Right, cs.Down)
	} else {
		fmt.Fprintln(out, "\nDevice orientation: unresolved")
	}

	fmt.Fprintf(out, "\n%d tacks\n", len(data.TackList))
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPOINT OF SAIL\tSTART\tDURATION\tREL. BEARING\tKNOTS\tLENGTH")
	for i, t := range report.Tacks {
		rel, knots, length := "-", "-", "-"
		if t.RelativeBearingDegrees != nil {
			rel = fmt.Sprintf("%.0f°", *t.RelativeBearingDegrees)
		}
		if t.VelocityKnots != nil {
			knots = fmt.Sprintf("%.1f", *t.VelocityKnots)
		}
		if t.LengthMeters != nil {
			length = humanize.SIWithDigits(*t.LengthMeters, 1, "m")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i, t.PointOfSail,
			t.StartTime.Format(time.TimeOnly), time.Duration(t.DurationSeconds*float64(time.Second)).Round(time.Second),
			rel, knots, length)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%d tack series\n", len(data.TackSeriesList))
	for _, ts := range data.TackSeriesList {
		fmt.Fprintln(out, ts.String())
	}

	if len(report.Histogram) > 0 {
		fmt.Fprintln(out, "\nRelative bearing")
		width := 360 / float64(len(report.Histogram))
		for i, n := range report.Histogram {
			from := -180 + float64(i)*width
			fmt.Fprintf(out, "%5.0f° %6s %s\n", from, humanize.Comma(int64(n)), strings.Repeat("#", bar(n, report.Histogram)))
		}
	}
}

// bar scales n against the largest count to at most 50 characters.
func bar(n int, all []int) int {
	top := 0
	for _, v := range all {
		top = max(top, v)
	}
	if top == 0 {
		return 0
	}
	return n * 50 / top
}
