package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencer-p/tidepredict/pkg/logging"
	"github.com/spencer-p/tidepredict/pkg/secondary"
	"github.com/spencer-p/tidepredict/pkg/tide"
)

const (
	envPrefix = "TIDE"
	// Four days, as the legacy driver defaulted to.
	defaultHours = 4 * 24
)

// cli holds the state shared by the subcommands.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "tide",
		Short: "Predict tides from harmonic constituents",
		Long: `Predicts water levels at primary stations from their harmonic
constituents, and at secondary stations from the adjustments to their
reference station.

Dataset paths and logging may also be set in a YAML config file or in
TIDE_* environment variables, e.g. TIDE_YEARLY=/data/ft03.dta.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.tide.yaml)")
	pf.String("yearly", "ft03.dta", "yearly node factor dataset")
	pf.String("stations", "ft07.dta", "primary station constituent dataset")
	pf.String("secondaries", "ft08.dta", "secondary station adjustment dataset")
	pf.String("log-level", "warn", "log level")
	pf.Bool("log-json", false, "log JSON instead of text")
	pf.String("strategy", secondary.Incremental.String(), "secondary series strategy, incremental or pointwise")
	for _, name := range []string{"yearly", "stations", "secondaries", "log-level", "log-json", "strategy"} {
		// Only fails for a missing flag.
		cobra.CheckErr(c.v.BindPFlag(name, pf.Lookup(name)))
	}

	root.AddCommand(
		c.predictCmd(tide.Hourly, "Print a series of hourly (or sub-hourly) heights"),
		c.predictCmd(tide.Single, "Print the height at exactly the start time"),
		c.predictCmd(tide.MLLW, "Print the station's mean lower low water datum"),
	)
	return root
}

// initConfig reads in config file and ENV variables if set.
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		c.v.AddConfigPath(home)
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".tide")
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		// A missing default config is fine; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (c *cli) engine() (*tide.Engine, error) {
	log, err := logging.New(c.v.GetString("log-level"), c.v.GetBool("log-json"))
	if err != nil {
		return nil, err
	}
	var strategy secondary.Strategy
	switch s := c.v.GetString("strategy"); s {
	case secondary.Incremental.String():
		strategy = secondary.Incremental
	case secondary.Pointwise.String():
		strategy = secondary.Pointwise
	default:
		return nil, fmt.Errorf("unknown strategy %q", s)
	}
	paths := tide.Paths{
		Yearly:    c.v.GetString("yearly"),
		Station:   c.v.GetString("stations"),
		Secondary: c.v.GetString("secondaries"),
	}
	return tide.NewEngine(paths, tide.WithLogger(log), tide.WithStrategy(strategy)), nil
}

func (c *cli) predictCmd(mode tide.Mode, short string) *cobra.Command {
	var (
		req    = tide.Request{Mode: mode}
		start  string
		format string
	)
	cmd := &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Start, err = time.Parse(time.RFC3339, start); err != nil {
				return fmt.Errorf("--start must be RFC 3339 with a UTC offset: %w", err)
			}
			e, err := c.engine()
			if err != nil {
				return err
			}
			res, err := e.Predict(req)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), format, req, res)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&req.Station, "station", "s", 0, "station id")
	f.StringVar(&start, "start", "", "local standard start time, RFC 3339 with offset")
	f.BoolVar(&req.Secondary, "secondary", false, "station is a secondary station")
	f.BoolVar(&req.AddMLLW, "mllw", false, "report heights above mean lower low water")
	f.BoolVar(&req.Seasonal, "seasonal", true, "include the annual and semi-annual terms")
	f.Float64Var(&req.Baseline, "baseline", 0, "initial water level")
	f.StringVarP(&format, "output", "o", "text", "text or json")
	cobra.CheckErr(cmd.MarkFlagRequired("station"))
	cobra.CheckErr(cmd.MarkFlagRequired("start"))
	if mode == tide.Hourly {
		f.IntVarP(&req.Hours, "hours", "n", defaultHours, "number of samples")
		f.Float64Var(&req.Step, "step", 1, "hours between samples; under 1 only for at most a day")
	}
	return cmd
}

func printResult(w io.Writer, format string, req tide.Request, res tide.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		if req.Mode == tide.MLLW {
			return enc.Encode(map[string]float64{"datum": res.Datum})
		}
		return enc.Encode(res.Predictions)
	case "text":
		if req.Mode == tide.MLLW {
			_, err := fmt.Fprintf(w, "%.3f\n", res.Datum)
			return err
		}
		for _, p := range res.Predictions {
			if _, err := fmt.Fprintln(w, p.String()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output %q", format)
	}
}
