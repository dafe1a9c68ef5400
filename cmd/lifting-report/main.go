// Command lifting-report runs the NIOSH lifting analysis over a
// motion-capture export and writes a PDF report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/lifting.report/internal/config"
	"github.com/banshee-data/lifting.report/internal/db"
	"github.com/banshee-data/lifting.report/internal/fsutil"
	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/monitoring"
	"github.com/banshee-data/lifting.report/internal/report"
	"github.com/banshee-data/lifting.report/internal/timeutil"
	"github.com/banshee-data/lifting.report/internal/units"
	"github.com/banshee-data/lifting.report/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, v ...any) error {
	return usageError{fmt.Sprintf(format, v...)}
}

type options struct {
	filePath   string
	heightCM   int
	weightKG   int
	configPath string
	outDir     string
	logoPath   string
	html       bool
	dbPath     string
	units      string
	timezone   string
	heightFrom string
	verbose    bool
	version    bool
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("lifting-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.filePath, "filepath", "", "motion-capture export (.csv, .xlsx or .trc)")
	fs.IntVar(&o.heightCM, "height", 0, "individual height in cm")
	fs.IntVar(&o.weightKG, "weight", 0, "lifted weight in kg")
	fs.StringVar(&o.configPath, "config", "", "analysis config (.json, .yaml or .yml)")
	fs.StringVar(&o.outDir, "out", "", "output directory for reports")
	fs.StringVar(&o.logoPath, "logo", "", "logo image for the report header (png, jpg or gif)")
	fs.BoolVar(&o.html, "html", false, "also write an interactive HTML chart")
	fs.StringVar(&o.dbPath, "db", "", "record the run in this SQLite database")
	fs.StringVar(&o.units, "units", "", "weight display units ("+units.GetValidUnitsString()+")")
	fs.StringVar(&o.timezone, "tz", "", "timezone for the report timestamp (default local)")
	fs.StringVar(&o.heightFrom, "height-source", "", "height term for RWL: calibrated or subject")
	fs.BoolVar(&o.verbose, "verbose", false, "log per-frame interpretations")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lifting-report -filepath <file> -height <cm> -weight <kg> [flags]\n")
		fmt.Fprintf(stderr, "       lifting-report migrate <action> -db <path>\n")
		fmt.Fprintf(stderr, "       lifting-report history -db <path> [-n 20 | -run <id> | -delete <id>]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, usageError{err.Error()}
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.version {
		return o, nil
	}
	if fs.NArg() > 0 {
		return nil, usagef("unexpected arguments: %v", fs.Args())
	}
	if o.filePath == "" {
		return nil, usagef("-filepath is required")
	}
	if !o.set["height"] || !o.set["weight"] {
		return nil, usagef("-height and -weight are required")
	}
	if err := (lifting.Params{HeightCM: o.heightCM, WeightKG: o.weightKG}).Validate(); err != nil {
		return nil, usageError{err.Error()}
	}
	if o.units != "" && !units.IsValid(o.units) {
		return nil, usagef("invalid -units %q, must be one of: %s", o.units, units.GetValidUnitsString())
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "", log.LstdFlags)

	if len(args) > 0 {
		switch args[0] {
		case "migrate":
			return runMigrate(args[1:], stdout, stderr, logger)
		case "history":
			return runHistory(ctx, args[1:], stdout, stderr, logger)
		}
	}

	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	monitoring.SetLogger(logger.Printf)
	monitoring.SetVerbose(o.verbose)
	defer func() {
		monitoring.SetVerbose(false)
		monitoring.SetLogger(nil)
	}()

	cfg := config.EmptyAnalysisConfig()
	if o.configPath != "" {
		if cfg, err = config.LoadAnalysisConfig(o.configPath); err != nil {
			logger.Printf("%v", err)
			return exitUsage
		}
	}
	applyFlags(cfg, o)
	if err := cfg.Validate(); err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}

	res, err := analyze(ctx, cfg, o, logger)
	if err != nil {
		logger.Printf("analysis failed: %v", err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "report: %s\n", res.PDFPath)
	if res.HTMLPath != "" {
		fmt.Fprintf(stdout, "chart: %s\n", res.HTMLPath)
	}
	return exitOK
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *config.AnalysisConfig, o *options) {
	if o.set["out"] {
		cfg.OutputDir = &o.outDir
	}
	if o.set["logo"] {
		cfg.LogoPath = &o.logoPath
	}
	if o.set["html"] {
		cfg.HTMLChart = &o.html
	}
	if o.set["units"] {
		cfg.WeightUnits = &o.units
	}
	if o.set["tz"] {
		cfg.Timezone = &o.timezone
	}
	if o.set["height-source"] {
		cfg.HeightSource = &o.heightFrom
	}
}

func analyze(ctx context.Context, cfg *config.AnalysisConfig, o *options, logger *log.Logger) (*report.Result, error) {
	fsys := fsutil.OSFileSystem{}

	series, err := mocap.Load(fsys, o.filePath)
	if err != nil {
		return nil, err
	}
	fps := cfg.GetFramesPerSecond()
	if series.FrameRate > 0 && int(math.Round(series.FrameRate)) != fps {
		logger.Printf("warning: capture reports %.0f frames per second, report windows use %d", series.FrameRate, fps)
	}

	params := lifting.Params{HeightCM: o.heightCM, WeightKG: o.weightKG}
	a, err := lifting.Analyze(series, params, cfg.ToOptions())
	if err != nil {
		return nil, err
	}

	w := &report.Writer{
		FS:              fsys,
		Clock:           timeutil.RealClock{},
		OutDir:          cfg.GetOutputDir(),
		FramesPerSecond: fps,
		WeightUnits:     cfg.GetWeightUnits(),
		Timezone:        cfg.GetTimezone(),
		HTML:            cfg.GetHTMLChart(),
		Footer:          version.String(),
	}
	if logo := cfg.GetLogoPath(); logo != "" {
		if w.Logo, w.LogoType, err = report.LoadLogo(fsys, logo); err != nil {
			return nil, err
		}
	}

	res, err := w.Write(a)
	if err != nil {
		return nil, err
	}

	if o.dbPath != "" {
		if err := recordRun(ctx, o, cfg, a, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func recordRun(ctx context.Context, o *options, cfg *config.AnalysisConfig, a *lifting.Analysis, res *report.Result) error {
	store, err := db.NewDB(o.dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	run := &db.AnalysisRun{
		GeneratedAt:      res.GeneratedAt,
		SourcePath:       o.filePath,
		HeightCM:         a.Params.HeightCM,
		WeightKG:         a.Params.WeightKG,
		HeightSource:     string(cfg.GetHeightSource()),
		EquationHeight:   a.EquationHeight,
		CalibratedHeight: a.CalibratedHeight,
		TotalFrames:      len(a.Frames),
		OutOfLimitFrames: len(a.OutOfLimit),
		LookupErrors:     len(a.LookupErrors),
		ActionGaps:       len(a.ActionGaps),
		ReportPath:       res.PDFPath,
	}
	for _, s := range res.Summaries {
		if s.PeakLI > run.PeakLI {
			run.PeakLI = s.PeakLI
		}
	}
	seconds := make([]db.RunSecond, len(res.Rows))
	for i, r := range res.Rows {
		seconds[i] = db.RunSecond{
			Second:          r.Second,
			Action:          r.Action,
			ErrorFrames:     r.ErrorFrames,
			ErrorPercentage: r.ErrorPercentage,
		}
	}
	if err := store.RecordRun(ctx, run, seconds); err != nil {
		return err
	}
	monitoring.Logf("recorded run %s", run.RunID)
	return nil
}

func runMigrate(args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "path to sqlite db")
	if err := fs.Parse(reorder(args)); err != nil {
		return exitUsage
	}
	if *dbPath == "" {
		logger.Printf("-db is required")
		return exitUsage
	}
	if err := db.RunMigrateCommand(fs.Args(), *dbPath, stdout); err != nil {
		logger.Printf("%v", err)
		return exitFailure
	}
	return exitOK
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer, logger *log.Logger) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "path to sqlite db")
	limit := fs.Int("n", 20, "number of runs to list")
	tz := fs.String("tz", "", "timezone for timestamps")
	runID := fs.String("run", "", "print the stored report rows of this run")
	deleteID := fs.String("delete", "", "delete this run and its rows")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *dbPath == "" {
		logger.Printf("-db is required")
		return exitUsage
	}
	if *runID != "" && *deleteID != "" {
		logger.Printf("-run and -delete are mutually exclusive")
		return exitUsage
	}
	if _, err := units.ConvertTime(time.Now(), *tz); err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		logger.Printf("open history: %v", err)
		return exitFailure
	}
	defer store.Close()

	switch {
	case *deleteID != "":
		if err := store.DeleteRun(ctx, *deleteID); err != nil {
			logger.Printf("%v", err)
			return exitFailure
		}
		fmt.Fprintf(stdout, "deleted %s\n", *deleteID)
		return exitOK
	case *runID != "":
		return printRun(ctx, store, *runID, *tz, stdout, logger)
	}

	runs, err := store.ListRecentRuns(ctx, *limit)
	if err != nil {
		logger.Printf("%v", err)
		return exitFailure
	}
	for _, r := range runs {
		when, _ := units.ConvertTime(r.GeneratedAt, *tz)
		fmt.Fprintf(stdout, "%s  %s  %s  height %d cm  weight %d kg  %d/%d frames out of limits  peak LI %.3f\n",
			r.RunID, when.Format(timeutil.ReportHeaderLayout), r.SourcePath,
			r.HeightCM, r.WeightKG, r.OutOfLimitFrames, r.TotalFrames, r.PeakLI)
	}
	return exitOK
}

// printRun writes one run's header and its per-second rows in report order.
func printRun(ctx context.Context, store *db.DB, runID, tz string, stdout io.Writer, logger *log.Logger) int {
	r, err := store.GetRun(ctx, runID)
	if err != nil {
		logger.Printf("%v", err)
		return exitFailure
	}
	seconds, err := store.SecondsForRun(ctx, runID)
	if err != nil {
		logger.Printf("%v", err)
		return exitFailure
	}

	when, _ := units.ConvertTime(r.GeneratedAt, tz)
	fmt.Fprintf(stdout, "run %s\n", r.RunID)
	fmt.Fprintf(stdout, "generated  %s\n", when.Format(timeutil.ReportHeaderLayout))
	fmt.Fprintf(stdout, "source     %s\n", r.SourcePath)
	fmt.Fprintf(stdout, "report     %s\n", r.ReportPath)
	fmt.Fprintf(stdout, "height %d cm (%s, equation %.1f, calibrated %.1f)  weight %d kg\n",
		r.HeightCM, r.HeightSource, r.EquationHeight, r.CalibratedHeight, r.WeightKG)
	fmt.Fprintf(stdout, "%d/%d frames out of limits  peak LI %.3f  lookup errors %d  action gaps %d\n",
		r.OutOfLimitFrames, r.TotalFrames, r.PeakLI, r.LookupErrors, r.ActionGaps)
	for _, s := range seconds {
		fmt.Fprintf(stdout, "%6d  %-60s  %4d frames  %6.2f%%\n", s.Second, s.Action, s.ErrorFrames, s.ErrorPercentage)
	}
	return exitOK
}

// reorder moves flags ahead of positional arguments so "migrate up -db x"
// parses the same as "migrate -db x up".
func reorder(args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 1 && a[0] == '-' {
			flags = append(flags, a)
			if a == "-db" || a == "--db" {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}
