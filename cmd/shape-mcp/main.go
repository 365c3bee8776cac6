package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/shape-tools-mcp/internal/analysis"
	"github.com/ironsheep/shape-tools-mcp/internal/config"
	"github.com/ironsheep/shape-tools-mcp/internal/logging"
	"github.com/ironsheep/shape-tools-mcp/internal/server"
	"github.com/ironsheep/shape-tools-mcp/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `
	shape-mcp - detect, classify and measure shapes in images

	Usage:
	  shape-mcp [serve] [--config file] [--set key=value ...]
	  shape-mcp analyze [options] image...
	  shape-mcp runs [--db file] [run-id]
	  shape-mcp version
	  shape-mcp help

	Commands:
	  serve      Run the MCP server on stdin/stdout (default)
	  analyze    Analyze image files and print a report
	  runs       List recorded analyze runs, or the records of one run
	  version    Print version information

	Analyze options:
	  --config file      YAML configuration file
	  --set key=value    Override one option (repeatable)
	  --workers n        Images analyzed in parallel (default: one per CPU)
	  --format f         Report format: table, csv or json (default table)
	  --out dir          Directory for annotated images (default: next to each image)
	  --no-images        Do not write annotated images
	  --db file          Record the run in this SQLite database

	Environment variables:
	  SHAPE_MCP_LOG_LEVEL=debug    Log level (debug, info, warn, error)
	  SHAPE_MCP_CONFIG=file        Configuration file when --config is not given
	  SHAPE_MCP_<OPTION>=value     Override any option, e.g. SHAPE_MCP_CIRCULARITY_FIRST=true

	The server communicates via MCP protocol over stdin/stdout.
	Configure it in your MCP client (e.g., Claude Desktop).
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := logging.SetupFromEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	server.Version = Version

	cmd := "serve"
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "--help", "-h":
			cmd, args = args[0], args[1:]
		default:
			if !strings.HasPrefix(args[0], "-") {
				cmd, args = args[0], args[1:]
			}
		}
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args, stderr)
	case "analyze":
		err = runAnalyze(args, stdout, stderr)
	case "runs":
		err = runRuns(args, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "shape-tools-mcp %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "help", "--help", "-h":
		fmt.Fprintln(stdout, strings.TrimSpace(dedent.Dedent(usage)))
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s\n", cmd, strings.TrimSpace(dedent.Dedent(usage)))
		return 2
	}

	var exit exitError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &exit):
		return int(exit)
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

// exitError ends the process with a status but no message.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// setFlags collects repeated --set key=value arguments.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("want key=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

// loadConfig layers the YAML file, env overrides and --set flags, then
// validates the result.
func loadConfig(path string, sets setFlags) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, kv := range sets {
		k, v, _ := strings.Cut(kv, "=")
		if err := cfg.Set(strings.TrimSpace(k), v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration file")
	var sets setFlags
	fs.Var(&sets, "set", "override one option (key=value)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath, sets)
	if err != nil {
		return err
	}

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("backend", cfg.Backend).
		Msg("shape-tools-mcp server starting")

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Run()
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration file")
	workers := fs.Int("workers", -1, "images analyzed in parallel")
	format := fs.String("format", "table", "report format: table, csv or json")
	outDir := fs.String("out", "", "directory for annotated images")
	noImages := fs.Bool("no-images", false, "do not write annotated images")
	dbPath := fs.String("db", "", "record the run in this SQLite database")
	var sets setFlags
	fs.Var(&sets, "set", "override one option (key=value)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("analyze: no image files given")
	}
	switch *format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("analyze: unknown format %q", *format)
	}

	cfg, err := loadConfig(*cfgPath, sets)
	if err != nil {
		return err
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	a, err := analysis.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := analysis.Batch(ctx, a, paths, cfg.Workers)
	if err != nil {
		return err
	}

	if !*noImages {
		written, err := analysis.SaveAnnotated(results, *outDir)
		if err != nil {
			return err
		}
		for _, p := range written {
			log.Debug().Str("path", p).Msg("wrote annotated image")
		}
	}

	switch *format {
	case "csv":
		err = analysis.WriteBatchCSV(stdout, results)
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(results)
	default:
		err = analysis.WriteBatchTable(stdout, results)
	}
	if err != nil {
		return err
	}

	if cfg.Database != "" {
		if err := recordRun(ctx, cfg, a.Backend(), results, stderr); err != nil {
			return err
		}
	}

	for _, fr := range results {
		if fr.Err != nil {
			return exitError(1)
		}
	}
	return nil
}

func recordRun(ctx context.Context, cfg *config.Config, backend string, results []analysis.FileResult, stderr io.Writer) error {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := store.NewRun(backend, cfg, results)
	if err != nil {
		return err
	}
	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "recorded run %s in %s\n", run.ID, cfg.Database)
	return nil
}

func runRuns(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "SQLite database of recorded runs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		*dbPath = cfg.Database
	}
	if *dbPath == "" {
		return errors.New("runs: no database given (use --db or the database option)")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if fs.NArg() > 0 {
		rows, err := db.Records(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "FILE\tOBJECT\tSHAPE\tAREA\tPERIMETER\tCIRCULARITY\tVERTICES")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f\t%.2f\t%.3f\t%d\n",
				r.Path, r.Object, r.Shape, r.Area, r.Perimeter, r.Circularity, r.Vertices)
		}
		return tw.Flush()
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "RUN\tSTARTED\tBACKEND\tFILES\tFAILED\tOBJECTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Backend, r.Files, r.Failed, r.Objects)
	}
	return tw.Flush()
}
