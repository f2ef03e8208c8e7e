package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/narora21/chrono-patient-uploader/internal/adapters/cli"
	"github.com/narora21/chrono-patient-uploader/internal/bootstrap"
	"github.com/narora21/chrono-patient-uploader/internal/config"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/pattern"
	"github.com/narora21/chrono-patient-uploader/internal/observability/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] DIRECTORY\n\n"+
				"Batch upload patient documents to DrChrono.\n\n"+
				"Pattern placeholders: {name} (LAST,FIRST[, M]), {last_name}, {first_name},\n"+
				"{middle_initial}, {tag}, {date} (MMDDYY), {dob} (MMDDYY), {description}.\n\n"+
				"Flags:\n",
			os.Args[0])
		flag.PrintDefaults()
	}

	dryRun := flag.Bool("dry-run", false, "parse and validate files without uploading or moving")
	destDir := flag.String("dest", "", "move successfully uploaded files to this directory")
	patternFlag := flag.String("pattern", "", "filename pattern (default "+pattern.DefaultTemplate+")")
	workers := flag.Int("num-workers", 0, "number of upload workers (default 1)")
	reportPath := flag.String("report-xlsx", "", "write an Excel report of the run to this path")
	settingsPath := flag.String("settings", "", "settings file (default <data dir>/settings.yaml)")
	metatagPath := flag.String("metatags", "", "tag map file (default <data dir>/metatag.json)")
	credsPath := flag.String("config", "", "credentials file (default <data dir>/config.json)")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewLogger("uploader", cfg.LogLevel, cfg.LogFormat)

	dataDir, err := config.DataDir()
	if err != nil {
		fatalf("resolve data directory: %v", err)
	}
	if *settingsPath == "" {
		*settingsPath = filepath.Join(dataDir, "settings.yaml")
	}
	if *metatagPath == "" {
		*metatagPath = filepath.Join(dataDir, "metatag.json")
	}
	if *credsPath == "" {
		*credsPath, err = config.DefaultCredentialsPath()
		if err != nil {
			fatalf("resolve credentials path: %v", err)
		}
	}

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fatalf("%v", err)
	}

	dir := flag.Arg(0)
	if dir == "" {
		dir = settings.SourceDir
	}
	if dir == "" {
		flag.Usage()
		os.Exit(2)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		fatalf("'%s' is not a directory", dir)
	}

	if *patternFlag == "" {
		*patternFlag = settings.Pattern
	}
	if *patternFlag == "" {
		*patternFlag = pattern.DefaultTemplate
	}
	if *destDir == "" {
		*destDir = settings.DestDir
	}
	if *workers <= 0 {
		*workers = settings.Workers
	}
	if *workers <= 0 {
		*workers = 1
	}

	fmt.Println("=== DrChrono Batch Document Uploader ===")
	fmt.Println()
	fmt.Printf("Using filename pattern: %s\n\n", *patternFlag)

	app, err := bootstrap.New(cfg, logger, bootstrap.Options{
		CredentialsPath: *credsPath,
		MetatagPath:     *metatagPath,
		Pattern:         *patternFlag,
		Workers:         *workers,
		DryRun:          *dryRun,
		DestDir:         *destDir,
		ReportPath:      *reportPath,
	})
	if err != nil {
		fatalf("%v", err)
	}
	defer app.Close()

	if *dryRun {
		fmt.Println("[DRY RUN] No files will be uploaded or moved.")
		fmt.Println()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.Runner.Run(ctx, dir)
	if err != nil {
		fatalf("%v", err)
	}
	cli.RenderReport(os.Stdout, report)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
