package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"sales-segmentation/internal/api"
	"sales-segmentation/internal/config"
	"sales-segmentation/internal/domain"
	"sales-segmentation/internal/gateway"
	"sales-segmentation/internal/usecase"
	"sales-segmentation/internal/writer"
)

func main() {
	now := time.Now().UTC()

	// Define command-line flags
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	year := flag.Int("year", now.Year(), "Calendar year to segment")
	from := flag.Int("from", 1, "First month of the period (1-12)")
	to := flag.Int("to", 12, "Last month of the period (1-12)")
	asOfStr := flag.String("as-of", "", "Reference date for recency (YYYY-MM-DD), defaults to the period end or today")
	channel := flag.String("channel", "", "Only output one view: all, digital, national or other")
	outputDir := flag.String("output", "", "Directory to write the report to, stdout if empty")
	format := flag.String("format", "json", "Output format when writing to a directory: json or csv")
	serve := flag.Bool("serve", false, "Serve the HTTP API instead of running once")
	batch := flag.Bool("batch", false, "Build one report per month of -year")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *format != "json" && *format != "csv" {
		fmt.Println("Error: -format must be json or csv.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	opts, err := cfg.Options(*verbose)
	if err != nil {
		log.Fatalf("Error building scoring options: %v", err)
	}

	// --- Dependency Injection (Wiring the application) ---
	ctx := context.Background()

	// 1. Historical sales: the warehouse when a DSN is set, otherwise an export file
	var archive usecase.TransactionSource
	switch {
	case cfg.Archive.DSN != "":
		db, driver, err := gateway.Open(cfg.Archive.DSN)
		if err != nil {
			log.Fatalf("Error opening archive: %v", err)
		}
		defer db.Close()
		if err := gateway.Ping(ctx, db); err != nil {
			log.Fatalf("Error connecting to archive: %v", err)
		}
		archive = gateway.NewSQLArchiveSource(db, driver, gateway.ArchiveOptions{
			Table:    cfg.Archive.Table,
			Tables:   cfg.Archive.Tables,
			PageSize: cfg.Archive.PageSize,
			Verbose:  *verbose,
		})
		if *verbose {
			log.Printf("[INFO] archive source: %s table %s", driver, cfg.Archive.Table)
		}
	case cfg.Archive.CSVPath != "":
		archive = gateway.NewCSVTransactionSource(cfg.Archive.CSVPath, domain.SourceArchive)
	}

	// 2. Current sales: the ERP, which also answers channel lookups
	var live usecase.TransactionSource
	var lookup usecase.ChannelLookup
	switch {
	case cfg.Odoo.URL != "":
		odoo := gateway.NewOdooSource(gateway.OdooOptions{
			URL:       cfg.Odoo.URL,
			DB:        cfg.Odoo.DB,
			User:      cfg.Odoo.User,
			Password:  cfg.Odoo.Password,
			BatchSize: cfg.Odoo.BatchSize,
			Timeout:   cfg.Odoo.Timeout,
			Verbose:   *verbose,
		})
		live, lookup = odoo, odoo
	case cfg.Odoo.CSVPath != "":
		export := gateway.NewCSVTransactionSource(cfg.Odoo.CSVPath, domain.SourceLive)
		live, lookup = export, export
	}

	// 3. The segmentation engine
	segmentation := usecase.NewSegmentationUseCase(archive, live, lookup, opts)

	// --- Execute ---
	if *serve {
		app := api.NewApp(api.NewHandler(segmentation, cfg.Server.CacheTTL))
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
		return
	}

	var view domain.View
	if *channel != "" {
		view, err = domain.ParseView(*channel)
		if err != nil {
			log.Fatalf("Error parsing channel: %v", err)
		}
	}

	if *batch {
		if *outputDir == "" {
			log.Fatal("Error: -batch needs -output.")
		}
		bar := progressbar.Default(int64(len(usecase.MonthsToBuild(*year, now))))
		reports, err := segmentation.BuildMonthly(ctx, *year, now, func() { _ = bar.Add(1) })
		if err != nil {
			log.Fatalf("Batch segmentation failed: %v", err)
		}
		for _, r := range reports {
			name := fmt.Sprintf("segmentation_%d_%02d", *year, r.Month)
			if err := export(r.Report, view, *outputDir, name, *format, now); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}
		}
		log.Printf("[INFO] wrote %d monthly reports to %s", len(reports), *outputDir)
		return
	}

	months := domain.MonthRange{From: time.Month(*from), To: time.Month(*to)}
	if err := months.Validate(); err != nil {
		log.Fatalf("Error: %v", err)
	}
	asOf, err := resolveAsOf(*asOfStr, *year, months, now)
	if err != nil {
		log.Fatalf("Error parsing as-of date: %v", err)
	}

	report, err := segmentation.BuildSegmentation(ctx, *year, months, asOf)
	if err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}

	// --- Present the Output ---
	if *outputDir == "" {
		if view != "" {
			report = usecase.FilterByChannel(report, view)
		}
		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to generate JSON report: %v", err)
		}
		fmt.Println(string(output))
		return
	}

	name := fmt.Sprintf("segmentation_%d_%02d-%02d", *year, months.From, months.To)
	if err := export(report, view, *outputDir, name, *format, now); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

// resolveAsOf parses s, or falls back to the period end capped at today.
func resolveAsOf(s string, year int, months domain.MonthRange, now time.Time) (time.Time, error) {
	if s != "" {
		return time.Parse(time.DateOnly, s)
	}
	_, end := months.Bounds(year)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today.Before(end) {
		return today, nil
	}
	return end, nil
}

func export(report *domain.SegmentationReport, view domain.View, dir, name, format string, now time.Time) error {
	if view != "" {
		report = usecase.FilterByChannel(report, view)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}

	path := writer.TimestampedFilename(dir, name, format, now)
	if format == "csv" {
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.WriteToFile(path, report); err != nil {
			return err
		}
	} else if err := writer.ExportJSON(path, report); err != nil {
		return err
	}
	log.Printf("[INFO] report written to %s", path)
	return nil
}
