package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/sajan/nepal-office-tracker/internal/scrape"
)

func main() {
	_ = godotenv.Load()

	allDistricts := flag.Bool("all-districts", true, "generate a DAO record for every district")
	enhance := flag.Bool("enhance", true, "fetch office websites and merge live data")
	maxEnhance := flag.Int("max-enhance", 0, "cap on offices to enhance (0 = all)")
	delay := flag.Duration("delay", 2*time.Second, "pause between fetches")
	output := flag.String("output", "data", "output directory")
	discover := flag.Bool("discover", false, "also crawl the MOHA directory for unknown DAO sites")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := scrape.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load registry: %v", err)
	}

	fetcher := scrape.NewHTTPFetcher(0)
	pipeline := scrape.NewPipeline(reg, fetcher, scrape.PipelineConfig{
		AllDistricts: *allDistricts,
		Enhance:      *enhance,
		MaxEnhance:   *maxEnhance,
		Delay:        *delay,
		OutputDir:    *output,
	})

	result, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Scrape run failed: %v", err)
	}

	if *discover {
		discoverer := scrape.NewDiscoverer(reg.Districts, fetcher)
		found, err := discoverer.Discover(ctx)
		if err != nil {
			log.Printf("Discovery failed: %v", err)
		} else {
			log.Printf("Discovered %d candidate office sites", len(found))
			for _, d := range found {
				log.Printf("  %s (%s) %s", d.Name, d.Source, d.URL)
			}
		}
	}

	printSummary(result)
	fmt.Printf("Output written to %s\n", result.OutputPath)
}

func printSummary(result *scrape.RunResult) {
	report := result.Report
	if report == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Scrape Summary")
	t.AppendRow(table.Row{"Offices", report.Overview.TotalOffices})
	t.AppendRow(table.Row{"Services", report.Overview.TotalServices})
	t.AppendRow(table.Row{"Staff members", report.Overview.TotalStaffMembers})
	t.AppendRow(table.Row{"Avg completeness", fmt.Sprintf("%.1f%%", report.Overview.AverageCompleteness)})
	t.AppendRow(table.Row{"Phone coverage", fmt.Sprintf("%.1f%%", report.ContactCoverage.PhoneCoveragePercentage)})
	t.AppendRow(table.Row{"Website coverage", fmt.Sprintf("%.1f%%", report.ContactCoverage.WebsiteCoveragePercentage)})
	t.AppendRow(table.Row{"Enhanced", fmt.Sprintf("%d/%d", result.Enhanced, result.Attempted)})
	t.Render()

	if len(report.TopOfficesByCompleteness) == 0 {
		return
	}
	top := table.NewWriter()
	top.SetOutputMirror(os.Stdout)
	top.SetTitle("Most Complete Offices")
	top.AppendHeader(table.Row{"#", "Office", "Type", "Score", "Services", "Staff"})
	for i, o := range report.TopOfficesByCompleteness {
		top.AppendRow(table.Row{i + 1, o.Name, o.Type, fmt.Sprintf("%.1f", o.Completeness), o.ServicesCount, o.StaffCount})
	}
	top.Render()
}
