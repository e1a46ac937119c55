package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

type stubFetcher struct {
	calls int
	body  string
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*FetchedDocument, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &FetchedDocument{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html",
		Body:        []byte(s.body),
		FetchedAt:   time.Now(),
	}, nil
}

func pipelineRegistry(templates ...OfficeTemplate) *Registry {
	return &Registry{
		Offices: templates,
		Services: map[string]ServiceDefinition{
			"citizenship_certificate": {
				NameEN:         "Citizenship Certificate",
				NameNP:         "नागरिकता प्रमाणपत्र",
				Fees:           map[string]float64{"normal": 100, "urgent": 500},
				ProcessingDays: map[string]string{"normal": "15-20", "urgent": "3-5"},
			},
		},
		ServiceAliases: map[string]string{"citizenship": "citizenship_certificate"},
	}
}

func pipelineConfig(t *testing.T) PipelineConfig {
	t.Helper()
	return PipelineConfig{
		OutputDir: t.TempDir(),
		Delay:     time.Millisecond,
	}
}

func TestPipelineRunWritesDocument(t *testing.T) {
	reg := pipelineRegistry(kathmanduTemplate())
	p := NewPipeline(reg, &stubFetcher{}, pipelineConfig(t))

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Offices) != 1 {
		t.Fatalf("expected 1 office, got %d", len(result.Offices))
	}
	if result.Report == nil {
		t.Fatal("expected report")
	}

	base := filepath.Base(result.OutputPath)
	if !strings.HasPrefix(base, "comprehensive_nepal_offices_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("unexpected output file name: %s", base)
	}

	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var doc models.OutputDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if doc.Metadata.ScraperType != "comprehensive_factory_generated" {
		t.Errorf("scraper type: %s", doc.Metadata.ScraperType)
	}
	if doc.Metadata.DataQuality != "comprehensive_with_live_enhancement" {
		t.Errorf("data quality: %s", doc.Metadata.DataQuality)
	}
	if doc.Metadata.CoverageScope != "national_government_offices" {
		t.Errorf("coverage scope: %s", doc.Metadata.CoverageScope)
	}
	if doc.Metadata.TotalOffices != 1 {
		t.Errorf("total offices: %d", doc.Metadata.TotalOffices)
	}
	if len(doc.DataSources) != 7 {
		t.Errorf("expected 7 data sources, got %d", len(doc.DataSources))
	}
	if doc.AnalysisReport == nil || len(doc.Offices) != 1 {
		t.Error("expected report and offices in document")
	}
}

func TestPipelineRunEnhances(t *testing.T) {
	tpl := kathmanduTemplate()
	tpl.Phones = nil
	reg := pipelineRegistry(tpl)

	fetcher := &stubFetcher{body: "<html><body>Phone: 01-5970330. Hours: 10:00 AM - 5:00 PM</body></html>"}
	cfg := pipelineConfig(t)
	cfg.Enhance = true
	p := NewPipeline(reg, fetcher, cfg)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted != 1 || result.Enhanced != 1 {
		t.Errorf("attempted/enhanced: %d/%d", result.Attempted, result.Enhanced)
	}
	if result.Offices[0].Contact.PhoneGeneral != "015970330" {
		t.Errorf("phone not merged: %s", result.Offices[0].Contact.PhoneGeneral)
	}
	if result.Offices[0].Metadata.DataQuality != "factory_generated_enhanced_with_live" {
		t.Errorf("data quality not upgraded: %s", result.Offices[0].Metadata.DataQuality)
	}
}

func TestPipelineRunFetchFailureContinues(t *testing.T) {
	reg := pipelineRegistry(kathmanduTemplate())
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	cfg := pipelineConfig(t)
	cfg.Enhance = true
	p := NewPipeline(reg, fetcher, cfg)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted != 1 || result.Enhanced != 0 {
		t.Errorf("attempted/enhanced: %d/%d", result.Attempted, result.Enhanced)
	}
	if result.OutputPath == "" {
		t.Error("expected output written despite fetch failure")
	}
}

func TestPipelineRunMaxEnhance(t *testing.T) {
	first := kathmanduTemplate()
	second := kathmanduTemplate()
	second.Name = "District Administration Office, Lalitpur"
	second.District = "Lalitpur"
	second.URL = "https://daolalitpur.moha.gov.np"

	reg := pipelineRegistry(first, second)
	fetcher := &stubFetcher{body: "<html><body>nothing useful</body></html>"}
	cfg := pipelineConfig(t)
	cfg.Enhance = true
	cfg.MaxEnhance = 1
	p := NewPipeline(reg, fetcher, cfg)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempted)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}
}

func TestPipelineRunCancelledContextStillWrites(t *testing.T) {
	reg := pipelineRegistry(kathmanduTemplate())
	fetcher := &stubFetcher{}
	cfg := pipelineConfig(t)
	cfg.Enhance = true
	p := NewPipeline(reg, fetcher, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted != 0 {
		t.Errorf("expected no enrichment attempts, got %d", result.Attempted)
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no fetches, got %d", fetcher.calls)
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestPipelineAllDistrictsFillsGaps(t *testing.T) {
	reg := pipelineRegistry(kathmanduTemplate())
	reg.Districts = []DistrictInfo{
		{Name: "Kathmandu", Province: "Bagmati Province"},
		{Name: "Kaski", Province: "Gandaki Province"},
	}
	cfg := pipelineConfig(t)
	cfg.AllDistricts = true
	p := NewPipeline(reg, &stubFetcher{}, cfg)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Offices) != 2 {
		t.Fatalf("expected 2 offices, got %d", len(result.Offices))
	}
	seen := map[string]bool{}
	for _, o := range result.Offices {
		seen[o.Location.District] = true
	}
	if !seen["Kathmandu"] || !seen["Kaski"] {
		t.Errorf("expected one office per district, got %v", seen)
	}
}
