package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sajan/nepal-office-tracker/internal/models"
)

// dataSources lists the ministries and departments the static templates and
// enrichment targets originate from.
var dataSources = []string{
	"Ministry of Home Affairs (MOHA)",
	"Department of Passport",
	"Department of Transport Management",
	"Survey Department",
	"Land Revenue Offices",
	"Transport Management Offices",
	"Company Registrar Office",
}

// PipelineConfig controls a scrape run.
type PipelineConfig struct {
	// AllDistricts adds a generated DAO for every district without a
	// dedicated template.
	AllDistricts bool
	// Enhance fetches each office's website and merges what it finds.
	Enhance bool
	// MaxEnhance caps how many offices are fetched. Zero means all.
	MaxEnhance int
	// Delay is the fixed pause between successive fetches.
	Delay time.Duration
	// OutputDir receives the JSON document. Defaults to "data".
	OutputDir string
}

// RunResult summarizes one completed scrape run.
type RunResult struct {
	Offices    []models.Office
	Report     *models.AnalysisReport
	OutputPath string
	Attempted  int
	Enhanced   int
}

// Pipeline builds office records, optionally enriches them from live sites
// one at a time, and writes the output document.
type Pipeline struct {
	reg      *Registry
	builder  *Builder
	enricher *Enricher
	fetcher  Fetcher
	cfg      PipelineConfig
	now      func() time.Time
}

func NewPipeline(reg *Registry, fetcher Fetcher, cfg PipelineConfig) *Pipeline {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}
	if cfg.Delay == 0 {
		cfg.Delay = 2 * time.Second
	}
	return &Pipeline{
		reg:      reg,
		builder:  NewBuilder(reg),
		enricher: NewEnricher(),
		fetcher:  fetcher,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes the full pipeline. Cancelling ctx stops enrichment after the
// in-flight request; the offices collected so far are still reported and
// written. Only a serialization failure is fatal.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	templates := p.templates()
	offices := p.builder.Build(templates)

	result := &RunResult{Offices: offices}
	if p.cfg.Enhance {
		result.Attempted, result.Enhanced = p.enrichAll(ctx, offices)
	}

	result.Report = BuildReport(offices)

	path, err := p.writeOutput(result)
	if err != nil {
		return nil, err
	}
	result.OutputPath = path
	return result, nil
}

func (p *Pipeline) templates() []OfficeTemplate {
	templates := p.reg.Offices
	if !p.cfg.AllDistricts {
		return templates
	}

	covered := make(map[string]bool)
	for _, t := range templates {
		if t.OfficeType == "" || t.OfficeType == models.TypeDAO {
			covered[t.District] = true
		}
	}
	for _, t := range p.reg.DistrictDAOTemplates() {
		if !covered[t.District] {
			templates = append(templates, t)
			covered[t.District] = true
		}
	}
	return templates
}

// enrichAll walks the office list in order, fetching each website and
// merging whatever it finds. Failures skip that office; the batch always
// continues.
func (p *Pipeline) enrichAll(ctx context.Context, offices []models.Office) (attempted, enhanced int) {
	for i := range offices {
		if ctx.Err() != nil {
			log.Printf("Enrichment interrupted after %d offices", attempted)
			return attempted, enhanced
		}
		if p.cfg.MaxEnhance > 0 && attempted >= p.cfg.MaxEnhance {
			break
		}

		office := &offices[i]
		if office.Contact == nil || office.Contact.Website == "" {
			continue
		}
		attempted++
		log.Printf("Enhancing %s (%d)", office.Name, attempted)

		if p.enrichOne(ctx, office) {
			enhanced++
			log.Printf("Enhanced %s", office.Name)
		}

		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.Delay):
		}
	}
	log.Printf("Enhanced %d/%d offices with live data", enhanced, attempted)
	return attempted, enhanced
}

func (p *Pipeline) enrichOne(ctx context.Context, office *models.Office) bool {
	doc, err := p.fetcher.Fetch(ctx, office.Contact.Website)
	if err != nil {
		// Most district sites are flaky; a failed fetch just means no
		// enrichment for this office.
		return false
	}

	var text string
	if strings.Contains(doc.ContentType, "pdf") {
		text, err = ExtractPDFText(doc.Body)
	} else {
		text, err = TextFromHTML(doc.Body)
	}
	if err != nil {
		log.Printf("Extracting text from %s: %v", doc.URL, err)
		return false
	}

	return p.enricher.EnrichFromText(office, text)
}

// writeOutput serializes the run to a timestamped JSON document. The file is
// staged under a temporary name and renamed into place, so readers never see
// a half-written document.
func (p *Pipeline) writeOutput(result *RunResult) (string, error) {
	doc := models.OutputDocument{
		Metadata: models.OutputMetadata{
			Version:        schemaVersion,
			ScraperType:    "comprehensive_factory_generated",
			GenerationDate: p.now(),
			TotalOffices:   len(result.Offices),
			DataQuality:    "comprehensive_with_live_enhancement",
			CoverageScope:  "national_government_offices",
		},
		DataSources:    dataSources,
		AnalysisReport: result.Report,
		Offices:        result.Offices,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing output document: %w", err)
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("comprehensive_nepal_offices_%s.json", p.now().Format("20060102_150405"))
	path := filepath.Join(p.cfg.OutputDir, name)

	tmp, err := os.CreateTemp(p.cfg.OutputDir, ".comprehensive-*.json")
	if err != nil {
		return "", fmt.Errorf("creating temp output file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publishing output: %w", err)
	}

	log.Printf("Saved %d offices to %s", len(result.Offices), path)
	return path, nil
}
