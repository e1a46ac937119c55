package scrape

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const mohaOfficesURL = "https://moha.gov.np/en/offices"

// DiscoveredOffice is a DAO site found by crawling the ministry directory
// or by probing the conventional hostname patterns.
type DiscoveredOffice struct {
	Name     string
	URL      string
	District string
	Source   string
}

// Discoverer finds live DAO websites. Best-effort: hostname guesses can miss
// offices or hit unrelated sites, so results feed review rather than the
// office registry directly.
type Discoverer struct {
	reg       *Collector
	districts []DistrictInfo
	probe     Fetcher
}

// Collector wraps the crawler configuration so tests can swap it out.
type Collector struct {
	UserAgent string
	Timeout   time.Duration
	Delay     time.Duration
}

func NewDiscoverer(districts []DistrictInfo, probe Fetcher) *Discoverer {
	return &Discoverer{
		reg: &Collector{
			UserAgent: browserUserAgent,
			Timeout:   20 * time.Second,
			Delay:     1 * time.Second,
		},
		districts: districts,
		probe:     probe,
	}
}

// Discover crawls the MOHA office directory for DAO links, then probes the
// conventional dao<district>.moha.gov.np hostname for every district not
// already found. Deduplicated by URL, sorted by district.
func (d *Discoverer) Discover(ctx context.Context) ([]DiscoveredOffice, error) {
	byURL := make(map[string]DiscoveredOffice)

	if err := d.crawlDirectory(byURL); err != nil {
		log.Printf("MOHA directory crawl failed, falling back to hostname probing: %v", err)
	}

	d.probeKnownPatterns(ctx, byURL)

	offices := make([]DiscoveredOffice, 0, len(byURL))
	for _, o := range byURL {
		offices = append(offices, o)
	}
	sort.Slice(offices, func(i, j int) bool {
		if offices[i].District != offices[j].District {
			return offices[i].District < offices[j].District
		}
		return offices[i].URL < offices[j].URL
	})
	return offices, nil
}

func (d *Discoverer) crawlDirectory(byURL map[string]DiscoveredOffice) error {
	c := colly.NewCollector(
		colly.UserAgent(d.reg.UserAgent),
		colly.AllowedDomains("moha.gov.np", "www.moha.gov.np"),
		colly.MaxDepth(1),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(d.reg.Timeout)
	c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: d.reg.Delay})

	c.OnHTML(`a[href*="dao"], a[href*="district"]`, func(e *colly.HTMLElement) {
		href := e.Request.AbsoluteURL(e.Attr("href"))
		name := strings.TrimSpace(e.Text)
		if href == "" || name == "" {
			return
		}
		byURL[href] = DiscoveredOffice{
			Name:     name,
			URL:      href,
			District: d.matchDistrict(href, name),
			Source:   "moha_directory",
		}
	})

	var crawlErr error
	c.OnError(func(r *colly.Response, err error) {
		crawlErr = err
	})

	if err := c.Visit(mohaOfficesURL); err != nil {
		return err
	}
	c.Wait()
	return crawlErr
}

// probeKnownPatterns checks the conventional hostname for each district
// missing from the directory results. A 200 from any fetch counts; anything
// else is skipped.
func (d *Discoverer) probeKnownPatterns(ctx context.Context, byURL map[string]DiscoveredOffice) {
	found := make(map[string]bool)
	for _, o := range byURL {
		if o.District != "" {
			found[o.District] = true
		}
	}

	for _, district := range d.districts {
		if ctx.Err() != nil {
			return
		}
		if found[district.Name] {
			continue
		}
		slug := nonAlnumRun.ReplaceAllString(strings.ToLower(district.Name), "")
		url := "https://dao" + slug + ".moha.gov.np"
		doc, err := d.probe.Fetch(ctx, url)
		if err != nil || doc.StatusCode != http.StatusOK {
			continue
		}
		byURL[url] = DiscoveredOffice{
			Name:     "District Administration Office, " + district.Name,
			URL:      url,
			District: district.Name,
			Source:   "pattern_generated",
		}
	}
}

func (d *Discoverer) matchDistrict(href, name string) string {
	lowerHref := strings.ToLower(href)
	lowerName := strings.ToLower(name)
	for _, district := range d.districts {
		slug := nonAlnumRun.ReplaceAllString(strings.ToLower(district.Name), "")
		if strings.Contains(lowerHref, "dao"+slug) || strings.Contains(lowerName, strings.ToLower(district.Name)) {
			return district.Name
		}
	}
	return ""
}
