// scraper/catalog.go
package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/validity"
)

// CatalogClient lists orbit files from an HTTP directory tree laid out like
// the ESA STEP auxdata server: <base>/<POEORB|RESORB>/<S1A>/<YYYY>/<MM>/.
type CatalogClient struct {
	BaseURL string
	Client  *http.Client
	Limiter RateLimiter
}

// NewCatalogClient builds a client for baseURL with the given request rate and timeout.
func NewCatalogClient(baseURL string, requestsPerSecond float64, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Limiter: NewRateLimiter(requestsPerSecond),
	}
}

// Query returns the orbit files of productType for satelliteID whose validity
// overlaps [from, to], keyed by download URL.
func (c *CatalogClient) Query(ctx context.Context, productType models.ProductType, satelliteID string, from, to time.Time) (map[string]models.CatalogEntry, error) {
	log.Printf("Scraper: Querying %s catalog for %s from %s to %s\n",
		productType, satelliteID, from.Format(time.DateTime), to.Format(time.DateTime))

	window := validity.Interval{Start: from, End: to}
	out := make(map[string]models.CatalogEntry)
	for _, month := range monthsBetween(from, to) {
		pageURL := fmt.Sprintf("%s/%s/%s/%04d/%02d/", c.BaseURL, productType.Short(), satelliteID, month.Year(), int(month.Month()))
		entries, err := c.listPage(ctx, pageURL, productType, satelliteID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			rec, err := validity.ParseIdentifier(e.Identifier)
			if err != nil {
				log.Printf("WARN Scraper: Skipping unparseable catalog entry %s: %v", e.Identifier, err)
				continue
			}
			if !window.Overlaps(validity.Interval{Start: rec.ValidityStart, End: rec.ValidityEnd}) {
				continue
			}
			out[e.Key] = e
		}
	}

	log.Printf("Scraper: Found %d %s candidates for %s\n", len(out), productType, satelliteID)
	return out, nil
}

// listPage scrapes one directory listing. A missing page yields no entries.
func (c *CatalogClient) listPage(ctx context.Context, pageURL string, productType models.ProductType, satelliteID string) ([]models.CatalogEntry, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL %s: %w", pageURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		log.Printf("Scraper: No listing at %s\n", pageURL)
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	prefix := satelliteID + "_"
	var entries []models.CatalogEntry
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		name := path.Base(abs.Path)
		if !strings.HasPrefix(name, prefix) || !strings.Contains(name, string(productType)) {
			return
		}
		id, ok := trimOrbitSuffix(name)
		if !ok {
			return
		}
		entries = append(entries, models.CatalogEntry{
			Key:         abs.String(),
			Identifier:  id,
			URL:         abs.String(),
			Mission:     satelliteID,
			ProductType: productType,
		})
	})
	return entries, nil
}

func trimOrbitSuffix(name string) (string, bool) {
	for _, suffix := range []string{".EOF.zip", ".EOF"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}

// monthsBetween returns the first day of every month touched by [from, to].
func monthsBetween(from, to time.Time) []time.Time {
	from, to = from.UTC(), to.UTC()
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []time.Time
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
