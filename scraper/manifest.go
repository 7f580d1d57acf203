// scraper/manifest.go
package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/validity"
)

// ManifestCatalog answers catalog queries from a CSV manifest with the
// header key,identifier,url,mission,product_type.
type ManifestCatalog struct {
	Entries []models.CatalogEntry
}

// ParseManifest decodes a CSV manifest. Empty keys default to the URL.
func ParseManifest(reader io.Reader) ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry

	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder for manifest: %w", err)
	}
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode manifest CSV data: %w", err)
	}

	for i := range entries {
		if entries[i].Key == "" {
			entries[i].Key = entries[i].URL
		}
		if entries[i].ProductType == "" {
			entries[i].ProductType = models.Precise
		}
	}

	log.Printf("Scraper: Parsed %d manifest entries from CSV.\n", len(entries))
	return entries, nil
}

// LoadManifestCatalog reads the CSV manifest at path.
func LoadManifestCatalog(path string) (*ManifestCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &ManifestCatalog{Entries: entries}, nil
}

// Query has the same contract as CatalogClient.Query.
func (m *ManifestCatalog) Query(_ context.Context, productType models.ProductType, satelliteID string, from, to time.Time) (map[string]models.CatalogEntry, error) {
	window := validity.Interval{Start: from, End: to}
	out := make(map[string]models.CatalogEntry)
	for _, e := range m.Entries {
		if e.ProductType != productType || e.Mission != satelliteID {
			continue
		}
		rec, err := validity.ParseIdentifier(e.Identifier)
		if err != nil {
			log.Printf("WARN Scraper: Skipping unparseable manifest entry %s: %v", e.Identifier, err)
			continue
		}
		if window.Overlaps(validity.Interval{Start: rec.ValidityStart, End: rec.ValidityEnd}) {
			out[e.Key] = e
		}
	}
	return out, nil
}

// WriteManifest encodes entries as CSV, sorted by key.
func WriteManifest(w io.Writer, entries map[string]models.CatalogEntry) error {
	rows := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
