// services/orbit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/products"
	"github.com/gewnthar/eof/utils"
	"github.com/gewnthar/eof/validity"
)

var (
	ErrUnsupportedMission     = errors.New("unsupported mission")
	ErrUnsupportedProductType = errors.New("unsupported orbit product type")
)

// CatalogProvider lists candidate orbit files. Only the Identifier of each
// returned entry is used for selection.
type CatalogProvider interface {
	Query(ctx context.Context, productType models.ProductType, satelliteID string, from, to time.Time) (map[string]models.CatalogEntry, error)
}

// TransferProvider fetches orbit files once they have been selected.
type TransferProvider interface {
	Download(ctx context.Context, entry models.CatalogEntry) (string, error)
	DownloadAll(ctx context.Context, entries map[string]models.CatalogEntry) ([]string, error)
}

// Margins widen the catalog search window around a product's acquisition.
type Margins struct {
	Before time.Duration
	After  time.Duration
}

// DefaultMargins is one day on each side.
func DefaultMargins() Margins {
	return Margins{Before: 24 * time.Hour, After: 24 * time.Hour}
}

// OrDefault replaces zero fields with the default margin.
func (m Margins) OrDefault() Margins {
	def := DefaultMargins()
	if m.Before == 0 {
		m.Before = def.Before
	}
	if m.After == 0 {
		m.After = def.After
	}
	return m
}

// OrbitService finds and downloads the orbit file covering a product.
type OrbitService struct {
	Catalog              CatalogProvider
	Transfer             TransferProvider
	Ledger               Ledger // optional
	Margins              Margins
	FallbackToRestituted bool
}

// QueryOrbit validates its arguments and asks the catalog for candidates
// overlapping [from, to].
func (s *OrbitService) QueryOrbit(ctx context.Context, from, to time.Time, satelliteID string, productType models.ProductType) (map[string]models.CatalogEntry, error) {
	if !utils.IsSupportedMission(satelliteID) {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnsupportedMission, satelliteID, utils.SupportedMissions)
	}
	if !productType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProductType, productType)
	}
	satelliteID = utils.NormalizeMission(satelliteID)

	log.Printf("Service: query parameters: product_type=%s mission=%s date=[%s, %s]\n",
		productType, satelliteID, from.Format(time.DateTime), to.Format(time.DateTime))
	entries, err := s.Catalog.Query(ctx, productType, satelliteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("catalog query for %s %s failed: %w", satelliteID, productType, err)
	}
	return entries, nil
}

// SelectOrbit keeps the entries whose identifier is the latest-generated one
// covering [t0, t1].
func SelectOrbit(entries map[string]models.CatalogEntry, t0, t1 time.Time) (map[string]models.CatalogEntry, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = entries[k].Identifier
	}

	records, err := validity.Parse(ids, nil)
	if err != nil {
		return nil, err
	}
	productID, err := validity.SelectCovering(records, t0, t1)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]models.CatalogEntry)
	for _, k := range keys {
		if entries[k].Identifier == productID {
			selected[k] = entries[k]
		}
	}
	return selected, nil
}

// QueryOrbitForProduct finds the orbit file covering the acquisition window of
// product. The catalog is queried with the window widened by the margins; the
// coverage check uses the exact window.
func (s *OrbitService) QueryOrbitForProduct(ctx context.Context, product *products.Product, productType models.ProductType) (map[string]models.CatalogEntry, error) {
	window := product.Window()
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("product %s: %w", product.Name, err)
	}

	selected, err := s.queryAndSelect(ctx, window, product.Mission, productType)
	if err != nil && s.FallbackToRestituted && productType == models.Precise && validity.IsSelectionError(err) {
		log.Printf("WARN Service: No precise orbit covers %s yet, falling back to restituted: %v", product.Name, err)
		selected, err = s.queryAndSelect(ctx, window, product.Mission, models.Restituted)
	}
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", product.Name, err)
	}
	return selected, nil
}

// QueryOrbitForDate finds the orbit file covering the whole UTC day of day.
func (s *OrbitService) QueryOrbitForDate(ctx context.Context, day time.Time, mission string, productType models.ProductType) (map[string]models.CatalogEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	window := validity.Interval{Start: start, End: start.Add(24*time.Hour - time.Second)}

	selected, err := s.queryAndSelect(ctx, window, mission, productType)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", mission, start.Format(time.DateOnly), err)
	}
	return selected, nil
}

func (s *OrbitService) queryAndSelect(ctx context.Context, window validity.Interval, mission string, productType models.ProductType) (map[string]models.CatalogEntry, error) {
	m := s.Margins.OrDefault()
	search := window.Widen(m.Before, m.After)

	entries, err := s.QueryOrbit(ctx, search.Start, search.End, mission, productType)
	if err != nil {
		return nil, err
	}
	return SelectOrbit(entries, window.Start, window.End)
}

// QueryOrbitsForProducts runs QueryOrbitForProduct for every product in
// parallel and merges the selections. The first failure cancels the rest.
func (s *OrbitService) QueryOrbitsForProducts(ctx context.Context, prods []*products.Product, productType models.ProductType) (map[string]models.CatalogEntry, error) {
	var (
		mu     sync.Mutex
		merged = make(map[string]models.CatalogEntry)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range prods {
		g.Go(func() error {
			selected, err := s.QueryOrbitForProduct(gctx, p, productType)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for k, v := range selected {
				merged[k] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

// DownloadOrbits transfers entries and records each file in the ledger, if
// one is configured. It returns local paths keyed like entries.
func (s *OrbitService) DownloadOrbits(ctx context.Context, entries map[string]models.CatalogEntry) (map[string]string, error) {
	if len(entries) == 0 {
		return map[string]string{}, nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths, err := s.Transfer.DownloadAll(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to download orbit files: %w", err)
	}
	if len(paths) != len(keys) {
		return nil, fmt.Errorf("transfer returned %d paths for %d orbit files", len(paths), len(keys))
	}

	runID := uuid.NewString()
	now := time.Now().UTC()
	out := make(map[string]string, len(keys))
	for i, k := range keys {
		out[k] = paths[i]
		if s.Ledger == nil {
			continue
		}
		e := entries[k]
		err := s.Ledger.RecordDownload(models.OrbitDownload{
			Identifier:   e.Identifier,
			Mission:      e.Mission,
			ProductType:  e.ProductType,
			SourceURL:    e.URL,
			LocalPath:    paths[i],
			RunID:        runID,
			DownloadedAt: now,
		})
		if err != nil {
			log.Printf("ERROR Service: Failed to record download of %s: %v", e.Identifier, err)
		}
	}

	log.Printf("Service: Downloaded %d orbit files (run %s)\n", len(out), runID)
	return out, nil
}
