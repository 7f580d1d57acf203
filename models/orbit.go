// models/orbit.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ProductType is the quality tier of an orbit solution.
type ProductType string

const (
	// Precise orbits (POEORB) are published about three weeks after acquisition.
	Precise ProductType = "AUX_POEORB"
	// Restituted orbits (RESORB) are available within hours but less accurate.
	Restituted ProductType = "AUX_RESORB"
)

// ParseProductType accepts the catalog names as well as the short aliases
// "POEORB", "RESORB", "PRECISE" and "RESTITUTED" (case-insensitive).
func ParseProductType(s string) (ProductType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AUX_POEORB", "POEORB", "PRECISE":
		return Precise, nil
	case "AUX_RESORB", "RESORB", "RESTITUTED":
		return Restituted, nil
	}
	return "", fmt.Errorf("unknown orbit product type %q", s)
}

// Short returns the directory name used by the catalog, e.g. "POEORB".
func (p ProductType) Short() string {
	return strings.TrimPrefix(string(p), "AUX_")
}

func (p ProductType) Valid() bool {
	return p == Precise || p == Restituted
}

// CatalogEntry is one orbit file listed by a catalog. Only Identifier is
// interpreted by the selection logic.
type CatalogEntry struct {
	Key         string      `csv:"key" json:"key"`
	Identifier  string      `csv:"identifier" json:"identifier"`
	URL         string      `csv:"url" json:"url"`
	Mission     string      `csv:"mission" json:"mission"`
	ProductType ProductType `csv:"product_type" json:"product_type"`
}

// OrbitDownload is a row of the orbit_downloads ledger.
type OrbitDownload struct {
	ID           int64       `db:"id" json:"id"`
	Identifier   string      `db:"identifier" json:"identifier"`
	Mission      string      `db:"mission" json:"mission"`
	ProductType  ProductType `db:"product_type" json:"product_type"`
	SourceURL    string      `db:"source_url" json:"source_url"`
	LocalPath    string      `db:"local_path" json:"local_path"`
	RunID        string      `db:"run_id" json:"run_id"`
	DownloadedAt time.Time   `db:"downloaded_at" json:"downloaded_at"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
