// services/ledger.go
package services

import (
	"github.com/gewnthar/eof/database"
	"github.com/gewnthar/eof/models"
)

// Ledger keeps track of downloaded orbit files.
type Ledger interface {
	RecordDownload(d models.OrbitDownload) error
	ListDownloads() ([]models.OrbitDownload, error)
}

// DatabaseLedger stores the ledger in the MySQL orbit_downloads table.
type DatabaseLedger struct{}

func (DatabaseLedger) RecordDownload(d models.OrbitDownload) error {
	return database.SaveOrbitDownload(d)
}

func (DatabaseLedger) ListDownloads() ([]models.OrbitDownload, error) {
	return database.ListOrbitDownloads()
}
