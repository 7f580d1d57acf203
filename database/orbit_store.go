// database/orbit_store.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/gewnthar/eof/models"
)

const createOrbitDownloads = `
	CREATE TABLE IF NOT EXISTS orbit_downloads (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		identifier VARCHAR(255) NOT NULL UNIQUE,
		mission VARCHAR(8) NOT NULL,
		product_type VARCHAR(16) NOT NULL,
		source_url TEXT NOT NULL,
		local_path TEXT NOT NULL,
		run_id CHAR(36) NOT NULL,
		downloaded_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// EnsureSchema creates the orbit_downloads table if it does not exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrNotInitialized
	}
	if _, err := DB.Exec(createOrbitDownloads); err != nil {
		return fmt.Errorf("failed to create orbit_downloads table: %w", err)
	}
	return nil
}

// SaveOrbitDownload inserts or updates the ledger row for d.Identifier.
func SaveOrbitDownload(d models.OrbitDownload) error {
	if DB == nil {
		return ErrNotInitialized
	}

	query := `
		INSERT INTO orbit_downloads (
			identifier, mission, product_type, source_url,
			local_path, run_id, downloaded_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			mission = VALUES(mission),
			product_type = VALUES(product_type),
			source_url = VALUES(source_url),
			local_path = VALUES(local_path),
			run_id = VALUES(run_id),
			downloaded_at = VALUES(downloaded_at),
			updated_at = NOW()
	`

	_, err := DB.Exec(query,
		d.Identifier, d.Mission, string(d.ProductType), d.SourceURL,
		d.LocalPath, d.RunID, d.DownloadedAt,
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to save orbit download '%s': %v", d.Identifier, err)
		return fmt.Errorf("failed to save orbit download %s: %w", d.Identifier, err)
	}

	log.Printf("Database: Recorded orbit download '%s' -> %s\n", d.Identifier, d.LocalPath)
	return nil
}

const selectOrbitDownloads = `
	SELECT id, identifier, mission, product_type, source_url,
	       local_path, run_id, downloaded_at, created_at, updated_at
	FROM orbit_downloads`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrbitDownload(row rowScanner) (models.OrbitDownload, error) {
	var (
		d           models.OrbitDownload
		productType string
	)
	err := row.Scan(
		&d.ID, &d.Identifier, &d.Mission, &productType, &d.SourceURL,
		&d.LocalPath, &d.RunID, &d.DownloadedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	d.ProductType = models.ProductType(productType)
	return d, err
}

// GetOrbitDownload returns the ledger row for identifier, or ErrNotFound.
func GetOrbitDownload(identifier string) (*models.OrbitDownload, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}

	d, err := scanOrbitDownload(DB.QueryRow(selectOrbitDownloads+` WHERE identifier = ?`, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("orbit download %s: %w", identifier, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query orbit download %s: %w", identifier, err)
	}
	return &d, nil
}

// ListOrbitDownloads returns all ledger rows, most recent download first.
func ListOrbitDownloads() ([]models.OrbitDownload, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}

	rows, err := DB.Query(selectOrbitDownloads + ` ORDER BY downloaded_at DESC, identifier`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orbit_downloads: %w", err)
	}
	defer rows.Close()

	var downloads []models.OrbitDownload
	for rows.Next() {
		d, err := scanOrbitDownload(rows)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan orbit_downloads row: %v", err)
			continue
		}
		downloads = append(downloads, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orbit_downloads rows: %w", err)
	}
	return downloads, nil
}
