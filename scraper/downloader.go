// scraper/downloader.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gewnthar/eof/models"
)

// Downloader saves orbit files into OutputDir.
type Downloader struct {
	Client      *http.Client
	OutputDir   string
	Concurrency int
}

// NewDownloader returns a Downloader with a per-request timeout.
func NewDownloader(outputDir string, concurrency int, timeout time.Duration) *Downloader {
	return &Downloader{
		Client:      &http.Client{Timeout: timeout},
		OutputDir:   outputDir,
		Concurrency: concurrency,
	}
}

// LocalPath is where entry is stored once downloaded.
func (d *Downloader) LocalPath(entry models.CatalogEntry) (string, error) {
	u, err := url.Parse(entry.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q for %s: %w", entry.URL, entry.Identifier, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = entry.Identifier + ".EOF"
	}
	return filepath.Join(d.OutputDir, name), nil
}

// Download fetches a single orbit file and returns its local path. A
// non-empty file already at that path is reused.
func (d *Downloader) Download(ctx context.Context, entry models.CatalogEntry) (string, error) {
	localPath, err := d.LocalPath(entry)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(localPath); err == nil && fi.Size() > 0 {
		log.Printf("Scraper: %s already present at %s, skipping download\n", entry.Identifier, localPath)
		return localPath, nil
	}
	if err := DownloadFile(ctx, d.Client, entry.URL, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// DownloadAll fetches entries with at most Concurrency transfers in flight.
// Paths are returned in key order.
func (d *Downloader) DownloadAll(ctx context.Context, entries map[string]models.CatalogEntry) ([]string, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := make([]string, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}
	for i, k := range keys {
		g.Go(func() error {
			p, err := d.Download(gctx, entries[k])
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// DownloadFile downloads url to localSavePath through a temporary .part file.
func DownloadFile(ctx context.Context, client *http.Client, url string, localSavePath string) error {
	log.Printf("Scraper: Downloading %s to %s\n", url, localSavePath)
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build GET request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	partPath := localSavePath + ".part"
	outFile, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", partPath, err)
	}
	if _, err = io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(partPath)
		return fmt.Errorf("failed to copy downloaded content to %s: %w", partPath, err)
	}
	if err = outFile.Close(); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to close %s: %w", partPath, err)
	}
	if err = os.Rename(partPath, localSavePath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", localSavePath, err)
	}

	log.Printf("Scraper: Successfully downloaded %s to %s\n", url, localSavePath)
	return nil
}
