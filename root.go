// root.go
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/gewnthar/eof/config"
	"github.com/gewnthar/eof/database"
	"github.com/gewnthar/eof/scraper"
	"github.com/gewnthar/eof/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "eof",
		Short:         "Find and download Sentinel-1 orbit files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(configFlag); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

// newCatalog picks the manifest catalog when one is configured, the remote
// directory listing otherwise.
func newCatalog(cfg config.Config) (services.CatalogProvider, error) {
	if cfg.Catalog.Manifest != "" {
		manifest, err := scraper.LoadManifestCatalog(cfg.Catalog.Manifest)
		if err != nil {
			return nil, err
		}
		log.Printf("Service: Using manifest catalog %s (%d entries)\n", cfg.Catalog.Manifest, len(manifest.Entries))
		return manifest, nil
	}
	return scraper.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.RequestsPerSecond, cfg.Catalog.Timeout), nil
}

// newOrbitService builds the service from config.AppConfig. The returned
// cleanup closes the database when the ledger is enabled.
func newOrbitService(outputDir string) (*services.OrbitService, func(), error) {
	cfg := config.AppConfig
	if outputDir == "" {
		outputDir = cfg.Download.OutputDir
	}

	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := &services.OrbitService{
		Catalog:              catalog,
		Transfer:             scraper.NewDownloader(outputDir, cfg.Download.Concurrency, cfg.Download.Timeout),
		Margins:              services.Margins{Before: cfg.Margins.Before, After: cfg.Margins.After},
		FallbackToRestituted: cfg.FallbackRestituted,
	}

	cleanup := func() {}
	if cfg.Database.Enabled {
		if err := database.InitDB(cfg.Database); err != nil {
			return nil, nil, fmt.Errorf("initialize database: %w", err)
		}
		svc.Ledger = services.DatabaseLedger{}
		cleanup = database.CloseDB
	} else {
		log.Println("Service: Download ledger disabled (database.enabled is false)")
	}
	return svc, cleanup, nil
}
