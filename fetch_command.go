// fetch_command.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/products"
	"github.com/gewnthar/eof/scraper"
	"github.com/gewnthar/eof/services"
	"github.com/gewnthar/eof/utils"
	"github.com/gewnthar/eof/validity"
)

func newFetchCommand() *cobra.Command {
	var (
		date        string
		searchPath  string
		mission     string
		productType string
		outputDir   string
		manifestOut string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [PRODUCT...]",
		Short: "Download the orbit files covering Sentinel-1 products",
		Long: `Download Sentinel-1 orbit files.

Selects, for every product, the most recently generated orbit file whose
validity fully covers the product's acquisition window.

Examples:
  eof fetch S1A_IW_SLC__1SDV_20200101T050000_20200101T050027_030600_0381B2_ABCD
  eof fetch --date 2020-01-01 --mission S1A
  eof fetch --path /data/slc --product-type AUX_RESORB`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := models.ParseProductType(productType)
			if err != nil {
				return err
			}
			svc, cleanup, err := newOrbitService(outputDir)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			var selected map[string]models.CatalogEntry

			switch {
			case date != "":
				day, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD: %w", date, err)
				}
				missions := utils.SupportedMissions
				if mission != "" {
					missions = []string{utils.NormalizeMission(mission)}
				}
				selected, err = queryDateAllMissions(ctx, svc, day, missions, pt)
				if err != nil {
					return err
				}
			default:
				prods, err := collectProducts(args, searchPath)
				if err != nil {
					return err
				}
				if mission != "" {
					prods = filterMission(prods, utils.NormalizeMission(mission))
				}
				if len(prods) == 0 {
					return fmt.Errorf("no Sentinel-1 products given or found in %s", searchPath)
				}
				selected, err = svc.QueryOrbitsForProducts(ctx, prods, pt)
				if err != nil {
					return err
				}
			}

			if manifestOut != "" {
				if err := writeManifestFile(manifestOut, selected); err != nil {
					return err
				}
			}
			for _, e := range selected {
				fmt.Fprintln(cmd.OutOrStdout(), e.Identifier)
			}
			if dryRun {
				return nil
			}

			paths, err := svc.DownloadOrbits(ctx, selected)
			if err != nil {
				return err
			}
			log.Printf("Fetch: %d orbit files saved\n", len(paths))
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Validity date (YYYY-MM-DD) for the orbit file to download")
	cmd.Flags().StringVar(&searchPath, "path", ".", "Directory to search for Sentinel-1 products when none are given")
	cmd.Flags().StringVarP(&mission, "mission", "m", "", "Sentinel-1 unit (S1A or S1B); default is all")
	cmd.Flags().StringVarP(&productType, "product-type", "t", string(models.Precise), "AUX_POEORB or AUX_RESORB")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to save orbit files in (default from config)")
	cmd.Flags().StringVar(&manifestOut, "manifest-out", "", "Write the selected orbit files to this CSV manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Select orbit files without downloading them")

	return cmd
}

// queryDateAllMissions merges the selections of every mission. A mission with
// no covering orbit is skipped; the command fails only when none has one.
func queryDateAllMissions(ctx context.Context, svc *services.OrbitService, day time.Time, missions []string, pt models.ProductType) (map[string]models.CatalogEntry, error) {
	selected := map[string]models.CatalogEntry{}
	var misses []error
	for _, m := range missions {
		found, err := svc.QueryOrbitForDate(ctx, day, m, pt)
		if err != nil {
			if validity.IsSelectionError(err) {
				log.Printf("WARN Fetch: %v\n", err)
				misses = append(misses, err)
				continue
			}
			return nil, err
		}
		for k, v := range found {
			selected[k] = v
		}
	}
	if len(selected) == 0 && len(misses) > 0 {
		return nil, errors.Join(misses...)
	}
	return selected, nil
}

func collectProducts(args []string, searchPath string) ([]*products.Product, error) {
	if len(args) == 0 {
		return products.FindProducts(searchPath)
	}
	prods := make([]*products.Product, 0, len(args))
	for _, a := range args {
		p, err := products.ParseProduct(a)
		if err != nil {
			return nil, err
		}
		prods = append(prods, p)
	}
	return prods, nil
}

func filterMission(prods []*products.Product, mission string) []*products.Product {
	var out []*products.Product
	for _, p := range prods {
		if p.Mission == mission {
			out = append(out, p)
		}
	}
	return out
}

func writeManifestFile(path string, entries map[string]models.CatalogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest %s: %w", path, err)
	}
	if err := scraper.WriteManifest(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
