// list_command.go
package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/validity"
)

func newListCommand() *cobra.Command {
	var (
		mission     string
		start       string
		stop        string
		productType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate orbit files and show which one covers an interval",
		Long: `List the orbit files the catalog returns around [start, stop] and mark the
ones that fully cover it. The selected file is the most recently generated
covering one.

Example:
  eof list -m S1A --start 2020-01-01T05:00:00 --stop 2020-01-01T05:00:27`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := models.ParseProductType(productType)
			if err != nil {
				return err
			}
			t0, err := parseFlagTime(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			t1, err := parseFlagTime(stop)
			if err != nil {
				return fmt.Errorf("invalid --stop: %w", err)
			}

			svc, cleanup, err := newOrbitService("")
			if err != nil {
				return err
			}
			defer cleanup()

			margins := svc.Margins.OrDefault()
			search := validity.Interval{Start: t0, End: t1}.Widen(margins.Before, margins.After)
			entries, err := svc.QueryOrbit(cmd.Context(), search.Start, search.End, mission, pt)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(entries))
			for _, e := range entries {
				ids = append(ids, e.Identifier)
			}
			records, err := validity.ParseAll(ids, nil)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			renderCandidates(cmd.OutOrStdout(), records, t0, t1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mission, "mission", "m", "S1A", "Sentinel-1 unit (S1A or S1B)")
	cmd.Flags().StringVar(&start, "start", "", "Interval start (YYYY-MM-DDTHH:MM:SS or YYYYMMDDTHHMMSS)")
	cmd.Flags().StringVar(&stop, "stop", "", "Interval stop (YYYY-MM-DDTHH:MM:SS or YYYYMMDDTHHMMSS)")
	cmd.Flags().StringVarP(&productType, "product-type", "t", string(models.Precise), "AUX_POEORB or AUX_RESORB")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("stop")

	return cmd
}

func parseFlagTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", validity.DateFormat, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func renderCandidates(w io.Writer, records []validity.Record, t0, t1 time.Time) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].GenerationTime.After(records[j].GenerationTime)
	})
	selected, _ := validity.SelectCovering(records, t0, t1)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Identifier", "Generated", "Valid From", "Valid To", "Covers", "Selected"})
	for _, r := range records {
		covers, chosen := "", ""
		if r.Covers(t0, t1) {
			covers = "yes"
		}
		if r.ProductID == selected {
			chosen = "*"
		}
		tw.AppendRow(table.Row{
			r.ProductID,
			r.GenerationTime.Format(time.DateTime),
			r.ValidityStart.Format(time.DateTime),
			r.ValidityEnd.Format(time.DateTime),
			covers,
			chosen,
		})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
