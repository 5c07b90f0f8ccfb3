// Package report renders OutcomeRecords for the console.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alanbriolat/media-archiver"
)

const maxDetailsWidth = 80

// Outcome writes a one-line summary of a single record.
func Outcome(w io.Writer, r media_archiver.OutcomeRecord) error {
	_, err := fmt.Fprintf(w, "[%s] %s %s by %s: %s\n", r.Status, r.MediaKind.Label(), orDash(r.MediaID), orDash(r.Author), r.Details)
	return err
}

// Table writes records as an aligned table, followed by success and failure totals.
func Table(w io.Writer, records []media_archiver.OutcomeRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tID\tAUTHOR\tSTATUS\tDETAILS")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, r.MediaKind.Label(), orDash(r.MediaID), orDash(r.Author), r.Status, truncate(r.Details))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	succeeded, failed := media_archiver.CountOutcomes(records)
	_, err := fmt.Fprintf(w, "%d processed, %d succeeded, %d failed\n", len(records), succeeded, failed)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= maxDetailsWidth {
		return s
	}
	return string([]rune(s)[:maxDetailsWidth-3]) + "..."
}
