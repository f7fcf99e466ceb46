package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dicomsort/internal/config"
	"dicomsort/internal/placement"
	"dicomsort/internal/services"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// reasonOrder fixes the order of the per-reason breakdown rows.
var reasonOrder = []services.Reason{
	services.ReasonNotRecognized,
	services.ReasonPreexistingTarget,
	services.ReasonUnsafeTarget,
	services.ReasonIO,
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// summaryRows lays out the run counts. Zero per-reason rows are omitted;
// deletion and archive rows only appear when those features were enabled.
func summaryRows(s placement.Summary, cfg *config.Config) [][]string {
	rows := [][]string{{"Organized", strconv.Itoa(s.Organized)}}
	if s.Suffixed > 0 {
		rows = append(rows, []string{"  renamed to avoid a collision", strconv.Itoa(s.Suffixed)})
	}
	rows = append(rows, []string{"Skipped", strconv.Itoa(s.Skipped)})
	rows = append(rows, reasonRows(s.SkippedByReason)...)
	rows = append(rows, []string{"Failed", strconv.Itoa(s.Failed)})
	rows = append(rows, reasonRows(s.FailedByReason)...)
	rows = append(rows, []string{"Bytes placed", humanize.Bytes(uint64(max(s.BytesPlaced, 0)))})

	if cfg != nil && cfg.Sort.DeleteSource {
		deleted := strconv.Itoa(s.SourcesDeleted)
		switch {
		case s.Aborted:
			deleted = "skipped (run aborted)"
		case s.DeletionDeclined:
			deleted = "declined"
		}
		rows = append(rows,
			[]string{"Sources deleted", deleted},
			[]string{"Deletion failures", strconv.Itoa(s.DeletionFailures)},
		)
	}
	if s.ArchivePath != "" {
		rows = append(rows, []string{"Archive", fmt.Sprintf("%s (%d entries)", s.ArchivePath, s.ArchiveEntries)})
	}
	return rows
}

func reasonRows(counts map[services.Reason]int) [][]string {
	var rows [][]string
	for _, reason := range reasonOrder {
		if n := counts[reason]; n > 0 {
			rows = append(rows, []string{"  " + strings.ReplaceAll(string(reason), "_", " "), strconv.Itoa(n)})
		}
	}
	return rows
}

func renderSummary(s placement.Summary, cfg *config.Config) string {
	return renderTable([]string{"Result", "Files"}, summaryRows(s, cfg), []columnAlignment{alignLeft, alignRight})
}
