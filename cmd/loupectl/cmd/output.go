package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apiclient "github.com/loupelabs/loupe/internal/api/client"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printTaskTable(tasks []domain.Task) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tNAME\tTYPE\tSTATUS\tCHANNEL\tLAST RUN\n")
	for i := range tasks {
		t := &tasks[i]
		lastRun := "-"
		if t.LastRun != nil {
			lastRun = t.LastRun.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Name, t.Type, t.Status, t.SlackChannel, lastRun)
	}
	return tw.finish()
}

func printTaskDetail(t *domain.Task) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", t.ID)
	tw.writef("Name:\t%s\n", t.Name)
	tw.writef("Type:\t%s\n", t.Type)
	tw.writef("Status:\t%s\n", t.Status)
	if t.MinPrice != nil {
		tw.writef("Min Price:\t$%.2f\n", *t.MinPrice)
	}
	if t.MaxPrice != nil {
		tw.writef("Max Price:\t$%.2f\n", *t.MaxPrice)
	}
	tw.writef("Channel:\t%s (%s)\n", t.SlackChannel, t.SlackChannelID)
	if t.LastRun != nil {
		tw.writef("Last Run:\t%s\n", t.LastRun.Format("2006-01-02 15:04:05"))
	}
	return tw.finish()
}

func printJewelryTable(matches []domain.JewelryMatch) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tMETAL\tMELT\tPROFIT\tSTATUS\n")
	for i := range matches {
		m := &matches[i]
		tw.writef("%d\t%s\t$%.2f\t%s\t%s\t%s\t%s\n",
			m.ID,
			truncate(m.EbayTitle, 40),
			m.ListedPrice,
			m.MetalType,
			dollars(m.MeltValue),
			dollars(m.ProfitScrap),
			m.Status,
		)
	}
	return tw.finish()
}

func printGemstoneTable(matches []domain.GemstoneMatch) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tSTONE\tDEAL\tRISK\tSTATUS\n")
	for i := range matches {
		m := &matches[i]
		tw.writef("%d\t%s\t$%.2f\t%s\t%d\t%d\t%s\n",
			m.ID,
			truncate(m.EbayTitle, 40),
			m.ListedPrice,
			m.StoneType,
			m.DealScore,
			m.RiskScore,
			m.Status,
		)
	}
	return tw.finish()
}

func printWatchTable(matches []domain.WatchMatch) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tBRAND\tMOVEMENT\tSTATUS\n")
	for i := range matches {
		m := &matches[i]
		tw.writef("%d\t%s\t$%.2f\t%s\t%s\t%s\n",
			m.ID,
			truncate(m.EbayTitle, 40),
			m.ListedPrice,
			m.Brand,
			m.Movement,
			m.Status,
		)
	}
	return tw.finish()
}

func printHealthTable(cycles []domain.HealthMetric) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TIMESTAMP\tDURATION\tTASKS\tFAILED\tITEMS\tMATCHES\tEXCLUDED\tMEM MB\n")
	for i := range cycles {
		c := &cycles[i]
		tw.writef("%s\t%dms\t%d\t%d\t%d\t%d\t%d\t%.1f\n",
			c.CycleTimestamp.Format("2006-01-02 15:04:05"),
			c.CycleDurationMS,
			c.TasksProcessed,
			c.TasksFailed,
			c.TotalItemsFound,
			c.TotalMatches,
			c.TotalExcluded,
			c.MemoryUsageMB,
		)
	}
	return tw.finish()
}

func printCredentialsTable(pool *apiclient.CredentialPool) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("LABEL\tAPP ID\tSTATUS\tCALLS TODAY\tLAST USED\n")
	for i := range pool.Keys {
		k := &pool.Keys[i]
		lastUsed := "-"
		if k.LastUsed != nil {
			lastUsed = k.LastUsed.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%d\t%s\n",
			k.Label, k.AppID, k.Status, k.CallsToday, lastUsed)
	}
	return tw.finish()
}

func dollars(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
