package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/freedlm/fdm/internal/transfer"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("fdm"))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(helpStyle.Render("No transfers yet. Use `fdm start <url>` to queue one.\n\n"))
	}

	for i, rec := range m.records {
		b.WriteString(m.renderRow(i, rec))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("p pause  r resume  c cancel  R restart  x remove  y copy path  q quit"))
	return b.String()
}

func (m Model) renderRow(i int, rec *transfer.Record) string {
	cursor := "  "
	style := rowStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedRowStyle
	}

	bar := ""
	if bm, ok := m.bars[rec.ID]; ok && rec.TotalBytes != nil && *rec.TotalBytes > 0 {
		frac := float64(rec.DownloadedBytes) / float64(*rec.TotalBytes)
		bar = " " + bm.ViewAs(frac)
	}

	size := "?"
	if rec.TotalBytes != nil {
		size = humanize.Bytes(uint64(*rec.TotalBytes))
	}
	speed := ""
	if rec.SpeedBps > 0 {
		speed = " " + humanize.Bytes(uint64(rec.SpeedBps)) + "/s"
	}

	line := fmt.Sprintf("%s%-8s %-24s %-10s %s%s%s",
		cursor, shortID(rec.ID), truncate(rec.FileName, 24), rec.Status, size, bar, speed)
	return style.Render(line)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
