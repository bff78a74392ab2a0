package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r in the sectioned layout the CLI prints.
func (r *Report) WriteText(w io.Writer) error {
	p := &printer{w: w}

	if r.File != "" {
		p.printf("PDB Inspect: %s (%s)\n", r.File, formatBytes(r.Size))
	} else {
		p.printf("PDB Inspect (%s)\n", formatBytes(r.Size))
	}

	p.section("Header")
	p.row("name", r.Name)
	p.row("type", r.Type)
	p.row("creator", r.Creator)
	p.row("version", fmt.Sprintf("%d", r.Version))
	attrs := "none"
	if len(r.AttributeNames) > 0 {
		attrs = strings.Join(r.AttributeNames, ", ")
	}
	p.row("attributes", fmt.Sprintf("0x%04x (%s)", r.Attributes, attrs))
	p.row("created", formatTime(r.Created))
	p.row("modified", formatTime(r.Modified))
	p.row("backup", formatTime(r.Backup))
	p.row("modification_number", fmt.Sprintf("%d", r.ModificationNumber))
	p.row("unique_id_seed", fmt.Sprintf("%d", r.UniqueIDSeed))
	p.row("next_record_list", fmt.Sprintf("%d", r.NextRecordList))

	p.section("Layout")
	p.row("app_info", formatBlock(r.AppInfo))
	p.row("sort_info", formatBlock(r.SortInfo))
	p.row("records", fmt.Sprintf("%d", r.NumRecords))
	if len(r.Categories) > 0 {
		cats := make([]int, 0, len(r.Categories))
		for c := range r.Categories {
			cats = append(cats, c)
		}
		sort.Ints(cats)
		parts := make([]string, len(cats))
		for i, c := range cats {
			parts[i] = fmt.Sprintf("%d:%d", c, r.Categories[c])
		}
		p.row("categories", strings.Join(parts, " "))
	}

	if len(r.Records) > 0 {
		p.section("Records")
		for _, rec := range r.Records {
			p.printf("#%-5d off=%-8d size=%-6d %-28s %s\n",
				rec.Index, rec.Offset, rec.Size, rec.Attributes, rec.Preview)
		}
		if r.Truncated {
			p.printf("... %d more\n", r.NumRecords-len(r.Records))
		}
	}

	if len(r.Diagnostics) > 0 {
		p.section("Diagnostics")
		for _, d := range r.Diagnostics {
			p.printf("%-10s off=%-8d %s\n", d.Region, d.Offset, d.Message)
		}
	}
	return p.err
}

// printer keeps the first write error so the layout code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	line := strings.Repeat("-", len(title)+8)
	p.printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func (p *printer) row(label, value string) {
	if value == "" {
		return
	}
	p.printf("%-24s %s\n", label+":", value)
}

func formatTime(ts Timestamp) string {
	return fmt.Sprintf("%s (%s epoch)", ts.Time.Format(time.RFC3339), ts.Epoch)
}

func formatBlock(b *Block) string {
	if b == nil {
		return "absent"
	}
	return fmt.Sprintf("off=%d size=%s", b.Offset, formatBytes(b.Size))
}

func formatBytes(n int) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.2f MiB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.2f KiB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
