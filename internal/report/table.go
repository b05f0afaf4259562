package report

import (
	"cmp"
	"html"
	"strings"

	"github.com/signalnine/seedbench/internal/group"
	"github.com/signalnine/seedbench/internal/record"
)

// Table lays out cells on a grid: one row per row bucket and one column per
// column bucket, each axis starting with its overview bucket.
type Table[R, C cmp.Ordered] struct {
	Rows    group.Grouper[R]
	Columns group.Grouper[C]
	Cell    Cell
}

func (t *Table[R, C]) Render(candidate, baseline []record.Record) string {
	all := make([]record.Record, 0, len(candidate)+len(baseline))
	all = append(all, candidate...)
	all = append(all, baseline...)
	rowBuckets := t.Rows.AllBuckets(all)
	colBuckets := t.Columns.AllBuckets(all)

	var b strings.Builder
	b.WriteString("<table>")
	b.WriteString("<tr> <th></th>")
	for _, col := range colBuckets {
		b.WriteString("<th>" + html.EscapeString(col.String()) + "</th>")
	}
	b.WriteString("</tr>")

	for _, row := range rowBuckets {
		b.WriteString("<tr>")
		b.WriteString("<th>" + html.EscapeString(row.String()) + "</th>")
		for _, col := range colBuckets {
			cand := t.filter(candidate, row, col)
			base := t.filter(baseline, row, col)
			if t.Rows.IsOverview(row) || t.Columns.IsOverview(col) {
				b.WriteString(`<td align="right" bgcolor=#eee>`)
			} else {
				b.WriteString(`<td align="right">`)
			}
			b.WriteString(t.Cell.Render(cand, base))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func (t *Table[R, C]) filter(records []record.Record, row group.Bucket[R], col group.Bucket[C]) []record.Record {
	var out []record.Record
	for _, r := range records {
		if t.Rows.Belongs(r, row) && t.Columns.Belongs(r, col) {
			out = append(out, r)
		}
	}
	return out
}
