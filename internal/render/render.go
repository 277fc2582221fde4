// Package render formats runs and resources as terminal tables.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	disabledStyle = cellStyle.Foreground(lipgloss.Color("#999999"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// Variables renders the state of every variable of a run.
func Variables(rc *runconfig.RunConfiguration, sig *schema.Signature) string {
	rows := make([][]string, 0, len(rc.Data))
	disabled := make(map[int]bool)
	for i, v := range rc.Data {
		typ := ""
		if sig != nil {
			if decl, ok := sig.Variable(v.Name); ok {
				typ = string(decl.Type)
			}
		}
		value := string(v.Value)
		if v.Resource != "" {
			value = "→ " + v.Resource
		}
		rows = append(rows, []string{v.Name, typ, value, strconv.FormatBool(v.Disabled)})
		disabled[i] = v.Disabled
	}

	t := newTable("VARIABLE", "TYPE", "VALUE", "DISABLED").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case disabled[row]:
				return disabledStyle
			default:
				return cellStyle
			}
		})
	return fmt.Sprintf("%s (%s, algorithm %s)\n%s", rc.Name, rc.Title, rc.Algorithm, t.String())
}

// LastUpdated renders a run's last-updated marker.
func LastUpdated(marker *resource.LastUpdated) string {
	if marker == nil {
		return "Resources never written."
	}
	return fmt.Sprintf("Last updated %s by a write to %s (revision %s).",
		marker.Updated.UTC().Format(time.RFC3339), marker.Resource, marker.Revision)
}

// Resource renders the rows of a resource. Columns follow the schema, with
// any other keys found in the rows appended in name order.
func Resource(res *resource.Resource) string {
	columns := Columns(res)
	rows := make([][]string, 0, len(res.Data))
	for _, record := range res.Data {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = Cell(record[c])
		}
		rows = append(rows, row)
	}

	t := newTable(columns...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return fmt.Sprintf("%s (%s, %d rows)\n%s", res.Name, res.Profile, len(res.Data), t.String())
}

// Columns returns the column order used to render a resource.
func Columns(res *resource.Resource) []string {
	seen := make(map[string]bool)
	var columns []string
	if res.Schema != nil {
		for _, f := range res.Schema.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				columns = append(columns, f.Name)
			}
		}
	}
	var extra []string
	for _, record := range res.Data {
		for k := range record {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

// Cell formats a row value.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
