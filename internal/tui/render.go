package tui

import (
	"fmt"
	"strings"

	"sqdu/internal/nav"
)

const cursor = ">> "

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	contentHeight := m.height - 3 // title, footer, hint spacing
	if contentHeight < 1 {
		contentHeight = 24
	}

	var lines []string
	switch m.state.View().Kind {
	case nav.ViewTables:
		lines = m.renderTables()
	case nav.ViewIndexes:
		lines = m.renderIndexes()
	case nav.ViewDetail:
		lines = m.renderDetail()
	}

	listIdx := -1
	if i, ok := m.state.ListIndex(); ok {
		listIdx = i
	}
	for _, line := range window(lines, listIdx, contentHeight) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTitle() string {
	switch v := m.state.View(); v.Kind {
	case nav.ViewTables:
		return titleStyle.Render(fmt.Sprintf("sqdu - disk usage - %s", m.dbPath))
	case nav.ViewIndexes:
		return titleStyle.Render(fmt.Sprintf("sqdu - indexes for %s - %s", v.Table, m.dbPath))
	case nav.ViewDetail:
		return titleStyle.Render(fmt.Sprintf("sqdu - table info: %s - %s", v.Table, m.dbPath))
	}
	return ""
}

func (m Model) rule() string {
	w := m.width
	if w <= 0 {
		w = 80
	}
	return ruleStyle.Render(strings.Repeat("─", w))
}

func (m Model) renderTables() []string {
	lines := []string{
		headerRowStyle.Render("        Size      %        Rows  Idx   Idx Size  Table"),
		m.rule(),
	}

	sel, hasSel := m.state.ListIndex()
	for i, t := range m.state.Tables() {
		pct := 0.0
		if m.total > 0 {
			pct = float64(t.SizeBytes) / float64(m.total) * 100
		}
		line := fmt.Sprintf("%9s  %5.1f%%  %10s  %3d  %9s  %s",
			formatBytes(t.SizeBytes), pct, formatCount(t.RowCount),
			t.IndexCount, formatBytes(t.IndexSizeBytes), t.Name)
		lines = append(lines, m.listLine(line, hasSel && i+nav.HeaderRows == sel))
	}
	return lines
}

func (m Model) renderIndexes() []string {
	lines := []string{
		headerRowStyle.Render("        Size  Type    Columns                                   Name"),
		m.rule(),
	}

	sel, hasSel := m.state.ListIndex()
	for i, ix := range m.state.Indexes() {
		kind := "INDEX "
		if ix.Unique {
			kind = "UNIQUE"
		}
		partial := ""
		if ix.Partial {
			partial = " [PARTIAL]"
		}
		line := fmt.Sprintf("%9s  %s  %-40s  %s%s",
			formatBytes(ix.SizeBytes), kind, ix.Columns, ix.Name, partial)
		lines = append(lines, m.listLine(line, hasSel && i+nav.HeaderRows == sel))
	}
	return lines
}

func (m Model) listLine(line string, selected bool) string {
	if selected {
		return selectedStyle.Render(cursor + line)
	}
	return "   " + line
}

func (m Model) renderDetail() []string {
	detail, ok := m.state.Detail()
	if !ok {
		return []string{"loading table details..."}
	}

	var lines []string
	lines = append(lines, sectionStyle.Render("━━━ CREATE TABLE Statement ━━━"))
	lines = append(lines, strings.Split(detail.DDL, "\n")...)
	lines = append(lines, "")

	lines = append(lines, sectionStyle.Render("━━━ Columns ━━━"))
	for _, col := range detail.Columns {
		var sb strings.Builder
		sb.WriteString("  • ")
		sb.WriteString(colNameStyle.Render(col.Name))
		if col.PK {
			sb.WriteString(pkStyle.Render(" [PK]"))
		}
		sb.WriteString(": ")
		sb.WriteString(colTypeStyle.Render(col.Type))
		if col.NotNull {
			sb.WriteString(notNullStyle.Render(" NOT NULL"))
		}
		if col.HasDefault {
			sb.WriteString(" DEFAULT " + col.DefaultValue)
		}
		lines = append(lines, sb.String())
	}
	lines = append(lines, "")

	if len(detail.ForeignKeys) > 0 {
		lines = append(lines, sectionStyle.Render("━━━ Foreign Keys ━━━"))
		for _, fk := range detail.ForeignKeys {
			lines = append(lines, fmt.Sprintf("  • %s -> %s.%s (UPDATE: %s, DELETE: %s)",
				fk.FromColumn, fk.ToTable, fk.ToColumn, fk.OnUpdate, fk.OnDelete))
		}
		lines = append(lines, "")
	}

	if len(detail.Triggers) > 0 {
		lines = append(lines, sectionStyle.Render("━━━ Triggers ━━━"))
		for _, trigger := range detail.Triggers {
			lines = append(lines, "  • "+trigger)
		}
	}

	if off := m.state.Scroll(); off > 0 {
		if off >= len(lines) {
			return nil
		}
		lines = lines[off:]
	}
	return lines
}

func (m Model) renderFooter() string {
	var info, hint string
	switch m.state.View().Kind {
	case nav.ViewTables:
		if t, ok := m.state.SelectedTable(); ok {
			info = fmt.Sprintf("Selected: %s (%s, %s rows)",
				t.Name, formatBytes(t.SizeBytes), formatCount(t.RowCount))
		}
		hint = "enter: indexes | i: info | q: quit | ↑↓: navigate"
	case nav.ViewIndexes:
		if ix, ok := m.state.SelectedIndex(); ok {
			info = fmt.Sprintf("Selected: %s (%s)", ix.Name, formatBytes(ix.SizeBytes))
			if ix.Partial {
				info += " | WHERE " + ix.PartialClause
			}
		}
		hint = "backspace: back | i: info | q: quit | ↑↓: navigate"
	case nav.ViewDetail:
		hint = "backspace: back | q: quit | ↑↓: scroll"
	}

	total := fmt.Sprintf("Total: %s", formatBytes(m.total))
	if info == "" {
		return footerStyle.Render(total + " | " + hint)
	}
	return footerStyle.Render(info + " | " + total + " | " + hint)
}

// window slices lines to height rows, shifting so the highlighted row stays
// visible. highlight < 0 means no highlight.
func window(lines []string, highlight, height int) []string {
	if len(lines) <= height {
		return lines
	}
	start := 0
	if highlight >= height {
		start = highlight - height + 1
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
