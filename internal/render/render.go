// Package render 使用 lipgloss 输出体检报告与 SDK 列表。
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/liangyou/gosdk/pkg/models"
)

var (
	accent  = lipgloss.Color("#00ADD8") // gopher blue
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	faintStyle = lipgloss.NewStyle().Foreground(faint)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	failStyle  = lipgloss.NewStyle().Foreground(danger)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
)

const nameWidth = 20

// Diagnosis 输出体检报告：标题框、失效 SDK 以及各自的修复建议。
func Diagnosis(d models.Diagnosis) string {
	var b strings.Builder

	status := passStyle.Render("all sdks valid")
	if !d.Healthy() {
		status = failStyle.Render(fmt.Sprintf("%d of %d sdks invalid", len(d.Invalid), d.Total))
	}
	title := headerStyle.Render("SDK Doctor")
	project := dimStyle.Render(d.Project)
	b.WriteString(boxStyle.Render(title + "\n" + project + "\n" + status))
	b.WriteString("\n")

	if d.Healthy() {
		return b.String()
	}

	b.WriteString("\n")
	for _, inv := range d.Invalid {
		b.WriteString("  " + failStyle.Render("✗") + " " + titleStyle.Render(padRight(inv.Name, nameWidth)))
		b.WriteString(" " + dimStyle.Render(expected(inv.ExpectedVersion)))
		b.WriteString("\n")
		if inv.HomePath != "" {
			b.WriteString("      " + faintStyle.Render("home: "+inv.HomePath) + "\n")
		}
		if inv.Fix == "" {
			b.WriteString("      " + warnStyle.Render("no fix available") + "\n")
			continue
		}
		b.WriteString("      " + passStyle.Render("fix ("+inv.FixKind+"): ") + inv.Fix + "\n")
	}
	return b.String()
}

// SDKTable 输出项目中的 SDK 列表，invalid 中的名称标记为失效。
func SDKTable(sdks []models.SDK, invalid map[string]bool) string {
	if len(sdks) == 0 {
		return dimStyle.Render("No SDKs configured.") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("  %-*s %-8s %-12s %s", nameWidth, "Name", "Type", "Version", "Home")
	b.WriteString(titleStyle.Render(header) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 64)) + "\n")

	for _, s := range sdks {
		mark := passStyle.Render("✓")
		if invalid[s.Name] {
			mark = failStyle.Render("✗")
		}
		line := fmt.Sprintf("%s %-*s %-8s %-12s %s", mark, nameWidth, s.Name, s.Type, orDash(s.VersionString), orDash(s.HomePath))
		b.WriteString(line + "\n")
	}
	return b.String()
}

func expected(v string) string {
	if v == "" {
		return "(no version recorded)"
	}
	return "expects " + v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
