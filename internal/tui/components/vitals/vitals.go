// Package vitals renders the patient's biometric snapshot, EEG trend and
// risk assessment panels.
package vitals

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
	"github.com/rewiredtx/rewire/internal/report"
	"github.com/rewiredtx/rewire/internal/risk"
)

// DeltaAxisWidth is the number of cells in the delta bar.
const DeltaAxisWidth = 41

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	// Same colours as the HTML report
	deltaColors = map[string]lipgloss.Color{
		"royalblue": lipgloss.Color("#4169E1"),
		"orangered": lipgloss.Color("#FF4500"),
		"lightgrey": lipgloss.Color("#D3D3D3"),
	}

	riskColors = map[models.RiskLevel]lipgloss.Color{
		models.RiskHigh:     lipgloss.Color("196"),
		models.RiskModerate: lipgloss.Color("214"),
		models.RiskLow:      lipgloss.Color("42"),
	}
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// Biometrics renders the latest wearable reading.
func Biometrics(r *models.BiometricReading) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Latest biometrics") + "\n")
	if r == nil {
		b.WriteString(mutedStyle.Render("No biometric data for this patient. Press 's' to sync data."))
		return b.String()
	}
	if !r.Date.IsZero() {
		b.WriteString(mutedStyle.Render(r.Date.Format("Mon 2 Jan 2006")) + "\n")
	}
	b.WriteString(row("Resting HR", fmt.Sprintf("%.0f bpm", r.RestingHR)) + "\n")
	b.WriteString(row("HRV", fmt.Sprintf("%.0f ms", r.HRV)) + "\n")
	b.WriteString(row("Sleep", fmt.Sprintf("%.1f h", r.Sleep)) + "\n")
	b.WriteString(row("Activity", fmt.Sprintf("%.0f min", r.Activity)))
	return b.String()
}

// EEGTrend renders the raw FAA/TBR window with the neuro-score and the change
// vs. baseline.
func EEGTrend(window []models.EEGReading, s *neuro.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EEG trend") + "\n")
	if s == nil || len(window) == 0 {
		b.WriteString(mutedStyle.Render("No EEG sessions yet."))
		return b.String()
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-9s %7s %7s %8s", "Session", "FAA", "TBR", "Score")) + "\n")
	for i, r := range window {
		b.WriteString(fmt.Sprintf("%-9d %7.2f %7.2f %+8.2f\n", r.Session, r.FAA, r.TBR, s.Progress.Series[i]))
	}
	b.WriteString("\n")
	b.WriteString(row("Change", report.FormatDelta(s.Progress.Delta)+" ("+string(s.Class)+")") + "\n")
	b.WriteString(DeltaBar(s.Progress.Delta, s.Class, DeltaAxisWidth) + "\n")
	b.WriteString(mutedStyle.Render("Better ◀") + strings.Repeat(" ", max(0, DeltaAxisWidth-16)) + mutedStyle.Render("▶ Worse") + "\n\n")
	b.WriteString(s.Interpretation.Describe())
	return b.String()
}

// deltaCells returns the bar cell for the axis centre and for delta on a
// [-2, 2] axis of width cells.
func deltaCells(delta float64, width int) (center, pos int) {
	limit := report.DeltaAxisLimit
	if math.IsNaN(delta) {
		delta = 0
	}
	delta = math.Max(-limit, math.Min(limit, delta))
	center = (width - 1) / 2
	pos = int(math.Round((delta + limit) / (2 * limit) * float64(width-1)))
	return center, pos
}

// DeltaBar draws delta as a horizontal bar growing from the centre of a
// fixed [-2, 2] axis, coloured by class.
func DeltaBar(delta float64, class neuro.DeltaClass, width int) string {
	if width < 3 {
		width = 3
	}
	center, pos := deltaCells(delta, width)
	lo, hi := min(center, pos), max(center, pos)

	fill := lipgloss.NewStyle().Foreground(deltaColors[report.DeltaColor(class)])
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == center && pos == center:
			b.WriteString("┼")
		case i >= lo && i <= hi:
			b.WriteString(fill.Render("█"))
		case i == center:
			b.WriteString("┼")
		default:
			b.WriteString("─")
		}
	}
	return b.String()
}

// Risk renders the assessment banner and its reasons.
func Risk(a *models.RiskAssessment) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Stress risk") + "\n")
	if a == nil {
		b.WriteString(mutedStyle.Render("Not assessed in this visit. Press 'a' to start the session form."))
		return b.String()
	}
	level := lipgloss.NewStyle().Bold(true).Foreground(riskColors[a.Level])
	b.WriteString(level.Render(fmt.Sprintf("%s %s", a.Level.Icon(), a.Level)))
	b.WriteString(fmt.Sprintf("  Score %d/100\n", a.Score))
	if len(a.Reasons) == 0 {
		b.WriteString("✓ " + risk.HealthyMessage)
		return b.String()
	}
	for i, reason := range a.Reasons {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + reason)
	}
	return b.String()
}
