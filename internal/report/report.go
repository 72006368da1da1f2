// Package report renders a standalone HTML progress report for one patient
// with interactive charts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
)

// DeltaAxisLimit bounds the change-vs-baseline bar axis in SD units.
const DeltaAxisLimit = 2.0

// Input is everything a report shows. Biometrics and EEG are the patient's
// rows in import order; Summary is nil when the patient has no EEG sessions.
type Input struct {
	Patient     models.Patient
	Biometrics  []models.BiometricReading
	EEG         []models.EEGReading
	Summary     *neuro.Summary
	Assessment  *models.RiskAssessment
	GeneratedAt time.Time
}

// DeltaColor maps a delta class to its bar colour.
func DeltaColor(c neuro.DeltaClass) string {
	switch c {
	case neuro.DeltaImprovement:
		return "royalblue"
	case neuro.DeltaWorsening:
		return "orangered"
	default:
		return "lightgrey"
	}
}

// FormatDelta renders a neuro-score delta in SD units with an explicit sign.
func FormatDelta(delta float64) string {
	return fmt.Sprintf("%+.2f SD", delta)
}

// Render writes the HTML page to w.
func Render(w io.Writer, in Input) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s progress report", in.Patient.Name)

	if in.Assessment != nil {
		page.AddCharts(riskGauge(in))
	}
	if len(in.Biometrics) > 0 {
		page.AddCharts(biometricChart(in.Biometrics))
	}
	if len(in.EEG) > 0 {
		page.AddCharts(eegChart(in.EEG))
	}
	if in.Summary != nil {
		page.AddCharts(neuroChart(in.Summary), deltaChart(in.Summary))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteFile renders the report into dir and returns the file path.
func WriteFile(dir string, in Input) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.html", in.Patient.ID, in.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := Render(f, in); err != nil {
		return "", err
	}
	return path, f.Sync()
}

func subtitle(in Input) string {
	return fmt.Sprintf("%s · %s · generated %s · %s",
		in.Patient.ID, in.Patient.Diagnosis, in.GeneratedAt.Format("2006-01-02 15:04"), constants.DemoNotice)
}

func riskGauge(in Input) *charts.Gauge {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s Stress Risk: %s", in.Assessment.Level.Icon(), in.Assessment.Level),
			Subtitle: subtitle(in),
		}),
	)
	gauge.AddSeries("Risk", []opts.GaugeData{{Name: "Score", Value: in.Assessment.Score}})
	return gauge
}

func biometricChart(rows []models.BiometricReading) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Biometrics"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	labels := make([]string, len(rows))
	hr := make([]opts.LineData, len(rows))
	hrv := make([]opts.LineData, len(rows))
	sleep := make([]opts.LineData, len(rows))
	activity := make([]opts.LineData, len(rows))
	for i, r := range rows {
		labels[i] = fmt.Sprintf("#%d", i+1)
		if !r.Date.IsZero() {
			labels[i] = r.Date.Format(constants.DateFormat)
		}
		hr[i] = opts.LineData{Value: r.RestingHR}
		hrv[i] = opts.LineData{Value: r.HRV}
		sleep[i] = opts.LineData{Value: r.Sleep}
		activity[i] = opts.LineData{Value: r.Activity}
	}

	line.SetXAxis(labels).
		AddSeries("Resting HR (bpm)", hr).
		AddSeries("HRV (ms)", hrv).
		AddSeries("Sleep (h)", sleep).
		AddSeries("Activity (min)", activity).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func sessionLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Session %d", i+1)
	}
	return labels
}

func eegChart(rows []models.EEGReading) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "EEG Trend (FAA & TBR)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	faa := make([]opts.LineData, len(rows))
	tbr := make([]opts.LineData, len(rows))
	for i, r := range rows {
		faa[i] = opts.LineData{Value: r.FAA}
		tbr[i] = opts.LineData{Value: r.TBR}
	}
	line.SetXAxis(sessionLabels(len(rows))).
		AddSeries("FAA", faa).
		AddSeries("TBR", tbr).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func neuroChart(s *neuro.Summary) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Neuro-score",
			Subtitle: "Mean of FAA and TBR z-scores over the session window",
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	items := make([]opts.LineData, len(s.Progress.Series))
	for i, v := range s.Progress.Series {
		items[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(sessionLabels(len(items))).AddSeries("Neuro-score", items)
	return line
}

func deltaChart(s *neuro.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Change vs. baseline: %s", FormatDelta(s.Progress.Delta)),
			Subtitle: fmt.Sprintf("Better ◀ ▶ Worse · %s · latest EEG: %s", s.Class, s.Interpretation),
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -DeltaAxisLimit, Max: DeltaAxisLimit}),
	)
	bar.SetXAxis([]string{"Progress"}).AddSeries("Delta", []opts.BarData{{
		Value:     s.Progress.Delta,
		ItemStyle: &opts.ItemStyle{Color: DeltaColor(s.Class)},
	}})
	return bar
}
