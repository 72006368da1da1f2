// Package neuro converts a patient's recent EEG sessions into a z-scored
// neuro-score trend and a change-vs-baseline figure.
package neuro

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rewiredtx/rewire/internal/models"
)

const (
	// DefaultWindowSize is the number of most recent sessions considered.
	DefaultWindowSize = 4

	// DeltaBand is the half-width of the neutral band around zero change.
	DeltaBand = 0.3

	// FAALowThreshold and TBRHighThreshold drive the latest-reading interpretation.
	FAALowThreshold  = -0.2
	TBRHighThreshold = 0.6

	// zeroVarianceTolerance absorbs rounding noise when every value in a
	// channel is the same.
	zeroVarianceTolerance = 1e-9
)

// ErrEmptyWindow means the patient has no EEG sessions. It is a defined
// "no data" outcome and callers render an informational state for it.
var ErrEmptyWindow = errors.New("no EEG records for this patient")

// Window returns a copy of the last maxLen readings in chronological order.
// A non-positive maxLen selects DefaultWindowSize.
func Window(readings []models.EEGReading, maxLen int) []models.EEGReading {
	if maxLen <= 0 {
		maxLen = DefaultWindowSize
	}
	start := 0
	if len(readings) > maxLen {
		start = len(readings) - maxLen
	}
	out := make([]models.EEGReading, len(readings)-start)
	copy(out, readings[start:])
	return out
}

// Normalize z-scores FAA and TBR independently over the truncated window and
// averages them into a per-session neuro-score. The baseline is the first
// session of the window, latest is the last.
func Normalize(readings []models.EEGReading, maxLen int) (models.NeuroProgress, error) {
	window := Window(readings, maxLen)
	if len(window) == 0 {
		return models.NeuroProgress{}, ErrEmptyWindow
	}

	faa := make([]float64, len(window))
	tbr := make([]float64, len(window))
	for i, r := range window {
		faa[i] = r.FAA
		tbr[i] = r.TBR
	}
	faaZ := zScores(faa)
	tbrZ := zScores(tbr)

	progress := models.NeuroProgress{
		Window: make([]models.ZPair, len(window)),
		Series: make([]float64, len(window)),
	}
	for i := range window {
		progress.Window[i] = models.ZPair{FAAZ: faaZ[i], TBRZ: tbrZ[i]}
		progress.Series[i] = (faaZ[i] + tbrZ[i]) / 2
	}
	progress.Baseline = progress.Series[0]
	progress.Latest = progress.Series[len(progress.Series)-1]
	progress.Delta = progress.Latest - progress.Baseline

	return progress, nil
}

// zScores standardises values against their sample mean and standard
// deviation. When the deviation is zero or undefined (a single value) every
// z-score is 0.
func zScores(values []float64) []float64 {
	z := make([]float64, len(values))
	if len(values) < 2 {
		return z
	}

	mean, sd := stat.MeanStdDev(values, nil)
	if math.IsNaN(sd) || math.IsInf(sd, 0) || sd <= zeroVarianceTolerance*math.Max(1, math.Abs(mean)) {
		return z
	}

	for i, v := range values {
		z[i] = stat.StdScore(v, mean, sd)
	}
	return z
}
