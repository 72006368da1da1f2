package vitals

import (
	"math"
	"strings"
	"testing"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
)

func TestDeltaCells(t *testing.T) {
	tests := []struct {
		name    string
		delta   float64
		wantPos int
	}{
		{"zero at centre", 0, 20},
		{"lower bound", -2, 0},
		{"upper bound", 2, 40},
		{"clamped below", -5, 0},
		{"clamped above", 9, 40},
		{"half", 1, 30},
		{"nan treated as zero", math.NaN(), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, pos := deltaCells(tt.delta, DeltaAxisWidth)
			if center != 20 {
				t.Errorf("center = %d, want 20", center)
			}
			if pos != tt.wantPos {
				t.Errorf("pos = %d, want %d", pos, tt.wantPos)
			}
		})
	}
}

func TestDeltaBarWidth(t *testing.T) {
	for _, delta := range []float64{-2, -0.5, 0, 0.31, 2} {
		bar := DeltaBar(delta, neuro.ClassifyDelta(delta), 21)
		// Strip styling by counting runes of the glyphs we draw.
		n := strings.Count(bar, "█") + strings.Count(bar, "─") + strings.Count(bar, "┼")
		if n != 21 {
			t.Errorf("delta %v: bar has %d cells, want 21", delta, n)
		}
	}
	if !strings.Contains(DeltaBar(0, neuro.DeltaNeutral, 21), "┼") {
		t.Error("a zero delta should show the centre mark")
	}
}

func TestPanelsWithoutData(t *testing.T) {
	if !strings.Contains(Biometrics(nil), "sync data") {
		t.Error("expected a sync hint without biometrics")
	}
	if !strings.Contains(EEGTrend(nil, nil), "No EEG sessions") {
		t.Error("expected an empty EEG message")
	}
	if !strings.Contains(Risk(nil), "Not assessed") {
		t.Error("expected a not-assessed message")
	}
}

func TestPanels(t *testing.T) {
	r := &models.BiometricReading{PatientID: "RW-002", RestingHR: 90, HRV: 40, Sleep: 5, Activity: 20}
	if out := Biometrics(r); !strings.Contains(out, "90 bpm") || !strings.Contains(out, "5.0 h") {
		t.Errorf("unexpected biometrics panel:\n%s", out)
	}

	window := []models.EEGReading{
		{PatientID: "RW-001", Session: 1, FAA: -0.3, TBR: 0.65},
		{PatientID: "RW-001", Session: 2, FAA: -0.1, TBR: 0.7},
	}
	s, err := neuro.Summarize(window, neuro.DefaultWindowSize)
	if err != nil {
		t.Fatal(err)
	}
	out := EEGTrend(window, &s)
	if !strings.Contains(out, "SD (worsening)") || !strings.Contains(out, s.Interpretation.Describe()) {
		t.Errorf("unexpected EEG panel:\n%s", out)
	}

	a := &models.RiskAssessment{Score: 45, Level: models.RiskModerate, Reasons: []string{"Sleep", "HRV"}}
	if out := Risk(a); !strings.Contains(out, "Score 45/100") || !strings.Contains(out, "• HRV") {
		t.Errorf("unexpected risk panel:\n%s", out)
	}
}
