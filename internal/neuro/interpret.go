package neuro

import "github.com/rewiredtx/rewire/internal/models"

// DeltaClass buckets the change vs. baseline for display. A more negative
// neuro-score counts as improvement.
type DeltaClass string

const (
	DeltaImprovement DeltaClass = "improvement"
	DeltaNeutral     DeltaClass = "neutral"
	DeltaWorsening   DeltaClass = "worsening"
)

// ClassifyDelta applies the ±DeltaBand thresholds. Values exactly on the
// band edge are neutral.
func ClassifyDelta(delta float64) DeltaClass {
	switch {
	case delta < -DeltaBand:
		return DeltaImprovement
	case delta > DeltaBand:
		return DeltaWorsening
	default:
		return DeltaNeutral
	}
}

type Interpretation string

const (
	InterpretDysregulation       Interpretation = "dysregulation"
	InterpretLowMood             Interpretation = "low mood/motivation"
	InterpretAttention           Interpretation = "attention difficulty"
	InterpretWithinExpectedRange Interpretation = "within expected range"
)

// Describe returns the clinician-facing sentence for an interpretation.
func (i Interpretation) Describe() string {
	switch i {
	case InterpretDysregulation:
		return "Low frontal alpha asymmetry with elevated theta/beta ratio suggests emotional and attentional dysregulation."
	case InterpretLowMood:
		return "Low frontal alpha asymmetry is associated with withdrawal, low mood or reduced motivation."
	case InterpretAttention:
		return "Elevated theta/beta ratio is associated with attention difficulty."
	default:
		return "Latest EEG markers are within the expected range."
	}
}

// Interpret classifies a single raw reading. Branches are evaluated in order
// and the first match wins.
func Interpret(r models.EEGReading) Interpretation {
	lowFAA := r.FAA < FAALowThreshold
	highTBR := r.TBR > TBRHighThreshold
	switch {
	case lowFAA && highTBR:
		return InterpretDysregulation
	case lowFAA:
		return InterpretLowMood
	case highTBR:
		return InterpretAttention
	default:
		return InterpretWithinExpectedRange
	}
}

// Summary bundles everything the dashboard shows for a patient's EEG.
type Summary struct {
	Progress       models.NeuroProgress
	Class          DeltaClass
	Latest         models.EEGReading
	Interpretation Interpretation
}

// Summarize normalizes the window and interprets its most recent reading.
// It returns ErrEmptyWindow when there is nothing to summarize.
func Summarize(readings []models.EEGReading, maxLen int) (Summary, error) {
	progress, err := Normalize(readings, maxLen)
	if err != nil {
		return Summary{}, err
	}
	latest := readings[len(readings)-1]
	return Summary{
		Progress:       progress,
		Class:          ClassifyDelta(progress.Delta),
		Latest:         latest,
		Interpretation: Interpret(latest),
	}, nil
}
