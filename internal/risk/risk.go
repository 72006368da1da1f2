// Package risk scores a patient's latest biometric snapshot into a stress
// risk level.
package risk

import "github.com/rewiredtx/rewire/internal/models"

// Rule thresholds and weights. The weights sum to MaxScore.
const (
	SleepThresholdHours      = 6.0
	ActivityThresholdMinutes = 30.0
	RestingHRThresholdBPM    = 85.0
	HRVThresholdMS           = 50.0

	SleepWeight     = 25
	ActivityWeight  = 20
	RestingHRWeight = 20
	HRVWeight       = 20
	MedsWeight      = 15

	MaxScore = SleepWeight + ActivityWeight + RestingHRWeight + HRVWeight + MedsWeight

	// Upper bounds (inclusive) of the Low and Moderate bands.
	LowUpperBound      = 30
	ModerateUpperBound = 60
)

// Rationale sentences, one per rule.
const (
	ReasonSleep     = "Sleep below 6 hours may increase stress and impair emotional regulation."
	ReasonActivity  = "Low physical activity (under 30 minutes) reduces natural stress relief."
	ReasonRestingHR = "Elevated resting heart rate (above 85 bpm) suggests physiological arousal."
	ReasonHRV       = "Low heart rate variability (under 50 ms) indicates reduced stress resilience."
	ReasonMeds      = "Missed medication reported, which may destabilise symptoms."

	// HealthyMessage is shown when no rule fires.
	HealthyMessage = "All biometric indicators are within healthy ranges."
)

type rule struct {
	weight int
	reason string
	fires  func(r models.BiometricReading, medsAdherent bool) bool
}

// rules are evaluated in this order, which is also the order of Reasons.
var rules = []rule{
	{SleepWeight, ReasonSleep, func(r models.BiometricReading, _ bool) bool { return r.Sleep < SleepThresholdHours }},
	{ActivityWeight, ReasonActivity, func(r models.BiometricReading, _ bool) bool { return r.Activity < ActivityThresholdMinutes }},
	{RestingHRWeight, ReasonRestingHR, func(r models.BiometricReading, _ bool) bool { return r.RestingHR > RestingHRThresholdBPM }},
	{HRVWeight, ReasonHRV, func(r models.BiometricReading, _ bool) bool { return r.HRV < HRVThresholdMS }},
	{MedsWeight, ReasonMeds, func(_ models.BiometricReading, medsAdherent bool) bool { return !medsAdherent }},
}

// Score applies the additive rules to a single reading. Every rule fires at
// most once, so the result is always within [0, MaxScore]. Out-of-range input
// (negative sleep, NaN) is scored as-is: NaN never satisfies a comparison.
func Score(latest models.BiometricReading, medsAdherent bool) models.RiskAssessment {
	assessment := models.RiskAssessment{Reasons: []string{}}
	for _, r := range rules {
		if r.fires(latest, medsAdherent) {
			assessment.Score += r.weight
			assessment.Reasons = append(assessment.Reasons, r.reason)
		}
	}
	assessment.Level = LevelFor(assessment.Score)
	return assessment
}

// LevelFor bands a score. Boundary values belong to the lower band.
func LevelFor(score int) models.RiskLevel {
	switch {
	case score > ModerateUpperBound:
		return models.RiskHigh
	case score > LowUpperBound:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}
