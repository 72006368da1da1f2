package models

import (
	"fmt"
	"strings"
)

type Diagnosis string

const (
	DiagnosisPTSD Diagnosis = "PTSD"
	DiagnosisADHD Diagnosis = "ADHD"
	DiagnosisMDD  Diagnosis = "MDD"
)

// ParseDiagnosis accepts a diagnosis name in any case
func ParseDiagnosis(s string) (Diagnosis, error) {
	switch Diagnosis(strings.ToUpper(strings.TrimSpace(s))) {
	case DiagnosisPTSD:
		return DiagnosisPTSD, nil
	case DiagnosisADHD:
		return DiagnosisADHD, nil
	case DiagnosisMDD:
		return DiagnosisMDD, nil
	}
	return "", fmt.Errorf("unknown diagnosis: %q", s)
}

type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Diagnosis Diagnosis `json:"diagnosis"`
}

func (p Patient) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// Roster is the fixed set of patients enrolled in the prototype.
var Roster = []Patient{
	{ID: "RW-001", Name: "Alex Rivera", Diagnosis: DiagnosisPTSD},
	{ID: "RW-002", Name: "Jamie Chen", Diagnosis: DiagnosisADHD},
	{ID: "RW-003", Name: "Taylor Singh", Diagnosis: DiagnosisMDD},
}

// FindPatient looks a patient up by ID (case-insensitive) or exact name.
func FindPatient(idOrName string) (Patient, bool) {
	key := strings.TrimSpace(idOrName)
	for _, p := range Roster {
		if strings.EqualFold(p.ID, key) || p.Name == key {
			return p, true
		}
	}
	return Patient{}, false
}
