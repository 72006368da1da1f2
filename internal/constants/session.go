package constants

// SessionState represents the current view of the TUI application
type SessionState int

const (
	StateDashboard SessionState = iota
	StatePatientSelect
	StateSessionForm
	StatePlanForm
	StateConfirmSend
	StatePlanSent
	StateConfirmSync
)
