// Package models provides domain models for the behavioral analytics application.
package models

// Session represents a trading session.
type Session string

const (
	SessionLondon Session = "LONDON"
	SessionNY     Session = "NY"
	SessionAsia   Session = "ASIA"
)

// ValidSession reports whether s is a known session value.
func ValidSession(s Session) bool {
	switch s {
	case SessionLondon, SessionNY, SessionAsia:
		return true
	}
	return false
}

// StopLossDiscipline represents how strictly a trader commits to stop losses.
type StopLossDiscipline string

const (
	StopDisciplineStrict   StopLossDiscipline = "STRICT"
	StopDisciplineFlexible StopLossDiscipline = "FLEXIBLE"
	StopDisciplineMental   StopLossDiscipline = "MENTAL"
)

// ValidStopLossDiscipline reports whether d is a known discipline value.
func ValidStopLossDiscipline(d StopLossDiscipline) bool {
	switch d {
	case StopDisciplineStrict, StopDisciplineFlexible, StopDisciplineMental:
		return true
	}
	return false
}
