// Package parseinput implements the external input-file grammar (spec.md
// section 6): PARAMETERS;/INTERVAL;/FUNCTIONS;/END;, a small
// whitespace-insensitive, semicolon-terminated statement language. It is a
// hand-written line/statement scanner built on io and strings -- no
// ecosystem parser generator appears anywhere in the retrieved corpus, and
// the grammar is small and flat enough that one isn't warranted.
package parseinput

import "strings"

// GeneralParameters holds every PARAMETERS key the grammar recognises,
// with the solver's defaults.
type GeneralParameters struct {
	NumThreads          int
	RelApproxTol        float64
	AbsApproxTol        float64
	TargetTol           float64
	GoodZerosFactor     float64
	MinGoodZerosTol     float64
	ApproximationDegree int
	MaxLevel            int
	TrackIntervals      bool
	TrackProgress       bool
	UseTimer            bool
}

// DefaultGeneralParameters returns the parameter set used for any key the
// input file does not set explicitly.
func DefaultGeneralParameters() GeneralParameters {
	return GeneralParameters{
		NumThreads:          -1,
		RelApproxTol:        1e-12,
		AbsApproxTol:        1e-12,
		TargetTol:           1e-15,
		GoodZerosFactor:     10,
		MinGoodZerosTol:     1e-9,
		ApproximationDegree: 2,
		MaxLevel:            50,
		TrackIntervals:      false,
		TrackProgress:       false,
		UseTimer:            false,
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true":
		return true, true
	case "n", "no", "f", "false":
		return false, true
	default:
		return false, false
	}
}
