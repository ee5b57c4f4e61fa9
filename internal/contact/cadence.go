package contact

import "time"

// DefaultCadenceDays maps each orbit to the number of days that may pass
// before a contact in that orbit is considered drifting.
var DefaultCadenceDays = []int{7, 14, 30, 90, 180}

// DriftState is derived from target orbit and last-contact recency.
type DriftState string

const (
	DriftUnknown  DriftState = "unknown"  // never contacted
	DriftSteady   DriftState = "steady"   // within cadence
	DriftDrifting DriftState = "drifting" // cadence exceeded
)

// CadenceThreshold returns the allowed gap for an orbit.
// cadenceDays may be nil to use DefaultCadenceDays; out-of-range orbits are clamped.
func CadenceThreshold(orbit int, cadenceDays []int) time.Duration {
	if len(cadenceDays) != MaxOrbit+1 {
		cadenceDays = DefaultCadenceDays
	}
	orbit = min(max(orbit, MinOrbit), MaxOrbit)
	return time.Duration(cadenceDays[orbit]) * 24 * time.Hour
}

// Drift computes the drift state for a contact at time now.
func Drift(orbit int, lastContactAt *int64, now time.Time, cadenceDays []int) DriftState {
	if lastContactAt == nil {
		return DriftUnknown
	}
	elapsed := now.Sub(time.Unix(*lastContactAt, 0))
	if elapsed > CadenceThreshold(orbit, cadenceDays) {
		return DriftDrifting
	}
	return DriftSteady
}
