// utils/missions.go
package utils

import "strings"

// SupportedMissions are the Sentinel-1 units orbit files can be fetched for.
var SupportedMissions = []string{"S1A", "S1B"}

// NormalizeMission converts mission names like "s1a", "A" or "Sentinel-1A" to "S1A".
// Unknown values are returned upper-cased and trimmed.
func NormalizeMission(mission string) string {
	upper := strings.ToUpper(strings.TrimSpace(mission))
	upper = strings.TrimPrefix(upper, "SENTINEL-")
	switch {
	case len(upper) == 1:
		return "S1" + upper
	case len(upper) == 2 && strings.HasPrefix(upper, "1"):
		return "S" + upper
	}
	return upper
}

// IsSupportedMission reports whether mission (after normalization) is in SupportedMissions.
func IsSupportedMission(mission string) bool {
	m := NormalizeMission(mission)
	for _, s := range SupportedMissions {
		if s == m {
			return true
		}
	}
	return false
}
