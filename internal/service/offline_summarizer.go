package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medreport-assistant-server/internal/domain"
)

// Fixed user-facing messages for the guaranteed offline paths.
const (
	MsgUnableToInterpret = "Unable to interpret report content."
	MsgNoReports         = "No reports uploaded."
	MsgQuotaExceeded     = "AI quota exceeded. Please try again later."
)

// OfflineSummary renders parsed observations into a deterministic triage
// summary: Normal values first, then High, then Low, each as a bulleted line
// with a directional marker on abnormal values, closed by a fixed
// recommendation. This is the guaranteed fallback path; it never fails.
func OfflineSummary(observations map[string]domain.LabObservation) string {
	if len(observations) == 0 {
		return MsgUnableToInterpret
	}

	names := make([]string, 0, len(observations))
	for name := range observations {
		names = append(names, name)
	}
	// Map iteration order is random; sort so identical input yields
	// identical output.
	sort.Strings(names)

	var normal, high, low []string
	for _, name := range names {
		obs := observations[name]
		switch obs.Status {
		case domain.StatusHigh:
			high = append(high, fmt.Sprintf("- %s: %s ↑", name, obs.Value))
		case domain.StatusLow:
			low = append(low, fmt.Sprintf("- %s: %s ↓", name, obs.Value))
		default:
			normal = append(normal, fmt.Sprintf("- %s: %s", name, obs.Value))
		}
	}

	var sections []string
	if len(normal) > 0 {
		sections = append(sections, "Normal Values:\n"+strings.Join(normal, "\n"))
	}
	if len(high) > 0 {
		sections = append(sections, "High Values:\n"+strings.Join(high, "\n"))
	}
	if len(low) > 0 {
		sections = append(sections, "Low Values:\n"+strings.Join(low, "\n"))
	}
	sections = append(sections, "Recommendation:\n- Please consult a qualified medical professional.")

	return strings.Join(sections, "\n\n")
}
