package service

import (
	"regexp"
	"strings"

	"github.com/medreport-assistant-server/internal/domain"
)

// labValuePattern matches one lab result line: an uppercase label of letters,
// digits and spaces (2-31 chars total), a separator, a decimal value and an
// optional status token. The label is greedy up to its length cap, so trailing
// words with no digit boundary become part of the label. That looseness is
// intentional; this is a best-effort extractor, not a validating parser.
var labValuePattern = regexp.MustCompile(`([A-Z][A-Z0-9\s]{1,30})[:\s]+([\d.]+)\s*(HIGH|LOW|NORMAL)?`)

// ParseLabValues scans report text line by line and extracts lab observations
// keyed by parameter name. Lines that do not match are skipped silently; a
// later line with the same label overwrites the earlier entry. There is no
// failure mode, only an empty result when nothing matches.
func ParseLabValues(text string) map[string]domain.LabObservation {
	observations := make(map[string]domain.LabObservation)

	for _, line := range strings.Split(text, "\n") {
		match := labValuePattern.FindStringSubmatch(strings.ToUpper(line))
		if match == nil {
			continue
		}

		name := strings.TrimSpace(match[1])
		observations[name] = domain.LabObservation{
			Value:  match[2],
			Status: parseStatus(match[3]),
		}
	}

	return observations
}

// parseStatus maps the optional status token to an ObservationStatus,
// defaulting to Normal when no explicit marker is present.
func parseStatus(token string) domain.ObservationStatus {
	switch token {
	case "HIGH":
		return domain.StatusHigh
	case "LOW":
		return domain.StatusLow
	default:
		return domain.StatusNormal
	}
}
