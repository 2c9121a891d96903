package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreport-assistant-server/internal/domain"
)

func TestOfflineSummary_Empty(t *testing.T) {
	assert.Equal(t, MsgUnableToInterpret, OfflineSummary(nil))
	assert.Equal(t, MsgUnableToInterpret, OfflineSummary(map[string]domain.LabObservation{}))
}

func TestOfflineSummary_AllSections(t *testing.T) {
	observations := map[string]domain.LabObservation{
		"GLUCOSE":    {Value: "180", Status: domain.StatusHigh},
		"HEMOGLOBIN": {Value: "13.5", Status: domain.StatusNormal},
		"SODIUM":     {Value: "128", Status: domain.StatusLow},
	}

	expected := "Normal Values:\n" +
		"- HEMOGLOBIN: 13.5\n\n" +
		"High Values:\n" +
		"- GLUCOSE: 180 ↑\n\n" +
		"Low Values:\n" +
		"- SODIUM: 128 ↓\n\n" +
		"Recommendation:\n" +
		"- Please consult a qualified medical professional."

	assert.Equal(t, expected, OfflineSummary(observations))
}

func TestOfflineSummary_OmitsEmptySections(t *testing.T) {
	observations := map[string]domain.LabObservation{
		"WBC": {Value: "11.2", Status: domain.StatusHigh},
	}

	summary := OfflineSummary(observations)

	assert.NotContains(t, summary, "Normal Values:")
	assert.NotContains(t, summary, "Low Values:")
	assert.Contains(t, summary, "High Values:\n- WBC: 11.2 ↑")
	assert.True(t, strings.HasSuffix(summary, "Recommendation:\n- Please consult a qualified medical professional."))
}

func TestOfflineSummary_FromParsedText(t *testing.T) {
	observations := ParseLabValues("GLUCOSE: 180 HIGH\nWBC: 6.2")

	require.Equal(t, map[string]domain.LabObservation{
		"GLUCOSE": {Value: "180", Status: domain.StatusHigh},
		"WBC":     {Value: "6.2", Status: domain.StatusNormal},
	}, observations)

	summary := OfflineSummary(observations)
	assert.Contains(t, summary, "Normal Values:\n- WBC: 6.2")
	assert.Contains(t, summary, "High Values:\n- GLUCOSE: 180 ↑")
}

func TestOfflineSummary_Deterministic(t *testing.T) {
	observations := map[string]domain.LabObservation{
		"SODIUM":     {Value: "140", Status: domain.StatusNormal},
		"POTASSIUM":  {Value: "4.1", Status: domain.StatusNormal},
		"CHLORIDE":   {Value: "101", Status: domain.StatusNormal},
		"CALCIUM":    {Value: "9.4", Status: domain.StatusNormal},
		"CREATININE": {Value: "0.9", Status: domain.StatusNormal},
	}

	first := OfflineSummary(observations)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, OfflineSummary(observations))
	}

	// Names come out sorted within a section.
	assert.Contains(t, first, "- CALCIUM: 9.4\n- CHLORIDE: 101\n- CREATININE: 0.9")
}
