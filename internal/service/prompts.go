package service

import (
	"fmt"
	"strings"

	"github.com/medreport-assistant-server/internal/domain"
)

// BuildAnalysisPrompt constructs the report analysis prompt. The model is
// asked for a patient-friendly, non-diagnostic summary and told not to invent
// values that are not in the report.
func BuildAnalysisPrompt(content string) string {
	return fmt.Sprintf(`You are a medical assistant.

Tasks:
1. Patient-friendly summary
2. Highlight abnormal values
3. Simple explanation (non-diagnostic)
4. Whether doctor consultation is advised

Rules:
- Do NOT diagnose
- Do NOT assume missing values

Medical Report:
%s`, content)
}

// BuildQuestionPrompt constructs the strict-grounding question prompt over
// the combined report corpus. The model must answer only from the provided
// reports and say explicitly when data is missing.
func BuildQuestionPrompt(combinedReports, question string) string {
	return fmt.Sprintf(`Answer ONLY using the provided report data.

Rules:
- Do not guess
- Do not add new medical facts
- If data is missing, clearly say so

Reports:
%s

Question:
%s`, combinedReports, question)
}

// CombineReports concatenates the raw text of all records in store order,
// each block prefixed by its filename.
func CombineReports(records []*domain.ReportRecord) string {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", rec.Filename, rec.RawText))
	}
	return strings.Join(blocks, "\n\n")
}
