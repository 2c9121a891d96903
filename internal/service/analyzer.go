package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/domain"
	"github.com/medreport-assistant-server/internal/reports"
)

// Analyzer orchestrates report ingestion, AI-or-offline summarization and
// question answering over the report store. Every operation terminates with
// some user-facing text; remote failures route to the offline path instead of
// propagating.
type Analyzer struct {
	store   reports.Store
	gateway domain.CompletionGateway
	logger  *logrus.Logger
}

// NewAnalyzer creates a new report analyzer.
func NewAnalyzer(store reports.Store, gateway domain.CompletionGateway, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		store:   store,
		gateway: gateway,
		logger:  logger,
	}
}

// AnalyzeReport ingests raw report text, summarizes it through the AI gateway
// when available (offline summarizer otherwise), persists the summary on the
// new record and returns it. The returned summary is never empty: AI output,
// offline output, or the fixed unable-to-interpret message.
func (a *Analyzer) AnalyzeReport(ctx context.Context, filename, text string) (string, error) {
	record := &domain.ReportRecord{
		Filename: filename,
		RawText:  text,
	}

	id, err := a.store.Append(ctx, record)
	if err != nil {
		// Summarization still proceeds; durability is best-effort here.
		a.logger.WithError(err).Error("failed to persist report record")
	}

	summary := a.summarize(ctx, text)

	if id != "" {
		if err := a.store.UpdateSummary(ctx, id, summary); err != nil {
			a.logger.WithError(err).WithField("report_id", id).Error("failed to persist summary")
		}
	}

	return summary, nil
}

// summarize runs the AI path when the gateway is available and falls back to
// the offline summarizer on unavailability or any gateway failure.
func (a *Analyzer) summarize(ctx context.Context, text string) string {
	if a.gateway != nil && a.gateway.Available() {
		summary, err := a.gateway.Complete(ctx, BuildAnalysisPrompt(text))
		if err == nil && summary != "" {
			return summary
		}
		if domain.IsQuotaExceeded(err) {
			a.logger.Warn("AI quota exceeded, falling back to offline summary")
		} else {
			a.logger.WithError(err).Warn("AI completion failed, falling back to offline summary")
		}
	}
	return OfflineSummary(ParseLabValues(text))
}

// AnswerQuestion answers a question against the accumulated report corpus.
// With an empty store it returns the fixed no-reports message. AI quota
// exhaustion surfaces the fixed quota message; any other gateway failure (or
// an unconfigured gateway) degrades to an offline summary of the re-parsed
// corpus. The offline fallback ignores the question text; it is a generic
// lab-value rendering of everything on file.
func (a *Analyzer) AnswerQuestion(ctx context.Context, question string) (string, error) {
	records, err := a.store.All(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read report store: %w", err)
	}
	if len(records) == 0 {
		return MsgNoReports, nil
	}

	combined := CombineReports(records)

	if a.gateway != nil && a.gateway.Available() {
		answer, err := a.gateway.Complete(ctx, BuildQuestionPrompt(combined, question))
		if err == nil && answer != "" {
			return answer, nil
		}
		if domain.IsQuotaExceeded(err) {
			return MsgQuotaExceeded, nil
		}
		a.logger.WithError(err).Warn("AI completion failed, falling back to offline answer")
	}

	return OfflineSummary(ParseLabValues(combined)), nil
}
