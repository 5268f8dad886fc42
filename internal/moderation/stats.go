package moderation

import (
	"context"
	"math"

	"github.com/edgard/sentinela/internal/database"
)

// ClassificationStat is the per-classification slice of the cumulative
// report.
type ClassificationStat struct {
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// CumulativeStats is the all-time report. Accuracy is the percentage of
// feedback-bearing decisions marked CORRECT, 0 when no feedback exists.
type CumulativeStats struct {
	Error           string                        `json:"error,omitempty"`
	Classifications map[string]ClassificationStat `json:"classification_stats"`
	Accuracy        float64                       `json:"accuracy"`
	TotalMessages   int                           `json:"total_messages"`
}

// DailyStats is the report for the current calendar date. "Flagged"
// counts CONTEXT_DEPENDENT verdicts; "Deleted" counts DELETE_MESSAGE
// actions. Improvement is today's accuracy minus the accuracy of the
// day exactly one week earlier, and is 0 when either window has no
// feedback.
type DailyStats struct {
	Error           string  `json:"error,omitempty"`
	DailyMessages   int     `json:"daily_messages"`
	Approved        int     `json:"approved"`
	Flagged         int     `json:"flagged"`
	Deleted         int     `json:"deleted"`
	Accuracy        float64 `json:"accuracy"`
	WeekAgoAccuracy float64 `json:"week_ago_accuracy"`
	Improvement     float64 `json:"improvement"`
	TotalProcessed  int     `json:"total_messages_processed"`
}

// CumulativeStats computes the all-time report. On a store failure it
// returns a zeroed report with the Error field set alongside the error,
// so callers can always emit something parsable.
func (s *Service) CumulativeStats(ctx context.Context) (*CumulativeStats, error) {
	stats := &CumulativeStats{Classifications: map[string]ClassificationStat{}}

	counts, err := s.store.ClassificationCounts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cumulative stats aggregation failed", "error", err)
		stats.Error = err.Error()
		return stats, err
	}
	for _, c := range counts {
		stats.Classifications[c.Classification] = ClassificationStat{
			Count:         c.Count,
			AvgConfidence: c.AvgConfidence,
		}
		stats.TotalMessages += c.Count
	}

	totals, err := s.store.FeedbackTotals(ctx, "")
	if err != nil {
		s.logger.ErrorContext(ctx, "Cumulative stats aggregation failed", "error", err)
		stats.Error = err.Error()
		return stats, err
	}
	stats.Accuracy = accuracyPercent(totals)

	return stats, nil
}

// DailyStats computes the report for today's local calendar date plus
// the week-over-week accuracy trend. Failures degrade to a zeroed,
// error-annotated report.
func (s *Service) DailyStats(ctx context.Context) (*DailyStats, error) {
	stats := &DailyStats{}

	now := s.now()
	today := now.Format(database.DateLayout)
	weekAgo := now.AddDate(0, 0, -7).Format(database.DateLayout)

	counts, err := s.store.DailyCounts(ctx, today)
	if err != nil {
		return s.failDaily(ctx, err)
	}
	stats.DailyMessages = counts.Messages
	stats.Approved = counts.Approved
	stats.Flagged = counts.Flagged
	stats.Deleted = counts.Deleted

	todayFeedback, err := s.store.FeedbackTotals(ctx, today)
	if err != nil {
		return s.failDaily(ctx, err)
	}
	weekAgoFeedback, err := s.store.FeedbackTotals(ctx, weekAgo)
	if err != nil {
		return s.failDaily(ctx, err)
	}

	stats.Accuracy = roundOneDecimal(accuracyPercent(todayFeedback))
	stats.WeekAgoAccuracy = roundOneDecimal(accuracyPercent(weekAgoFeedback))
	if todayFeedback.Total > 0 && weekAgoFeedback.Total > 0 {
		stats.Improvement = roundOneDecimal(stats.Accuracy - stats.WeekAgoAccuracy)
	}

	classCounts, err := s.store.ClassificationCounts(ctx)
	if err != nil {
		return s.failDaily(ctx, err)
	}
	for _, c := range classCounts {
		stats.TotalProcessed += c.Count
	}

	return stats, nil
}

// failDaily discards anything computed so far: the degraded report is
// all zeros plus the error annotation.
func (s *Service) failDaily(ctx context.Context, err error) (*DailyStats, error) {
	s.logger.ErrorContext(ctx, "Daily stats aggregation failed", "error", err)
	return &DailyStats{Error: err.Error()}, err
}

// accuracyPercent is the CORRECT share of feedback-bearing decisions,
// as a percentage. No feedback means 0, never a division fault.
func accuracyPercent(totals database.FeedbackTotals) float64 {
	if totals.Total == 0 {
		return 0
	}
	return float64(totals.Correct) / float64(totals.Total) * 100
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
