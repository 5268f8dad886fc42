package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/edgard/sentinela/internal/database"
)

func TestCumulativeStats(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.classCounts = []database.ClassificationCount{
		{Classification: "APPROVED", Count: 7, AvgConfidence: 0.91},
		{Classification: "CLEAR_VIOLATION", Count: 2, AvgConfidence: 0.88},
		{Classification: "CONTEXT_DEPENDENT", Count: 1, AvgConfidence: 0.5},
	}
	store.feedbackTotals[""] = database.FeedbackTotals{Total: 4, Correct: 3}
	svc := NewService(nil, store, nil)

	stats, err := svc.CumulativeStats(context.Background())
	if err != nil {
		t.Fatalf("CumulativeStats returned error: %v", err)
	}

	if stats.TotalMessages != 10 {
		t.Errorf("total_messages = %d, want 10", stats.TotalMessages)
	}
	if stats.Accuracy != 75 {
		t.Errorf("accuracy = %v, want 75", stats.Accuracy)
	}
	approved := stats.Classifications["APPROVED"]
	if approved.Count != 7 || approved.AvgConfidence != 0.91 {
		t.Errorf("APPROVED stat = %+v", approved)
	}
	if stats.Error != "" {
		t.Errorf("error = %q, want empty", stats.Error)
	}
}

func TestCumulativeStatsNoFeedback(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.classCounts = []database.ClassificationCount{
		{Classification: "APPROVED", Count: 3, AvgConfidence: 0.9},
	}
	svc := NewService(nil, store, nil)

	stats, err := svc.CumulativeStats(context.Background())
	if err != nil {
		t.Fatalf("CumulativeStats returned error: %v", err)
	}
	if stats.Accuracy != 0 {
		t.Errorf("accuracy with no feedback = %v, want 0", stats.Accuracy)
	}
}

func TestCumulativeStatsDegradation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.classErr = errors.New("no such table: decisions")
	svc := NewService(nil, store, nil)

	stats, err := svc.CumulativeStats(context.Background())
	if err == nil {
		t.Fatal("CumulativeStats should report the store failure")
	}
	if stats == nil {
		t.Fatal("degraded report must still be returned")
	}
	if stats.Error == "" {
		t.Error("degraded report must carry the error annotation")
	}
	if stats.TotalMessages != 0 || stats.Accuracy != 0 {
		t.Errorf("degraded report must be zeroed, got %+v", stats)
	}
}

func TestDailyStats(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.daily["2025-06-15"] = database.DailyCounts{Messages: 12, Approved: 9, Flagged: 2, Deleted: 1}
	store.feedbackTotals["2025-06-15"] = database.FeedbackTotals{Total: 5, Correct: 4}
	store.feedbackTotals["2025-06-08"] = database.FeedbackTotals{Total: 5, Correct: 3}
	store.classCounts = []database.ClassificationCount{
		{Classification: "APPROVED", Count: 80},
		{Classification: "CLEAR_VIOLATION", Count: 20},
	}
	svc := NewService(nil, store, nil)
	svc.now = fixedTime

	stats, err := svc.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("DailyStats returned error: %v", err)
	}

	if stats.DailyMessages != 12 || stats.Approved != 9 || stats.Flagged != 2 || stats.Deleted != 1 {
		t.Errorf("daily counts = %+v", stats)
	}
	if stats.Accuracy != 80 {
		t.Errorf("accuracy = %v, want 80", stats.Accuracy)
	}
	if stats.WeekAgoAccuracy != 60 {
		t.Errorf("week_ago_accuracy = %v, want 60", stats.WeekAgoAccuracy)
	}
	if stats.Improvement != 20.0 {
		t.Errorf("improvement = %v, want 20.0", stats.Improvement)
	}
	if stats.TotalProcessed != 100 {
		t.Errorf("total_messages_processed = %d, want 100", stats.TotalProcessed)
	}
}

func TestDailyStatsAccuracyRounding(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	// 2 of 3 correct = 66.666...%, rounded to one decimal.
	store.feedbackTotals["2025-06-15"] = database.FeedbackTotals{Total: 3, Correct: 2}
	svc := NewService(nil, store, nil)
	svc.now = fixedTime

	stats, err := svc.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("DailyStats returned error: %v", err)
	}
	if stats.Accuracy != 66.7 {
		t.Errorf("accuracy = %v, want 66.7", stats.Accuracy)
	}
}

func TestDailyStatsEmptyWindows(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(nil, store, nil)
	svc.now = fixedTime

	stats, err := svc.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("DailyStats returned error: %v", err)
	}
	if stats.Accuracy != 0 || stats.WeekAgoAccuracy != 0 || stats.Improvement != 0 {
		t.Errorf("empty windows must report zeros, got %+v", stats)
	}
}

func TestDailyStatsImprovementNeedsBothWindows(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.feedbackTotals["2025-06-15"] = database.FeedbackTotals{Total: 4, Correct: 4}
	// No feedback a week ago: the trend is not computable.
	svc := NewService(nil, store, nil)
	svc.now = fixedTime

	stats, err := svc.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("DailyStats returned error: %v", err)
	}
	if stats.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", stats.Accuracy)
	}
	if stats.Improvement != 0 {
		t.Errorf("improvement = %v, want 0 when a window has no feedback", stats.Improvement)
	}
}

func TestDailyStatsDegradation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.dailyErr = errors.New("database is locked")
	svc := NewService(nil, store, nil)
	svc.now = fixedTime

	stats, err := svc.DailyStats(context.Background())
	if err == nil {
		t.Fatal("DailyStats should report the store failure")
	}
	if stats == nil {
		t.Fatal("degraded report must still be returned")
	}
	if stats.Error == "" {
		t.Error("degraded report must carry the error annotation")
	}
	if stats.DailyMessages != 0 || stats.Accuracy != 0 || stats.TotalProcessed != 0 {
		t.Errorf("degraded report must be zeroed, got %+v", stats)
	}
}
