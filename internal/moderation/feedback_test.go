package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/edgard/sentinela/internal/database"
)

func TestFeedbackForSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		want   Feedback
	}{
		{"✅", FeedbackCorrect},
		{"❌", FeedbackIncorrect},
		{"⚠️", FeedbackComplex},
		{"🔄", FeedbackReanalyze},
		{"👍", FeedbackUnknown},
		{"", FeedbackUnknown},
		{"correct", FeedbackUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()

			if got := FeedbackForSymbol(tt.symbol); got != tt.want {
				t.Errorf("FeedbackForSymbol(%q) = %s, want %s", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestRecordFeedback(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(nil, store, nil)

	feedback, err := svc.RecordFeedback(context.Background(), "m1", "✅")
	if err != nil {
		t.Fatalf("RecordFeedback returned error: %v", err)
	}
	if feedback != FeedbackCorrect {
		t.Errorf("feedback = %s, want %s", feedback, FeedbackCorrect)
	}
	if store.feedbackSet["m1"] != string(FeedbackCorrect) {
		t.Errorf("stored feedback = %q, want %q", store.feedbackSet["m1"], FeedbackCorrect)
	}
}

func TestRecordFeedbackUnknownSymbolStillStored(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(nil, store, nil)

	feedback, err := svc.RecordFeedback(context.Background(), "m1", "🤷")
	if err != nil {
		t.Fatalf("RecordFeedback returned error: %v", err)
	}
	if feedback != FeedbackUnknown {
		t.Errorf("feedback = %s, want %s", feedback, FeedbackUnknown)
	}
	if store.feedbackSet["m1"] != string(FeedbackUnknown) {
		t.Errorf("stored feedback = %q, want %q", store.feedbackSet["m1"], FeedbackUnknown)
	}
}

func TestRecordFeedbackUnknownMessage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.feedbackErr = database.ErrDecisionNotFound
	svc := NewService(nil, store, nil)

	_, err := svc.RecordFeedback(context.Background(), "missing", "✅")
	if !errors.Is(err, database.ErrDecisionNotFound) {
		t.Errorf("err = %v, want ErrDecisionNotFound", err)
	}
}
