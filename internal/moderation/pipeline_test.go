package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edgard/sentinela/internal/database"
)

// fakeStore implements the Store interface for pipeline, feedback and
// stats tests.
type fakeStore struct {
	saved []database.Decision

	history    []database.Decision
	historyErr error
	saveErr    error

	feedbackSet map[string]string
	feedbackErr error

	classCounts    []database.ClassificationCount
	classErr       error
	feedbackTotals map[string]database.FeedbackTotals
	totalsErr      error
	daily          map[string]database.DailyCounts
	dailyErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		feedbackSet:    make(map[string]string),
		feedbackTotals: make(map[string]database.FeedbackTotals),
		daily:          make(map[string]database.DailyCounts),
	}
}

func (f *fakeStore) SaveDecision(_ context.Context, decision *database.Decision) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *decision)
	return nil
}

func (f *fakeStore) RecentDecisionsByUser(_ context.Context, _ string, limit int) ([]database.Decision, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeStore) SetDecisionFeedback(_ context.Context, messageID, feedback string) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedbackSet[messageID] = feedback
	return nil
}

func (f *fakeStore) ClassificationCounts(_ context.Context) ([]database.ClassificationCount, error) {
	if f.classErr != nil {
		return nil, f.classErr
	}
	return f.classCounts, nil
}

func (f *fakeStore) FeedbackTotals(_ context.Context, date string) (database.FeedbackTotals, error) {
	if f.totalsErr != nil {
		return database.FeedbackTotals{}, f.totalsErr
	}
	return f.feedbackTotals[date], nil
}

func (f *fakeStore) DailyCounts(_ context.Context, date string) (database.DailyCounts, error) {
	if f.dailyErr != nil {
		return database.DailyCounts{}, f.dailyErr
	}
	return f.daily[date], nil
}

// fakeClassifier returns a canned reply and records what it was asked.
type fakeClassifier struct {
	reply string
	err   error

	gotContent string
	gotDigest  string
}

func (f *fakeClassifier) Classify(_ context.Context, content, historyDigest string) (string, error) {
	f.gotContent = content
	f.gotDigest = historyDigest
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func fixedTime() time.Time {
	return time.Date(2025, 6, 15, 14, 30, 5, 0, time.Local)
}

func TestProcessPersistsDecision(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	classifier := &fakeClassifier{
		reply: `{"classification": "CLEAR_VIOLATION", "confidence": 0.9, "reasoning": "Reveals a unit position"}`,
	}
	svc := NewService(nil, store, classifier)
	svc.now = fixedTime

	content := "Unit 8200 spotted at 32.0853, 34.7818"
	result, err := svc.Process(context.Background(), "100:5", "42", content)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if result.Action != ActionDeleteMessage {
		t.Errorf("action = %s, want %s", result.Action, ActionDeleteMessage)
	}
	if result.Classification != ClassificationClearViolation {
		t.Errorf("classification = %s, want %s", result.Classification, ClassificationClearViolation)
	}
	if result.MessageID != "100:5" {
		t.Errorf("message_id = %s, want 100:5", result.MessageID)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d decisions, want 1", len(store.saved))
	}
	saved := store.saved[0]
	if saved.MessageID != "100:5" || saved.UserID != "42" || saved.Content != content {
		t.Errorf("saved identity fields = %+v", saved)
	}
	if saved.Classification != string(ClassificationClearViolation) || saved.Confidence != 0.9 {
		t.Errorf("saved verdict = %s/%v", saved.Classification, saved.Confidence)
	}
	if saved.Action != string(ActionDeleteMessage) {
		t.Errorf("saved action = %s, want %s", saved.Action, ActionDeleteMessage)
	}
	if saved.Timestamp != "2025-06-15T14:30:05" {
		t.Errorf("saved timestamp = %s, want 2025-06-15T14:30:05", saved.Timestamp)
	}
	if saved.Feedback.Valid {
		t.Errorf("fresh decision should have no feedback, got %q", saved.Feedback.String)
	}
}

func TestProcessHistoryDigest(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.history = []database.Decision{
		{Classification: "CLEAR_VIOLATION", Reasoning: "r1"},
		{Classification: "APPROVED", Reasoning: "r2"},
		{Classification: "APPROVED", Reasoning: "r3"},
	}
	classifier := &fakeClassifier{reply: `{"classification": "APPROVED", "confidence": 0.9, "reasoning": "ok"}`}
	svc := NewService(nil, store, classifier)

	if _, err := svc.Process(context.Background(), "m1", "u1", "hello"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	want := "Recent verdicts for this user: CLEAR_VIOLATION, APPROVED"
	if classifier.gotDigest != want {
		t.Errorf("digest = %q, want %q", classifier.gotDigest, want)
	}
	if classifier.gotContent != "hello" {
		t.Errorf("content = %q, want %q", classifier.gotContent, "hello")
	}
}

func TestProcessEmptyHistory(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	classifier := &fakeClassifier{reply: `{"classification": "APPROVED", "confidence": 0.9, "reasoning": "ok"}`}
	svc := NewService(nil, store, classifier)

	if _, err := svc.Process(context.Background(), "m1", "u1", "hi"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if classifier.gotDigest != "" {
		t.Errorf("digest for empty history = %q, want empty", classifier.gotDigest)
	}
}

func TestProcessHistoryErrorDegradesToNoContext(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.historyErr = errors.New("disk on fire")
	classifier := &fakeClassifier{reply: `{"classification": "APPROVED", "confidence": 0.9, "reasoning": "ok"}`}
	svc := NewService(nil, store, classifier)

	result, err := svc.Process(context.Background(), "m1", "u1", "hi")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Classification != ClassificationApproved {
		t.Errorf("classification = %s, want %s", result.Classification, ClassificationApproved)
	}
	if classifier.gotDigest != "" {
		t.Errorf("digest = %q, want empty after history failure", classifier.gotDigest)
	}
}

func TestProcessClassifierFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	classifier := &fakeClassifier{err: errors.New("model unavailable")}
	svc := NewService(nil, store, classifier)

	result, err := svc.Process(context.Background(), "m1", "u1", "hi")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if result.Classification != ClassificationContextDependent {
		t.Errorf("classification = %s, want %s", result.Classification, ClassificationContextDependent)
	}
	if result.Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", result.Confidence)
	}
	if result.Action != ActionFlagForReview {
		t.Errorf("action = %s, want %s", result.Action, ActionFlagForReview)
	}
	if !strings.Contains(result.Reasoning, "model unavailable") {
		t.Errorf("reasoning %q should cite the classifier error", result.Reasoning)
	}
	if len(store.saved) != 1 {
		t.Errorf("degraded verdict must still be persisted, saved %d", len(store.saved))
	}
}

func TestProcessSaveFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.saveErr = errors.New("database is locked")
	classifier := &fakeClassifier{reply: `{"classification": "APPROVED", "confidence": 0.9, "reasoning": "ok"}`}
	svc := NewService(nil, store, classifier)

	if _, err := svc.Process(context.Background(), "m1", "u1", "hi"); err == nil {
		t.Fatal("Process should fail when the decision cannot be persisted")
	}
}

func TestProcessValidation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	classifier := &fakeClassifier{reply: "{}"}

	if _, err := NewService(nil, store, classifier).Process(context.Background(), "", "u1", "hi"); err == nil {
		t.Error("Process should reject an empty message id")
	}
	if _, err := NewService(nil, store, classifier).Process(context.Background(), "m1", "", "hi"); err == nil {
		t.Error("Process should reject an empty user id")
	}
	if _, err := NewService(nil, store, nil).Process(context.Background(), "m1", "u1", "hi"); err == nil {
		t.Error("Process should fail without a classifier")
	}
}
