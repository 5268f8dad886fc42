package moderation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/sentinela/internal/database"
)

const (
	// historyLimit is how many prior decisions prime a classification.
	historyLimit = 5
	// digestLimit is how many of those contribute to the prompt digest.
	digestLimit = 2
)

// Classifier produces raw reply text for a message plus history digest.
// Implementations may return unstructured text; interpretation and
// degradation are the pipeline's job.
type Classifier interface {
	Classify(ctx context.Context, content, historyDigest string) (string, error)
}

// Store is the subset of persistence operations the moderation service
// needs. *database.Store satisfies it.
type Store interface {
	SaveDecision(ctx context.Context, decision *database.Decision) error
	RecentDecisionsByUser(ctx context.Context, userID string, limit int) ([]database.Decision, error)
	SetDecisionFeedback(ctx context.Context, messageID, feedback string) error
	ClassificationCounts(ctx context.Context) ([]database.ClassificationCount, error)
	FeedbackTotals(ctx context.Context, date string) (database.FeedbackTotals, error)
	DailyCounts(ctx context.Context, date string) (database.DailyCounts, error)
}

// Service runs the fixed three-stage decision pipeline and the
// feedback/statistics operations around it.
type Service struct {
	logger     *slog.Logger
	store      Store
	classifier Classifier
	now        func() time.Time
}

// NewService creates the moderation service. classifier may be nil for
// callers that only ingest feedback or read statistics; Process
// requires it.
func NewService(logger *slog.Logger, store Store, classifier Classifier) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		logger:     logger.With("component", "moderation"),
		store:      store,
		classifier: classifier,
		now:        time.Now,
	}
}

// Process runs one message through the pipeline: assemble the user's
// recent history, classify, derive the action, persist the decision
// record, and return the result. Classifier failures degrade to a
// conservative verdict; only a persistence failure is returned as an
// error.
func (s *Service) Process(ctx context.Context, messageID, userID, content string) (*Result, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("moderation service has no classifier configured")
	}
	if messageID == "" || userID == "" {
		return nil, fmt.Errorf("message_id and user_id are required")
	}

	history := s.assembleContext(ctx, userID)
	digest := historyDigest(history)

	verdict := s.classify(ctx, content, digest)
	action := Decide(verdict.Classification, verdict.Confidence)

	decision := &database.Decision{
		MessageID:      messageID,
		UserID:         userID,
		Content:        content,
		Timestamp:      s.now().Format(database.TimestampLayout),
		Classification: string(verdict.Classification),
		Confidence:     verdict.Confidence,
		Reasoning:      verdict.Reasoning,
		Action:         string(action),
	}

	if err := s.store.SaveDecision(ctx, decision); err != nil {
		return nil, fmt.Errorf("failed to persist decision for %s: %w", messageID, err)
	}

	s.logger.InfoContext(ctx, "Message moderated",
		"message_id", messageID,
		"user_id", userID,
		"classification", verdict.Classification,
		"confidence", verdict.Confidence,
		"action", action)

	return &Result{
		MessageID:      messageID,
		Classification: verdict.Classification,
		Confidence:     verdict.Confidence,
		Action:         action,
		Reasoning:      verdict.Reasoning,
	}, nil
}

// assembleContext fetches the user's recent decisions projected to
// (classification, reasoning, feedback). A user without history gets an
// empty slice; a store failure degrades to the same, since context is
// an optimization rather than a requirement.
func (s *Service) assembleContext(ctx context.Context, userID string) []HistoryEntry {
	decisions, err := s.store.RecentDecisionsByUser(ctx, userID, historyLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load user history, classifying without context",
			"user_id", userID, "error", err)
		return nil
	}

	entries := make([]HistoryEntry, 0, len(decisions))
	for _, d := range decisions {
		entry := HistoryEntry{
			Classification: d.Classification,
			Reasoning:      d.Reasoning,
		}
		if d.Feedback.Valid {
			entry.Feedback = d.Feedback.String
		}
		entries = append(entries, entry)
	}
	return entries
}

// historyDigest renders the most recent classifications into the short
// line interpolated into the prompt. Empty history yields an empty
// digest.
func historyDigest(history []HistoryEntry) string {
	var verdicts []string
	for _, entry := range history {
		if entry.Classification == "" {
			continue
		}
		verdicts = append(verdicts, entry.Classification)
		if len(verdicts) == digestLimit {
			break
		}
	}
	if len(verdicts) == 0 {
		return ""
	}
	return "Recent verdicts for this user: " + strings.Join(verdicts, ", ")
}

// classify invokes the classifier exactly once and interprets the
// reply. Any failure is converted into a low-confidence
// CONTEXT_DEPENDENT verdict citing the error; nothing escapes to the
// caller.
func (s *Service) classify(ctx context.Context, content, digest string) Verdict {
	raw, err := s.classifier.Classify(ctx, content, digest)
	if err != nil {
		s.logger.WarnContext(ctx, "Classifier invocation failed, using degraded verdict", "error", err)
		return Verdict{
			Classification: ClassificationContextDependent,
			Confidence:     0.3,
			Reasoning:      fmt.Sprintf("Error in analysis: %v", err),
		}
	}
	return ParseVerdict(raw)
}
