package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// ErrDecisionNotFound is returned when an operation targets a
// message_id with no stored decision record.
var ErrDecisionNotFound = errors.New("decision record not found")

// Store defines the interface for decision record persistence.
// Each method is a self-contained operation: it acquires what it needs,
// acts, and releases on every exit path.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveDecision inserts a decision record, replacing any existing
	// record with the same message_id (last write wins).
	SaveDecision(ctx context.Context, decision *Decision) error

	// GetDecision retrieves a decision by message_id. Returns nil, nil
	// if no record exists.
	GetDecision(ctx context.Context, messageID string) (*Decision, error)

	// RecentDecisionsByUser retrieves the most recent 'limit' decisions
	// for a user, ordered by timestamp descending.
	RecentDecisionsByUser(ctx context.Context, userID string, limit int) ([]Decision, error)

	// SetDecisionFeedback updates the feedback column of an existing
	// record. Returns ErrDecisionNotFound if no record matched.
	SetDecisionFeedback(ctx context.Context, messageID, feedback string) error

	// ClassificationCounts returns per-classification counts and average
	// confidence across all time.
	ClassificationCounts(ctx context.Context) ([]ClassificationCount, error)

	// FeedbackTotals returns feedback counts. An empty date means all
	// time; otherwise only records from that calendar date (DateLayout)
	// are counted.
	FeedbackTotals(ctx context.Context, date string) (FeedbackTotals, error)

	// DailyCounts returns message/approved/flagged/deleted counts for
	// one calendar date (DateLayout).
	DailyCounts(ctx context.Context, date string) (DailyCounts, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveDecision inserts or replaces the decision record for a message.
// The write is all-or-nothing: it runs inside its own transaction.
func (s *sqlxStore) SaveDecision(ctx context.Context, decision *Decision) error {
	if decision == nil {
		return fmt.Errorf("cannot save nil decision")
	}
	if decision.MessageID == "" {
		return fmt.Errorf("decision must have a non-empty message_id")
	}
	if decision.Classification == "" || decision.Action == "" {
		return fmt.Errorf("decision must have classification and action set")
	}
	if decision.Timestamp == "" {
		return fmt.Errorf("decision must have a non-empty timestamp")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving decision",
			"message_id", decision.MessageID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT OR REPLACE INTO decisions
            (message_id, user_id, content, timestamp, classification, confidence, reasoning, action, feedback)
        VALUES
            (:message_id, :user_id, :content, :timestamp, :classification, :confidence, :reasoning, :action, :feedback);
    `

	if _, err := tx.NamedExecContext(ctx, query, decision); err != nil {
		s.logger.ErrorContext(ctx, "Error saving decision",
			"message_id", decision.MessageID, "user_id", decision.UserID, "error", err)
		return fmt.Errorf("failed to save decision %s: %w", decision.MessageID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"message_id", decision.MessageID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Decision saved successfully",
		"message_id", decision.MessageID, "classification", decision.Classification, "action", decision.Action)
	return nil
}

// GetDecision retrieves a decision by message_id. Returns nil, nil if absent.
func (s *sqlxStore) GetDecision(ctx context.Context, messageID string) (*Decision, error) {
	if messageID == "" {
		return nil, fmt.Errorf("message_id cannot be empty")
	}

	var decision Decision
	query := `
        SELECT message_id, user_id, content, timestamp, classification, confidence, reasoning, action, feedback
        FROM decisions
        WHERE message_id = ?;
    `

	err := s.db.GetContext(ctx, &decision, query, messageID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting decision", "message_id", messageID, "error", err)
		return nil, fmt.Errorf("failed to get decision %s: %w", messageID, err)
	}

	return &decision, nil
}

// RecentDecisionsByUser retrieves the most recent 'limit' decisions for
// a user, newest first. An empty result is not an error.
func (s *sqlxStore) RecentDecisionsByUser(ctx context.Context, userID string, limit int) ([]Decision, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	var decisions []Decision
	query := `
        SELECT message_id, user_id, content, timestamp, classification, confidence, reasoning, action, feedback
        FROM decisions
        WHERE user_id = ?
        ORDER BY timestamp DESC
        LIMIT ?;
    `

	if err := s.db.SelectContext(ctx, &decisions, query, userID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent decisions", "user_id", userID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent decisions for user %s: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Fetched recent decisions", "user_id", userID, "count", len(decisions))
	return decisions, nil
}

// SetDecisionFeedback updates the feedback column for one record.
// Re-ingestion overwrites: the last feedback wins.
func (s *sqlxStore) SetDecisionFeedback(ctx context.Context, messageID, feedback string) error {
	if messageID == "" {
		return fmt.Errorf("message_id cannot be empty")
	}
	if feedback == "" {
		return fmt.Errorf("feedback cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `UPDATE decisions SET feedback = ? WHERE message_id = ?;`, feedback, messageID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting decision feedback", "message_id", messageID, "error", err)
		return fmt.Errorf("failed to set feedback for %s: %w", messageID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count for feedback update",
			"message_id", messageID, "error", err)
		return nil
	}
	if affected == 0 {
		s.logger.WarnContext(ctx, "Feedback update matched no decision record", "message_id", messageID)
		return fmt.Errorf("feedback for %s: %w", messageID, ErrDecisionNotFound)
	}

	s.logger.DebugContext(ctx, "Decision feedback recorded", "message_id", messageID, "feedback", feedback)
	return nil
}

// ClassificationCounts returns per-classification count and average
// confidence across all records.
func (s *sqlxStore) ClassificationCounts(ctx context.Context) ([]ClassificationCount, error) {
	var counts []ClassificationCount
	query := `
        SELECT classification, COUNT(*) AS count, AVG(confidence) AS avg_confidence
        FROM decisions
        GROUP BY classification;
    `

	if err := s.db.SelectContext(ctx, &counts, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting classification counts", "error", err)
		return nil, fmt.Errorf("failed to get classification counts: %w", err)
	}

	return counts, nil
}

// FeedbackTotals counts feedback-bearing records, optionally restricted
// to one calendar date.
func (s *sqlxStore) FeedbackTotals(ctx context.Context, date string) (FeedbackTotals, error) {
	var totals FeedbackTotals

	query := `
        SELECT COUNT(*) AS total,
               COALESCE(SUM(CASE WHEN feedback = 'CORRECT' THEN 1 ELSE 0 END), 0) AS correct
        FROM decisions
        WHERE feedback IS NOT NULL
    `
	args := []any{}
	if date != "" {
		query += ` AND date(timestamp) = ?`
		args = append(args, date)
	}
	query += `;`

	if err := s.db.GetContext(ctx, &totals, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Error getting feedback totals", "date", date, "error", err)
		return FeedbackTotals{}, fmt.Errorf("failed to get feedback totals: %w", err)
	}

	return totals, nil
}

// DailyCounts aggregates one calendar date of decisions.
func (s *sqlxStore) DailyCounts(ctx context.Context, date string) (DailyCounts, error) {
	if date == "" {
		return DailyCounts{}, fmt.Errorf("date cannot be empty")
	}

	var counts DailyCounts
	query := `
        SELECT COUNT(*) AS messages,
               COALESCE(SUM(CASE WHEN classification = 'APPROVED' THEN 1 ELSE 0 END), 0) AS approved,
               COALESCE(SUM(CASE WHEN classification = 'CONTEXT_DEPENDENT' THEN 1 ELSE 0 END), 0) AS flagged,
               COALESCE(SUM(CASE WHEN action = 'DELETE_MESSAGE' THEN 1 ELSE 0 END), 0) AS deleted
        FROM decisions
        WHERE date(timestamp) = ?;
    `

	if err := s.db.GetContext(ctx, &counts, query, date); err != nil {
		s.logger.ErrorContext(ctx, "Error getting daily counts", "date", date, "error", err)
		return DailyCounts{}, fmt.Errorf("failed to get daily counts for %s: %w", date, err)
	}

	return counts, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
