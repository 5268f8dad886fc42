// Package moderation implements the message moderation decision
// pipeline: context assembly from a user's decision history, verdict
// classification through an LLM, policy-based action derivation,
// persistence, feedback ingestion, and statistics aggregation.
package moderation

// Classification is the semantic judgment about a message.
type Classification string

const (
	ClassificationApproved         Classification = "APPROVED"
	ClassificationContextDependent Classification = "CONTEXT_DEPENDENT"
	ClassificationClearViolation   Classification = "CLEAR_VIOLATION"
)

// Action is the enforcement outcome derived from a verdict.
type Action string

const (
	ActionApprove       Action = "APPROVE"
	ActionFlagForReview Action = "FLAG_FOR_REVIEW"
	ActionDeleteMessage Action = "DELETE_MESSAGE"
)

// Feedback is a human correctness judgment on a past verdict.
type Feedback string

const (
	FeedbackCorrect   Feedback = "CORRECT"
	FeedbackIncorrect Feedback = "INCORRECT"
	FeedbackComplex   Feedback = "COMPLEX"
	FeedbackReanalyze Feedback = "REANALYZE"
	FeedbackUnknown   Feedback = "UNKNOWN"
)

// Verdict is the interpreted output of the classifier for one message.
type Verdict struct {
	Classification Classification
	Confidence     float64
	Reasoning      string
}

// Result is what the pipeline returns to the transport for one
// processed message.
type Result struct {
	MessageID      string         `json:"message_id"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Action         Action         `json:"action"`
	Reasoning      string         `json:"reasoning"`
}

// HistoryEntry is one prior decision projected for prompting.
type HistoryEntry struct {
	Classification string
	Reasoning      string
	Feedback       string
}
