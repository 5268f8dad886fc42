package gemini

// ModerationPromptTemplate is the prompt sent for each message. It
// expects three values: the group rules text, the recent-history digest
// line (may be empty), and the message content. The model is asked for
// JSON only, but the reply is treated as free text by the caller.
const ModerationPromptTemplate = `You are the moderation agent for a volunteer group chat.

Group rules:
%s

%s
Message to review: "%s"

JSON only:
{
  "classification": "APPROVED or CONTEXT_DEPENDENT or CLEAR_VIOLATION",
  "confidence": 0.0-1.0,
  "reasoning": "short explanation"
}`
