package storage

// KnowledgeRow is one advice cell. Crop is empty for intent defaults,
// clarifying questions and fixed replies.
type KnowledgeRow struct {
	Intent    string `json:"intent"`
	Crop      string `json:"crop,omitempty"`
	Kind      string `json:"kind"` // "advice" or "clarify"
	Text      string `json:"text"`
	UpdatedAt int64  `json:"updated_at"`
}

// IntentExample is an extra example phrase for the lexical classifier.
type IntentExample struct {
	Intent    string `json:"intent"`
	Phrase    string `json:"phrase"`
	CreatedAt int64  `json:"created_at"`
}
