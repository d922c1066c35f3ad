package models

// PhraseRequest is the body of POST /v1/assist/workplace-phrase.
type PhraseRequest struct {
	UserID  string `json:"userId"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// PhraseSuggestion is the suggested workplace phrase.
type PhraseSuggestion struct {
	Phrase string `json:"phrase"`
	Model  string `json:"model"`
}
