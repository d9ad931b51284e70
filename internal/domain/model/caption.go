package model

// CaptionRequest is one batch submission to the captioning backend.
type CaptionRequest struct {
	APIKey       string
	Backend      Backend
	Role         Role
	CustomPrompt string
	URLs         []string
}

// CaptionResult maps each returned image URL to its first description.
// Credits is the remaining balance reported by the backend, when present.
type CaptionResult struct {
	Descriptions map[string]string
	Credits      *int
}
