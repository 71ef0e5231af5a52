package dto

type HealthResponse struct {
	Status       string `json:"status"`
	StoredEssays int    `json:"storedEssays"`
	Persisted    bool   `json:"vectorStorePersisted"`
	LLMBreaker   string `json:"llmBreaker,omitempty"`
}
