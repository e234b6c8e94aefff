package models

// Recommendation is action guidance generated for a prefecture/market,
// either by the external language-model service or the static fallback.
type Recommendation struct {
	Prefecture string   `json:"prefecture"`
	Market     Market   `json:"market"`
	Focus      string   `json:"focus"`
	Summary    string   `json:"summary"`
	Actions    []string `json:"actions"`
	Source     string   `json:"source"` // "llm" or "static"
}
