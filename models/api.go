package models

// CrawlResponse is the response for POST /api/v1/crawl/:platform.
type CrawlResponse struct {
	// Success indicates whether the crawl job completed.
	Success bool `json:"success"`

	// JobID identifies this crawl invocation in logs and webhook events.
	JobID string `json:"job_id,omitempty"`

	Platform string `json:"platform,omitempty"`
	Keyword  string `json:"keyword,omitempty"`

	// Count is len(Products), kept explicit for quick inspection.
	Count int `json:"count"`

	// Cached is true when the result set was served from the result cache
	// without running a browser job.
	Cached bool `json:"cached,omitempty"`

	Products []Product `json:"products"`

	// Timing provides duration breakdowns for the job.
	Timing *CrawlTimingInfo `json:"timing,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// CrawlTimingInfo breaks a crawl job down by pipeline stage.
type CrawlTimingInfo struct {
	TotalMs       int64 `json:"total_ms"`
	InteractionMs int64 `json:"interaction_ms"`
	ScrollMs      int64 `json:"scroll_ms"`
	ExtractionMs  int64 `json:"extraction_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string   `json:"status"`
	Uptime         string   `json:"uptime"`
	ActiveSessions int      `json:"active_sessions"`
	MaxSessions    int      `json:"max_sessions"`
	Platforms      []string `json:"platforms"`
	Version        string   `json:"version"`
}
