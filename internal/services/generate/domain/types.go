// Package domain holds the generation run types
package domain

import (
	"time"

	perr "preloadassist/internal/platform/errors"
)

// ErrNothingToGenerate is returned when no category, facet or parameter is enabled
// and base-only URLs were not requested
var ErrNothingToGenerate = perr.New(perr.ErrorCodeValidation, "nothing selected to generate")

// ErrRunInProgress is returned while another run holds the generation lock
var ErrRunInProgress = perr.New(perr.ErrorCodeConflict, "a generation run is already in progress")

// Run statuses recorded in the run history
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Request is one generation invocation
// Empty filters mean every enabled category, facet or parameter
type Request struct {
	MaxURLs      int      `json:"max_urls" validate:"omitempty,min=1" example:"10000"`
	IncludeEmpty bool     `json:"include_empty" example:"false"`
	Categories   []int64  `json:"categories" validate:"omitempty,dive,min=1"`
	Facets       []string `json:"facets" validate:"omitempty,dive,required"`
	Parameters   []string `json:"parameters" validate:"omitempty,dive,required"`
	// AllowPartial lets a URL leave out any facet or parameter
	AllowPartial bool `json:"allow_partial" example:"false"`
	// Select marks the new file as the one the preload integration serves
	Select bool `json:"select" example:"true"`
}

// Result summarizes a finished run
type Result struct {
	RunID        string `json:"run_id"`
	FileID       int64  `json:"file_id"`
	FileName     string `json:"file_name"`
	URLCount     int64  `json:"url_count"`
	SizeBytes    int64  `json:"size_bytes"`
	Combinations string `json:"combinations"` // decimal, may exceed int64
	Truncated    bool   `json:"truncated"`
	Selected     bool   `json:"selected"`
	DurationMS   int64  `json:"duration_ms"`
}

// Run is one row of run history
type Run struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Status       string    `json:"status"`
	URLCount     uint64    `json:"url_count"`
	SizeBytes    uint64    `json:"size_bytes"`
	Combinations string    `json:"combinations"`
	Truncated    bool      `json:"truncated"`
	FileName     string    `json:"file_name"`
	Error        string    `json:"error,omitempty"`
}
