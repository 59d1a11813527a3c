// Package domain holds generated artifact types shared across the files service
package domain

import "time"

// File is one finalized URL list in the registry
type File struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	URLCount    int64     `json:"url_count"`
	IsSelected  bool      `json:"is_selected"`
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewFile is what a finished run records
type NewFile struct {
	FileName    string
	StoragePath string
	SizeBytes   int64
	URLCount    int64
	RunID       string
	Select      bool
}

// Preview is a window of an artifact's lines
type Preview struct {
	File   File     `json:"file"`
	Lines  []string `json:"lines"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// Export points at a downloadable artifact
type Export struct {
	URL      string `json:"url"`
	FileName string `json:"filename"`
}

// DirectoryInfo summarizes the artifact directory
type DirectoryInfo struct {
	Directory     string `json:"directory"`
	TotalSize     int64  `json:"total_size"`
	FormattedSize string `json:"formatted_size"`
	FileCount     int    `json:"file_count"`
}

// CleanupInput asks to keep the newest Keep files
type CleanupInput struct {
	Keep *int `json:"keep,omitempty" validate:"omitempty,min=0" example:"5"`
}

// CleanupResult reports a retention pass
type CleanupResult struct {
	Deleted int    `json:"deleted"`
	Files   []File `json:"files"`
}
