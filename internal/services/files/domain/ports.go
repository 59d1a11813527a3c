package domain

import "context"

// Artifact is an in-progress output file, invisible to readers until Finalize
type Artifact interface {
	Name() string
	// Path is where the artifact lives once finalized
	Path() string
	AppendLine(line string) error
	// Finalize publishes the artifact and returns its size in bytes
	Finalize() (int64, error)
	// Discard drops the partial artifact; safe after Finalize or a previous Discard
	Discard() error
	// Remove takes a finalized artifact back out of the directory
	Remove() error
}

// Sink creates artifacts
type Sink interface {
	Create(ctx context.Context, name string) (Artifact, error)
}

// RegistryPort records finished artifacts
type RegistryPort interface {
	Record(ctx context.Context, in NewFile) (File, error)
}

// ReaderPort is the read side the preload integration needs
type ReaderPort interface {
	Selected(ctx context.Context) (File, error)
	Lines(ctx context.Context, id int64) ([]string, error)
	Exists(f File) bool
}

// ServicePort is the files admin surface
type ServicePort interface {
	RegistryPort
	ReaderPort

	List(ctx context.Context) ([]File, error)
	Get(ctx context.Context, id int64) (File, error)
	Select(ctx context.Context, id int64) (File, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int, error)

	Preview(ctx context.Context, id int64, limit, offset int) (Preview, error)
	Count(ctx context.Context, id int64) (int64, error)
	Export(ctx context.Context, id int64) (Export, error)

	Cleanup(ctx context.Context, keep int) (CleanupResult, error)
	DirectoryInfo(ctx context.Context) (DirectoryInfo, error)
}
