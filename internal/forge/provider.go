package forge

import "context"

// Provider defines the operations available against a source forge.
// Implementations exist for GitHub.
//
// All repo parameters use "owner/name" format (e.g. "acme/myapp").
type Provider interface {
	// ListContents lists the entries at a directory path in the
	// repository's default branch. An empty path means the root.
	ListContents(ctx context.Context, repo, path string) ([]Entry, error)

	// ReadFile fetches and decodes a single file from the
	// repository's default branch.
	ReadFile(ctx context.Context, repo, path string) (*File, error)

	// CreateIssue opens a new issue in the repository.
	CreateIssue(ctx context.Context, repo string, issue *NewIssue) (*Issue, error)
}
