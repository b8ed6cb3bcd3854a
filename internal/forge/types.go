// Package forge provides a provider-agnostic interface for the source
// hosting operations the agent exposes as its repo tool: listing
// repository contents, reading files, and opening issues.
package forge

import "time"

// Entry is a single item in a repository directory listing.
type Entry struct {
	// Name is the entry's base name.
	Name string
	// Path is the entry's path from the repository root.
	Path string
	// Type is "file" or "dir".
	Type string
	// Size is the file size in bytes (zero for directories).
	Size int
}

// File is a repository file's decoded contents.
type File struct {
	// Path is the file's path from the repository root.
	Path string
	// Content is the decoded file text.
	Content string
	// Size is the full size in bytes as reported by the forge.
	Size int
}

// NewIssue carries the fields for opening an issue.
type NewIssue struct {
	Title  string
	Body   string
	Labels []string
}

// Issue represents a created issue.
type Issue struct {
	// Number is the forge-assigned issue number.
	Number int
	// Title is the issue title.
	Title string
	// State is the current state, e.g. "open".
	State string
	// URL is the web URL of the issue.
	URL string
	// CreatedAt is when the issue was created.
	CreatedAt time.Time
}
