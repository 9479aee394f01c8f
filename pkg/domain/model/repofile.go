package model

// RepositoryFile is one file fetched from a repository for analysis.
type RepositoryFile struct {
	Path    string
	Content string
	Size    int
}
