// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for workspace file operations.
type Provider interface {
	// List returns metadata for every design file under dir (relative to
	// the workspace root).
	List(dir string) ([]models.DesignMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// workspace root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the workspace root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the workspace root).
	Delete(path string) error
	// Stat returns metadata for a single file (relative to the workspace root).
	Stat(path string) (models.DesignMetadata, error)
	// Root returns the absolute workspace root directory.
	Root() string
}
