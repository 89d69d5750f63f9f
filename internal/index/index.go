package index

// Catalog defines the interface for component-catalog operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type Catalog interface {
	UpsertDesign(d DesignRow, comps []ComponentRow) error
	DeleteDesign(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDesigns() ([]DesignRow, error)
	Components(design string) ([]ComponentRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
