package directory

// Activation states for published listings. Activation is independent of
// the review lifecycle: an inactive listing stays in the directory but is
// hidden from consumers.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Listing is a published directory entry. Unlike staged candidates, every
// listing carries a category and a unique slug; both are enforced by the
// schema.
type Listing struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Address     string
	Phone       string
	Website     string
	MapURL      string
	Rating      float64
	ReviewCount int
	CategoryID  string
	AreaID      string
	ExternalID  string
	Images      []string
	OpensAt     string
	ClosesAt    string
	SourceTag   string
	Status      string
	CreatedAt   string
	UpdatedAt   string
}

// Category is a directory taxonomy entry.
type Category struct {
	ID   string
	Name string
}

// Area is a geographic grouping for listings.
type Area struct {
	ID   string
	Name string
}
