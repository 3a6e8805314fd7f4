package domain

// MaxPageSize is the number of summaries the forge returns for a full page.
// A shorter page signals that enumeration is exhausted.
const MaxPageSize = 100

// MaxHydrationBatch is the largest number of ids a single hydration call accepts.
const MaxHydrationBatch = 100

// RepoSummary is one entry of the forge's numeric-id enumeration.
type RepoSummary struct {
	// ID is the monotonically increasing numeric repository id used as cursor.
	ID int64
	// NodeID is the opaque identifier used for hydration and probing.
	NodeID string
	// Fork is true when the repository is a fork of another repository.
	Fork bool
}

// Language is a single entry of a repository's language list.
type Language struct {
	Name string
}

// Repository is the hydrated metadata of a candidate.
// It is ephemeral: only Results derived from it are persisted.
type Repository struct {
	// NodeID is the opaque identifier the repository was hydrated by.
	NodeID string
	// NameWithOwner is the display name, e.g. "rust-lang/cargo".
	NameWithOwner string
	// Fork mirrors the summary's fork flag.
	Fork bool
	// Languages is ordered as returned by the forge. Entries may be nil.
	Languages []*Language
}

// CountLanguage returns how many non-nil language entries are named exactly name.
// The comparison is case-sensitive.
func (r *Repository) CountLanguage(name string) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, lang := range r.Languages {
		if lang != nil && lang.Name == name {
			n++
		}
	}
	return n
}
