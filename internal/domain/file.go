package domain

// RemoteEntry represents one row of a remote directory listing.
// Entries are ephemeral display data, never persisted.
type RemoteEntry struct {
	// Name is the entry basename; directories carry a trailing "/"
	Name string

	// Size is the human-formatted size ("1.5 KB"); empty for directories
	Size string

	// IsDir indicates a directory entry
	IsDir bool
}

// DuplicateGroup is a set of remote paths sharing one content hash.
// Files preserves the order the paths were hashed in and always holds
// at least two entries.
type DuplicateGroup struct {
	Hash  string
	Files []string
}

// ScanReport is the terminal payload of a duplicate scan.
type ScanReport struct {
	// Files is the full flat file list the scan ran over
	Files []string

	// Uniques holds one representative path per distinct hash
	Uniques []string

	// Groups holds every hash shared by two or more paths,
	// in hash-discovery order
	Groups []DuplicateGroup
}

// RedundantCount returns the number of files that could be removed
// while keeping one copy per duplicate group.
func (r ScanReport) RedundantCount() int {
	n := 0
	for _, g := range r.Groups {
		if len(g.Files) > 1 {
			n += len(g.Files) - 1
		}
	}
	return n
}
