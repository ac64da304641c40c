package rcs

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
)

// Lock records a user holding a lock on a revision.
type Lock struct {
	User     string
	Revision RevisionNumber
}

// Symbol is a symbolic name (tag or branch tag) bound to a number.
type Symbol struct {
	Name     string
	Revision RevisionNumber
}

// File is the parsed form of an RCS file: the admin header and the tree of
// revisions with their deltatexts. A File is not modified after Parse
// returns, so it may be shared between goroutines.
type File struct {
	Path        string                  // Source path, when parsed from disk.
	Head        RevisionNumber          // Newest trunk revision; "" if none.
	Branch      RevisionNumber          // Principal (default) branch, if set.
	Access      []string                // Access list; retained but unused.
	Symbols     []Symbol                // Symbolic names in file order.
	Locks       []Lock                  // Locks in file order.
	Strict      bool                    // Strict locking.
	Comment     string                  // Comment leader.
	Expand      string                  // Default keyword substitution mode.
	Description []byte                  // Contents of the desc string.
	Extra       []Phrase                // Admin newphrases, in file order.
	Revisions   map[RevisionNumber]*Revision

	order   []RevisionNumber                  // Admin records in file order.
	tags    map[string]RevisionNumber         // Symbol lookup.
	parents map[RevisionNumber]RevisionNumber // Predecessor of each revision.
}

// ParseFile maps the file at path into memory and parses it. The mapping
// is released before returning; the File holds copies of everything it
// needs.
func ParseFile(path string, opts ...Option) (*File, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	// mmap refuses zero-length mappings.
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, &SyntaxError{Offset: 0, Expected: fmt.Sprintf("%q", KeywordHead), Found: "end of file"})
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer data.Unmap()

	f, err := ParseBytes(data, append(opts, WithPath(path))...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse reads an entire RCS file from r and parses it.
func Parse(r io.Reader, opts ...Option) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, opts...)
}

// GetRevision returns the record for the given revision, or an error
// wrapping ErrUnknownRevision.
func (f *File) GetRevision(rev RevisionNumber) (*Revision, error) {
	if r, ok := f.Revisions[rev]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, rev)
}

// Order returns the revision numbers in the order their admin records
// appear in the file.
func (f *File) Order() []RevisionNumber {
	return append([]RevisionNumber{}, f.order...)
}

// Tag returns the number a symbolic name is bound to.
func (f *File) Tag(name string) (RevisionNumber, bool) {
	rev, ok := f.tags[name]
	return rev, ok
}

// TagsFor returns the symbolic names bound directly to rev, sorted.
func (f *File) TagsFor(rev RevisionNumber) []string {
	var names []string
	for _, sym := range f.Symbols {
		if sym.Revision == rev {
			names = append(names, sym.Name)
		}
	}
	sort.Strings(names)
	return names
}

// BranchTags returns the symbols that name branches (magic branch numbers
// or odd-length branch numbers), mapped to the plain branch number.
func (f *File) BranchTags() map[string]RevisionNumber {
	branches := make(map[string]RevisionNumber)
	for _, sym := range f.Symbols {
		if sym.Revision.IsMagic() || sym.Revision.IsBranchNumber() {
			branches[sym.Name] = sym.Revision.UnMagic()
		}
	}
	return branches
}

// Parent returns the revision rev was derived from: the next older trunk
// revision, the previous revision on the same branch, or the branch point
// for the first revision of a branch. The oldest trunk revision has no
// parent and yields "".
func (f *File) Parent(rev RevisionNumber) RevisionNumber {
	return f.parents[rev]
}

// Log returns every revision ordered youngest first, the order rlog uses.
func (f *File) Log() []*Revision {
	revs := make([]*Revision, 0, len(f.Revisions))
	for _, r := range f.Revisions {
		revs = append(revs, r)
	}
	sort.Slice(revs, func(i, j int) bool {
		return revs[j].Number.Less(revs[i].Number)
	})
	return revs
}
