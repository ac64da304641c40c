package rcs

import (
	"fmt"
	"strconv"
	"strings"
)

// RevisionNumber is a dotted revision or branch number such as "1.2" or
// "1.2.2.1". It is kept in canonical string form so it can be compared with
// == and used as a map key; ordering uses Compare, which works on the
// integer components.
type RevisionNumber string

// ParseRevisionNumber validates a dotted number and returns it in canonical
// form (no leading zeros). Any number of components is accepted; use
// IsRevision to require a revision rather than a branch number.
func ParseRevisionNumber(s string) (RevisionNumber, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty revision number", ErrMalformedInput)
	}
	fields := strings.Split(s, ".")
	canonical := make([]string, len(fields))
	for idx, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || field == "" {
			return "", fmt.Errorf("%w: invalid revision number %q", ErrMalformedInput, s)
		}
		canonical[idx] = strconv.Itoa(n)
	}
	return RevisionNumber(strings.Join(canonical, ".")), nil
}

// MustRevisionNumber is ParseRevisionNumber for constants known to be valid.
func MustRevisionNumber(s string) RevisionNumber {
	rev, err := ParseRevisionNumber(s)
	if err != nil {
		panic(err)
	}
	return rev
}

func (r RevisionNumber) String() string {
	return string(r)
}

// Parts returns the integer components of the number.
func (r RevisionNumber) Parts() []int {
	if r == "" {
		return nil
	}
	fields := strings.Split(string(r), ".")
	parts := make([]int, len(fields))
	for idx, field := range fields {
		parts[idx], _ = strconv.Atoi(field)
	}
	return parts
}

// Len returns the number of components.
func (r RevisionNumber) Len() int {
	if r == "" {
		return 0
	}
	return strings.Count(string(r), ".") + 1
}

// IsRevision reports whether r names a revision: an even number of
// components, at least two.
func (r RevisionNumber) IsRevision() bool {
	n := r.Len()
	return n >= 2 && n%2 == 0
}

// IsTrunk reports whether r is a trunk revision such as 1.4.
func (r RevisionNumber) IsTrunk() bool {
	return r.Len() == 2
}

// IsBranch reports whether r is a revision on a branch, e.g. 1.2.2.1.
func (r RevisionNumber) IsBranch() bool {
	return r.IsRevision() && r.Len() > 2
}

// IsBranchNumber reports whether r names a branch rather than a revision:
// an odd number of components, e.g. 1.2.2 or the vendor branch 1.1.1.
func (r RevisionNumber) IsBranchNumber() bool {
	return r.Len()%2 == 1
}

// IsMagic reports whether r is a CVS magic branch number, x.y.0.z, which
// stands for the branch x.y.z.
func (r RevisionNumber) IsMagic() bool {
	parts := r.Parts()
	return len(parts) >= 4 && len(parts)%2 == 0 && parts[len(parts)-2] == 0
}

// UnMagic converts a magic branch number into the branch number it stands
// for. Other numbers are returned unchanged.
func (r RevisionNumber) UnMagic() RevisionNumber {
	if !r.IsMagic() {
		return r
	}
	parts := r.Parts()
	parts = append(parts[:len(parts)-2], parts[len(parts)-1])
	return fromParts(parts)
}

// BranchPoint returns the revision a branch revision or branch number
// sprouts from: 1.2.2.1 and 1.2.2 both yield 1.2. Trunk revisions return "".
func (r RevisionNumber) BranchPoint() RevisionNumber {
	parts := r.Parts()
	switch {
	case len(parts) <= 2:
		return ""
	case len(parts)%2 == 1:
		return fromParts(parts[:len(parts)-1])
	default:
		return fromParts(parts[:len(parts)-2])
	}
}

// BranchNumber returns the branch a revision belongs to: 1.2.2.1 yields
// 1.2.2 and 1.4 yields 1.
func (r RevisionNumber) BranchNumber() RevisionNumber {
	parts := r.Parts()
	if len(parts) < 2 {
		return r
	}
	return fromParts(parts[:len(parts)-1])
}

// OnBranch reports whether revision r lies directly on branch b.
func (r RevisionNumber) OnBranch(b RevisionNumber) bool {
	return r.IsRevision() && r.BranchNumber() == b
}

// Compare orders revision numbers component by component as integers; when
// one is a prefix of the other the shorter sorts first. It returns -1, 0
// or +1.
func (r RevisionNumber) Compare(other RevisionNumber) int {
	a, b := r.Parts(), other.Parts()
	for idx := 0; idx < len(a) && idx < len(b); idx++ {
		switch {
		case a[idx] < b[idx]:
			return -1
		case a[idx] > b[idx]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Less reports whether r sorts before other.
func (r RevisionNumber) Less(other RevisionNumber) bool {
	return r.Compare(other) < 0
}

func fromParts(parts []int) RevisionNumber {
	fields := make([]string, len(parts))
	for idx, part := range parts {
		fields[idx] = strconv.Itoa(part)
	}
	return RevisionNumber(strings.Join(fields, "."))
}
