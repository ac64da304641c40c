package rcs

import (
	"fmt"
	"strings"
)

// RevisionHead is the revision specifier for the default revision.
const RevisionHead = "HEAD"

// Resolve turns a revision specifier into a concrete revision number.
// Accepted specifiers are:
//
//	""/"HEAD"     the tip of the principal branch if one is set, else head
//	1.4, 1.2.2.1  a revision number
//	1.2.2         a branch number, meaning the tip of that branch
//	TAG           a symbolic name; branch tags resolve to the branch tip
func (f *File) Resolve(spec string) (RevisionNumber, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == RevisionHead {
		if f.Head == "" {
			return "", fmt.Errorf("%w: file has no revisions", ErrUnknownRevision)
		}
		if f.Branch != "" {
			return f.resolveNumber(f.Branch, spec)
		}
		return f.Head, nil
	}

	if num, err := ParseRevisionNumber(spec); err == nil {
		return f.resolveNumber(num, spec)
	}

	if num, ok := f.tags[spec]; ok {
		return f.resolveNumber(num, spec)
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownRevision, spec)
}

func (f *File) resolveNumber(num RevisionNumber, spec string) (RevisionNumber, error) {
	switch {
	case num.IsMagic():
		return f.BranchTip(num.UnMagic())
	case num.IsBranchNumber():
		return f.BranchTip(num)
	}
	if _, ok := f.Revisions[num]; !ok {
		if num != RevisionNumber(spec) {
			return "", fmt.Errorf("%w: %s (%s)", ErrUnknownRevision, spec, num)
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownRevision, num)
	}
	return num, nil
}

// BranchTip returns the newest revision on the branch, e.g. 1.2.2.3 for
// branch 1.2.2. A branch with no revisions yet resolves to its branch
// point. Branch 1 (or any single component) means the trunk; its tip is
// the newest trunk revision with that major number.
func (f *File) BranchTip(branch RevisionNumber) (RevisionNumber, error) {
	if !branch.IsBranchNumber() {
		return "", fmt.Errorf("%w: %s is not a branch number", ErrUnknownRevision, branch)
	}

	var tip RevisionNumber
	for num := range f.Revisions {
		if num.OnBranch(branch) && (tip == "" || tip.Less(num)) {
			tip = num
		}
	}
	if tip != "" {
		return tip, nil
	}

	point := branch.BranchPoint()
	if point == "" {
		return "", fmt.Errorf("%w: no revisions on branch %s", ErrUnknownRevision, branch)
	}
	if _, ok := f.Revisions[point]; !ok {
		return "", fmt.Errorf("%w: branch %s sprouts from missing revision %s", ErrAmbiguousTag, branch, point)
	}
	return point, nil
}

// PathTo returns the revisions whose deltatexts must be applied, in order,
// to reconstruct target: head first, down the trunk to target or its
// branch point, then up each branch to target.
func (f *File) PathTo(target RevisionNumber) ([]RevisionNumber, error) {
	if _, ok := f.Revisions[target]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, target)
	}

	// Climb from target to the trunk.
	var branch []RevisionNumber
	at := target
	for !at.IsTrunk() {
		branch = append(branch, at)
		parent, ok := f.parents[at]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not reachable from head", ErrInconsistentGraph, at)
		}
		at = parent
	}

	path := make([]RevisionNumber, 0, len(branch)+8)
	for num := f.Head; ; num = f.Revisions[num].Next {
		if num == "" {
			return nil, fmt.Errorf("%w: %s is not on the trunk below head %s", ErrInconsistentGraph, at, f.Head)
		}
		path = append(path, num)
		if num == at {
			break
		}
	}

	for idx := len(branch) - 1; idx >= 0; idx-- {
		path = append(path, branch[idx])
	}
	return path, nil
}

// Trunk returns the trunk revisions from head down to the oldest.
func (f *File) Trunk() []RevisionNumber {
	var trunk []RevisionNumber
	for num := f.Head; num != ""; num = f.Revisions[num].Next {
		trunk = append(trunk, num)
	}
	return trunk
}
