package rcs

import (
	"fmt"
)

// Lines reconstructs the text of revision rev as a list of lines. Lines
// from the head's text alias the File and must not be modified.
func (f *File) Lines(rev RevisionNumber) ([][]byte, error) {
	path, err := f.PathTo(rev)
	if err != nil {
		return nil, err
	}

	head := f.Revisions[path[0]]
	if !head.hasText {
		return nil, fmt.Errorf("%w: %s", ErrMissingDelta, head.Number)
	}
	lines := SplitLines(head.Text)

	for _, num := range path[1:] {
		if lines, err = f.step(lines, num); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// step applies the deltatext of num to the text of the revision before it
// on the path.
func (f *File) step(lines [][]byte, num RevisionNumber) ([][]byte, error) {
	script, err := f.Script(num)
	if err != nil {
		return nil, err
	}
	if lines, err = script.Apply(lines); err != nil {
		return nil, fmt.Errorf("%s: %w", num, err)
	}
	return lines, nil
}

// Script returns the parsed edit script stored for a non-head revision.
func (f *File) Script(num RevisionNumber) (Script, error) {
	rev, err := f.GetRevision(num)
	if err != nil {
		return nil, err
	}
	if !rev.hasText {
		return nil, fmt.Errorf("%w: %s", ErrMissingDelta, num)
	}
	if num == f.Head {
		return nil, fmt.Errorf("%w: head revision %s stores full text, not a script", ErrMalformedInput, num)
	}
	script, err := ParseScript(rev.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", num, err)
	}
	return script, nil
}

// Text reconstructs the full text of revision rev. For the head revision
// this is the stored text itself.
func (f *File) Text(rev RevisionNumber) ([]byte, error) {
	if rev != "" && rev == f.Head {
		head := f.Revisions[rev]
		if !head.hasText {
			return nil, fmt.Errorf("%w: %s", ErrMissingDelta, rev)
		}
		return head.Text, nil
	}
	lines, err := f.Lines(rev)
	if err != nil {
		return nil, err
	}
	return JoinLines(lines), nil
}

// CheckoutOptions control Checkout.
type CheckoutOptions struct {
	// Mode overrides the file's keyword substitution mode when set.
	Mode ExpandMode
}

// Checkout resolves spec, reconstructs that revision and performs keyword
// substitution the way "co -p" would. It returns the concrete revision
// number along with the text.
func (f *File) Checkout(spec string, opts CheckoutOptions) (RevisionNumber, []byte, error) {
	rev, err := f.Resolve(spec)
	if err != nil {
		return "", nil, err
	}
	text, err := f.Text(rev)
	if err != nil {
		return "", nil, err
	}

	mode := opts.Mode
	if mode == "" {
		if mode, err = ParseExpandMode(f.Expand); err != nil {
			return "", nil, err
		}
	}
	var name string
	if _, ok := f.tags[spec]; ok {
		name = spec
	}
	return rev, Expand(text, f, f.Revisions[rev], mode, name), nil
}

// Changes reports the lines added and removed by rev relative to its
// parent, as rlog prints them. The oldest trunk revision has no parent and
// reports zero.
func (f *File) Changes(num RevisionNumber) (added, removed int, err error) {
	if _, err = f.GetRevision(num); err != nil {
		return 0, 0, err
	}
	if num.IsBranch() {
		script, err := f.Script(num)
		if err != nil {
			return 0, 0, err
		}
		added, removed = script.Stats()
		return added, removed, nil
	}

	// The parent's script turns this revision into the parent, so its
	// additions are this revision's removals and vice versa.
	parent := f.parents[num]
	if parent == "" {
		return 0, 0, nil
	}
	script, err := f.Script(parent)
	if err != nil {
		return 0, 0, err
	}
	removed, added = script.Stats()
	return added, removed, nil
}
