package rcs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AnnotatedLine is one line of a revision's text together with the
// revision that introduced it.
type AnnotatedLine struct {
	Text         []byte
	Revision     RevisionNumber // Revision that introduced the line.
	PrevRevision RevisionNumber // Parent of Revision; "" for the root.
	Author       string
	Date         time.Time
	LineNumber   int // 1-based position in the annotated revision.
}

// String returns a compact representation, handy in test output.
func (l AnnotatedLine) String() string {
	return strconv.Itoa(l.LineNumber) + ":" + string(l.Revision) + ":" + strings.TrimRight(string(l.Text), "\n")
}

// Annotate resolves spec and attributes every line of that revision's text
// to the revision that introduced it.
func (f *File) Annotate(spec string) ([]AnnotatedLine, error) {
	target, err := f.Resolve(spec)
	if err != nil {
		return nil, err
	}
	return f.AnnotateRevision(target)
}

// AnnotateRevision attributes every line of target's text to the revision
// that introduced it.
//
// The trunk is stored newest first, so the trunk revision on the path is
// reconstructed and then the walk continues down to the oldest trunk
// revision: a line of interest that an older revision's script deletes
// was introduced by the newer revision of that step, and lines that
// survive to the bottom belong to the oldest revision. Branch revisions
// are stored forward, so each branch script stamps the lines it adds and
// the other lines keep their attribution.
func (f *File) AnnotateRevision(target RevisionNumber) ([]AnnotatedLine, error) {
	path, err := f.PathTo(target)
	if err != nil {
		return nil, err
	}

	split := 0
	for split+1 < len(path) && path[split+1].IsTrunk() {
		split++
	}
	lines, stamps, err := f.blameTrunk(path[:split+1])
	if err != nil {
		return nil, err
	}

	for _, num := range path[split+1:] {
		if lines, stamps, err = f.blameBranchStep(lines, stamps, num); err != nil {
			return nil, err
		}
	}

	annotated := make([]AnnotatedLine, len(lines))
	for idx, line := range lines {
		rev := f.Revisions[stamps[idx]]
		annotated[idx] = AnnotatedLine{
			Text:         line,
			Revision:     rev.Number,
			PrevRevision: f.parents[rev.Number],
			Author:       rev.Author,
			Date:         rev.Date,
			LineNumber:   idx + 1,
		}
	}
	return annotated, nil
}

// blameTrunk reconstructs the last revision of path, which runs from head
// down the trunk, and attributes each of its lines.
func (f *File) blameTrunk(path []RevisionNumber) ([][]byte, []RevisionNumber, error) {
	base := path[len(path)-1]
	lines, err := f.Lines(base)
	if err != nil {
		return nil, nil, err
	}

	stamps := make([]RevisionNumber, len(lines))

	// work[i] is the index in lines of the i'th line of the revision being
	// visited, or -1 for lines that are not in base.
	work := make([]int, len(lines))
	for idx := range work {
		work[idx] = idx
	}
	remaining := len(lines)

	newer := base
	for older := f.Revisions[base].Next; older != "" && remaining > 0; older = f.Revisions[older].Next {
		script, err := f.Script(older)
		if err != nil {
			return nil, nil, err
		}
		next := make([]int, 0, len(work))
		err = script.walk(len(work), func(from, to int) {
			next = append(next, work[from:to]...)
		}, func(cmd Command, at int) {
			switch cmd.Op {
			case OpDelete:
				for _, owner := range work[at : at+cmd.Count] {
					if owner >= 0 {
						stamps[owner] = newer
						remaining--
					}
				}
			case OpAdd:
				for n := 0; n < cmd.Count; n++ {
					next = append(next, -1)
				}
			}
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", older, err)
		}
		work, newer = next, older
	}

	for idx := range stamps {
		if stamps[idx] == "" {
			stamps[idx] = newer
		}
	}
	return lines, stamps, nil
}

// blameBranchStep applies the forward script of branch revision num,
// stamping added lines with num.
func (f *File) blameBranchStep(lines [][]byte, stamps []RevisionNumber, num RevisionNumber) ([][]byte, []RevisionNumber, error) {
	script, err := f.Script(num)
	if err != nil {
		return nil, nil, err
	}
	outLines := make([][]byte, 0, len(lines)+script.added())
	outStamps := make([]RevisionNumber, 0, cap(outLines))
	err = script.walk(len(lines), func(from, to int) {
		outLines = append(outLines, lines[from:to]...)
		outStamps = append(outStamps, stamps[from:to]...)
	}, func(cmd Command, at int) {
		if cmd.Op == OpAdd {
			outLines = append(outLines, cmd.Lines...)
			for n := 0; n < cmd.Count; n++ {
				outStamps = append(outStamps, num)
			}
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", num, err)
	}
	return outLines, outStamps, nil
}
