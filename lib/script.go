package rcs

import (
	"bytes"
	"fmt"
	"strconv"
)

// Op is the kind of an edit command.
type Op byte

const (
	OpAdd    Op = 'a'
	OpDelete Op = 'd'
)

// Command is one line-based edit. Line is 1-based and refers to the text
// being transformed, before any command of the same script is applied.
// Delete removes Count lines starting at Line; Add inserts Lines after
// line Line (0 inserts at the top).
type Command struct {
	Op    Op
	Line  int
	Count int
	Lines [][]byte
}

func (c Command) String() string {
	return fmt.Sprintf("%c%d %d", c.Op, c.Line, c.Count)
}

// Script is an ordered list of edit commands, as stored in the deltatext of
// every revision other than the head.
type Script []Command

// SplitLines splits text after each newline. Each line keeps its
// terminating newline; the last line lacks one if the text does not end
// with a newline. The lines alias text.
func SplitLines(text []byte) [][]byte {
	if len(text) == 0 {
		return nil
	}
	lines := make([][]byte, 0, bytes.Count(text, []byte{Newline})+1)
	for len(text) > 0 {
		end := bytes.IndexByte(text, Newline)
		if end == -1 {
			lines = append(lines, text)
			break
		}
		lines, text = append(lines, text[:end+1]), text[end+1:]
	}
	return lines
}

// JoinLines concatenates lines back into a single text.
func JoinLines(lines [][]byte) []byte {
	size := 0
	for _, line := range lines {
		size += len(line)
	}
	text := make([]byte, 0, size)
	for _, line := range lines {
		text = append(text, line...)
	}
	return text
}

// ParseScript decodes the "aN M" / "dN M" edit commands of a deltatext.
func ParseScript(text []byte) (Script, error) {
	lines := SplitLines(text)
	script := make(Script, 0, len(lines)/2+1)
	for idx := 0; idx < len(lines); idx++ {
		cmd, err := parseCommand(lines[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: edit script line %d: %s", ErrMalformedInput, idx+1, err)
		}
		if cmd.Op == OpAdd {
			if cmd.Count > len(lines)-idx-1 {
				return nil, fmt.Errorf("%w: edit script line %d: %s wants %d lines, %d remain", ErrMalformedInput, idx+1, cmd, cmd.Count, len(lines)-idx-1)
			}
			cmd.Lines = lines[idx+1 : idx+1+cmd.Count]
			idx += cmd.Count
		}
		script = append(script, cmd)
	}
	return script, nil
}

func parseCommand(line []byte) (cmd Command, err error) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) < 4 {
		return cmd, fmt.Errorf("invalid command %q", line)
	}
	switch Op(line[0]) {
	case OpAdd, OpDelete:
		cmd.Op = Op(line[0])
	default:
		return cmd, fmt.Errorf("invalid command %q", line)
	}
	fields := bytes.Fields(line[1:])
	if len(fields) != 2 {
		return cmd, fmt.Errorf("invalid command %q", line)
	}
	if cmd.Line, err = strconv.Atoi(string(fields[0])); err != nil || cmd.Line < 0 {
		return cmd, fmt.Errorf("invalid line number in %q", line)
	}
	if cmd.Count, err = strconv.Atoi(string(fields[1])); err != nil || cmd.Count < 1 {
		return cmd, fmt.Errorf("invalid count in %q", line)
	}
	if cmd.Op == OpDelete && cmd.Line < 1 {
		return cmd, fmt.Errorf("invalid line number in %q", line)
	}
	return cmd, nil
}

// Apply transforms src according to the script and returns the new lines.
// Commands must be ordered by position in src and must not overlap; a
// script that violates this, or reaches past the end of src, is rejected
// with ErrMalformedInput rather than repaired. src is not modified.
func (s Script) Apply(src [][]byte) ([][]byte, error) {
	out := make([][]byte, 0, len(src)+s.added())
	err := s.walk(len(src), func(from, to int) {
		out = append(out, src[from:to]...)
	}, func(cmd Command, at int) {
		if cmd.Op == OpAdd {
			out = append(out, cmd.Lines...)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walk drives the cursor bookkeeping shared by Apply and the annotate
// overlay. keep is called for each run of source lines [from, to) that is
// copied unchanged; edit is called for each command, with the source
// position it applies at.
func (s Script) walk(length int, keep func(from, to int), edit func(cmd Command, at int)) error {
	pos := 0
	for idx, cmd := range s {
		var start int
		switch cmd.Op {
		case OpDelete:
			start = cmd.Line - 1
			if start < pos {
				return fmt.Errorf("%w: edit command %d (%s) overlaps or precedes line %d", ErrMalformedInput, idx+1, cmd, pos)
			}
			if cmd.Count > length-start {
				return fmt.Errorf("%w: edit command %d (%s) deletes past end of %d lines", ErrMalformedInput, idx+1, cmd, length)
			}
		case OpAdd:
			start = cmd.Line
			if start < pos {
				return fmt.Errorf("%w: edit command %d (%s) overlaps or precedes line %d", ErrMalformedInput, idx+1, cmd, pos)
			}
			if start > length {
				return fmt.Errorf("%w: edit command %d (%s) adds past end of %d lines", ErrMalformedInput, idx+1, cmd, length)
			}
		default:
			return fmt.Errorf("%w: edit command %d has unknown op %q", ErrMalformedInput, idx+1, cmd.Op)
		}

		if start > pos {
			keep(pos, start)
		}
		edit(cmd, start)
		pos = start
		if cmd.Op == OpDelete {
			pos += cmd.Count
		}
	}
	if pos < length {
		keep(pos, length)
	}
	return nil
}

// added returns the number of lines the script carries. Unlike delete
// counts, it is bounded by the size of the deltatext.
func (s Script) added() int {
	n := 0
	for _, cmd := range s {
		if cmd.Op == OpAdd {
			n += len(cmd.Lines)
		}
	}
	return n
}

// Stats counts the lines the script adds and deletes.
func (s Script) Stats() (added, deleted int) {
	for _, cmd := range s {
		switch cmd.Op {
		case OpAdd:
			added += cmd.Count
		case OpDelete:
			deleted += cmd.Count
		}
	}
	return added, deleted
}

// Format renders the script in deltatext form.
func (s Script) Format() []byte {
	var buf bytes.Buffer
	for _, cmd := range s {
		fmt.Fprintf(&buf, "%s\n", cmd)
		if cmd.Op == OpAdd {
			for _, line := range cmd.Lines {
				buf.Write(line)
			}
		}
	}
	return buf.Bytes()
}
