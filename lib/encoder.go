package rcs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// Encoder writes RCS syntax to an underlying writer. The first write error
// is kept and reported by Close; later writes are dropped.
type Encoder struct {
	w   *bufio.Writer
	err error
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriterSize(w, 4*1024)}
}

// Close flushes buffered output and returns the first error seen.
func (e *Encoder) Close() error {
	if e.err == nil {
		e.err = e.w.Flush()
	}
	return e.err
}

func (e *Encoder) Write(data []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(data)
	}
}

func (e *Encoder) Fprintf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}

func (e *Encoder) Newlines(n int) {
	for ; n > 0; n-- {
		e.Write([]byte{'\n'})
	}
}

var atSign, doubledAt = []byte{'@'}, []byte{'@', '@'}

// Quote writes data as an @-string, doubling any @ it contains.
func (e *Encoder) Quote(data []byte) {
	e.Write(atSign)
	e.Write(bytes.ReplaceAll(data, atSign, doubledAt))
	e.Write(atSign)
}

// Phrase writes a newphrase, quoting the words that were strings.
func (e *Encoder) Phrase(ph Phrase) {
	e.Fprintf("%s", ph.Keyword)
	for idx, word := range ph.Words {
		if idx == 0 {
			e.Write([]byte{'\t'})
		} else {
			e.Write([]byte{' '})
		}
		if word.Kind == TokenString {
			e.Quote([]byte(word.Value))
		} else {
			e.Write([]byte(word.Value))
		}
	}
	e.Fprintf(";\n")
}

// Encode writes f in RCS file syntax. Parsing the output yields a File
// equivalent to f.
func (f *File) Encode(w io.Writer) error {
	e := NewEncoder(w)

	e.Fprintf("%s\t%s;\n", KeywordHead, f.Head)
	if f.Branch != "" {
		e.Fprintf("%s\t%s;\n", KeywordBranch, f.Branch)
	}
	e.Fprintf("%s", KeywordAccess)
	for _, user := range f.Access {
		e.Fprintf(" %s", user)
	}
	e.Fprintf(";\n%s", KeywordSymbols)
	for _, sym := range f.Symbols {
		e.Fprintf("\n\t%s:%s", sym.Name, sym.Revision)
	}
	e.Fprintf(";\n%s", KeywordLocks)
	for _, lock := range f.Locks {
		e.Fprintf("\n\t%s:%s", lock.User, lock.Revision)
	}
	e.Fprintf(";")
	if f.Strict {
		e.Fprintf(" %s;", KeywordStrict)
	}
	e.Newlines(1)
	if f.Comment != "" {
		e.Fprintf("%s\t", KeywordComment)
		e.Quote([]byte(f.Comment))
		e.Fprintf(";\n")
	}
	if f.Expand != "" {
		e.Fprintf("%s\t", KeywordExpand)
		e.Quote([]byte(f.Expand))
		e.Fprintf(";\n")
	}
	for _, ph := range f.Extra {
		e.Phrase(ph)
	}
	e.Newlines(2)

	for _, num := range f.order {
		rev := f.Revisions[num]
		e.Fprintf("\n%s\n", num)
		e.Fprintf("%s\t%s;\t%s %s;\t%s %s;\n", KeywordDate, encodeDate(rev.Date), KeywordAuthor, rev.Author, KeywordState, rev.State)
		e.Fprintf("%s", KeywordBranches)
		for _, branch := range rev.Branches {
			e.Fprintf("\n\t%s", branch)
		}
		e.Fprintf(";\n%s\t%s;\n", KeywordNext, rev.Next)
		if rev.CommitID != "" {
			e.Fprintf("%s\t%s;\n", KeywordCommitID, rev.CommitID)
		}
		for _, ph := range rev.Extra {
			e.Phrase(ph)
		}
	}

	e.Fprintf("\n\n%s\n", KeywordDesc)
	e.Quote(f.Description)
	e.Newlines(1)

	for _, num := range f.order {
		rev := f.Revisions[num]
		if !rev.hasText {
			continue
		}
		e.Fprintf("\n\n%s\n%s\n", num, KeywordLog)
		e.Quote(rev.Log)
		e.Newlines(1)
		for _, ph := range rev.TextExtra {
			e.Phrase(ph)
		}
		e.Fprintf("%s\n", KeywordText)
		e.Quote(rev.Text)
		e.Newlines(1)
	}

	return e.Close()
}

// encodeDate writes years before 2000 with two digits, as RCS does.
func encodeDate(t time.Time) string {
	date := FormatDate(t)
	if year := t.UTC().Year(); year >= 1900 && year < 2000 {
		date = strings.TrimPrefix(date, "19")
	}
	return date
}
