package rcs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option configures Parse.
type Option func(*parser)

// WithLogger directs parser diagnostics to logger. By default nothing is
// logged.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *parser) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithPath records the path the file was read from in File.Path.
func WithPath(path string) Option {
	return func(p *parser) {
		p.file.Path = path
	}
}

type parser struct {
	lex  *Lexer
	file *File
	log  *zap.SugaredLogger
}

// ParseBytes parses an RCS file held in memory. All strings are copied out
// of data, so the caller may reuse or release it afterwards.
func ParseBytes(data []byte, opts ...Option) (*File, error) {
	p := &parser{
		lex: NewLexer(data),
		file: &File{
			Revisions: make(map[RevisionNumber]*Revision),
			tags:      make(map[string]RevisionNumber),
			parents:   make(map[RevisionNumber]RevisionNumber),
		},
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}

	//g: rcstext <- admin {delta}* desc {deltatext}*
	if err := p.admin(); err != nil {
		return nil, err
	}
	p.log.Debugw("rcs admin", "path", p.file.Path, "head", p.file.Head, "branch", p.file.Branch, "symbols", len(p.file.Symbols))

	if err := p.deltas(); err != nil {
		return nil, err
	}
	if err := p.desc(); err != nil {
		return nil, err
	}
	if err := p.deltatexts(); err != nil {
		return nil, err
	}
	if err := p.file.link(); err != nil {
		return nil, err
	}
	p.log.Debugw("rcs parsed", "path", p.file.Path, "revisions", len(p.file.Revisions))

	return p.file, nil
}

// admin parses the header phrases up to the first delta record. "head"
// must come first; the rest are accepted in any order.
func (p *parser) admin() error {
	//g: head {num};
	if err := p.lex.ExpectKeyword(KeywordHead); err != nil {
		return err
	}
	head, err := p.optionalNumber()
	if err != nil {
		return err
	}
	if head != "" && !head.IsRevision() {
		return p.syntaxError("head revision number", string(head))
	}
	p.file.Head = head
	if err := p.lex.ExpectSymbol(';'); err != nil {
		return err
	}

	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return err
		}
		if tok.Kind != TokenIdentifier || string(tok.Raw) == KeywordDesc {
			return nil
		}
		p.lex.Next()

		switch keyword := string(tok.Raw); keyword {
		case KeywordBranch:
			//g: branch {num};
			if p.file.Branch, err = p.optionalNumber(); err != nil {
				return err
			}
			err = p.lex.ExpectSymbol(';')

		case KeywordAccess:
			//g: access {id}*;
			p.file.Access, err = p.identifiers()

		case KeywordSymbols:
			//g: symbols {sym : num}*;
			err = p.pairs(func(name string, rev RevisionNumber) {
				if _, dup := p.file.tags[name]; dup {
					p.log.Debugw("duplicate symbol", "symbol", name, "revision", rev)
					return
				}
				p.file.Symbols = append(p.file.Symbols, Symbol{Name: name, Revision: rev})
				p.file.tags[name] = rev
			})

		case KeywordLocks:
			//g: locks {id : num}*; [strict ;]
			err = p.pairs(func(user string, rev RevisionNumber) {
				p.file.Locks = append(p.file.Locks, Lock{User: user, Revision: rev})
			})

		case KeywordStrict:
			p.file.Strict = true
			err = p.lex.ExpectSymbol(';')

		case KeywordComment:
			//g: comment {string};
			var value []byte
			if value, err = p.optionalString(); err == nil {
				p.file.Comment = string(value)
			}

		case KeywordExpand:
			//g: expand {string};
			var value []byte
			if value, err = p.optionalString(); err == nil {
				p.file.Expand = string(value)
			}

		default:
			p.log.Debugw("admin newphrase", "keyword", keyword)
			var words []Word
			if words, err = p.newphrase(); err == nil {
				p.file.Extra = append(p.file.Extra, Phrase{Keyword: keyword, Words: words})
			}
		}
		if err != nil {
			return err
		}
	}
}

// deltas parses the admin record of every revision.
func (p *parser) deltas() error {
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return err
		}
		if tok.Kind != TokenNumber {
			return nil
		}
		if err := p.delta(); err != nil {
			return err
		}
	}
}

//g: delta <- num date num; author id; state {id}; branches {num}*; next {num}; {newphrase}*
func (p *parser) delta() error {
	tok, _ := p.lex.Next()
	num, err := ParseRevisionNumber(string(tok.Raw))
	if err != nil || !num.IsRevision() {
		return &SyntaxError{Offset: tok.Offset, Expected: "revision number", Found: tok.String()}
	}
	if _, dup := p.file.Revisions[num]; dup {
		return &SyntaxError{Offset: tok.Offset, Expected: "unique revision number", Found: "duplicate " + string(num)}
	}

	rev := &Revision{Number: num}
	var sawDate, sawAuthor bool
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return err
		}
		if tok.Kind != TokenIdentifier || string(tok.Raw) == KeywordDesc {
			break
		}
		p.lex.Next()

		switch keyword := string(tok.Raw); keyword {
		case KeywordDate:
			dateTok, err := p.lex.Expect(TokenNumber)
			if err != nil {
				return err
			}
			if rev.Date, err = ParseDate(string(dateTok.Raw)); err != nil {
				return &SyntaxError{Offset: dateTok.Offset, Expected: "date", Found: err.Error()}
			}
			sawDate = true
			err = p.lex.ExpectSymbol(';')
			if err != nil {
				return err
			}

		case KeywordAuthor:
			words, err := p.words()
			if err != nil {
				return err
			}
			rev.Author = strings.Join(words, " ")
			sawAuthor = true

		case KeywordState:
			words, err := p.words()
			if err != nil {
				return err
			}
			rev.State = strings.Join(words, " ")

		case KeywordBranches:
			for {
				branch, err := p.optionalNumber()
				if err != nil {
					return err
				}
				if branch == "" {
					break
				}
				if !branch.IsBranch() || branch.BranchPoint() != num {
					return p.syntaxError("branch revision of "+string(num), string(branch))
				}
				rev.Branches = append(rev.Branches, branch)
			}
			if err := p.lex.ExpectSymbol(';'); err != nil {
				return err
			}

		case KeywordNext:
			if rev.Next, err = p.optionalNumber(); err != nil {
				return err
			}
			if rev.Next != "" && !rev.Next.IsRevision() {
				return p.syntaxError("revision number", string(rev.Next))
			}
			if err := p.lex.ExpectSymbol(';'); err != nil {
				return err
			}

		default:
			words, err := p.newphrase()
			if err != nil {
				return err
			}
			phrase := Phrase{Keyword: keyword, Words: words}
			if keyword == KeywordCommitID && rev.CommitID == "" {
				rev.CommitID = phrase.Text()
				continue
			}
			rev.Extra = append(rev.Extra, phrase)
		}
	}

	if !sawDate {
		return p.syntaxError(fmt.Sprintf("%q in revision %s", KeywordDate, num), "")
	}
	if !sawAuthor {
		return p.syntaxError(fmt.Sprintf("%q in revision %s", KeywordAuthor, num), "")
	}

	p.file.Revisions[num] = rev
	p.file.order = append(p.file.order, num)
	return nil
}

//g: desc <- desc string
func (p *parser) desc() error {
	if err := p.lex.ExpectKeyword(KeywordDesc); err != nil {
		return err
	}
	tok, err := p.lex.Expect(TokenString)
	if err != nil {
		return err
	}
	p.file.Description = tok.Raw
	return nil
}

//g: deltatext <- num log string {newphrase}* text string
func (p *parser) deltatexts() error {
	for !p.lex.AtEOF() {
		tok, err := p.lex.Expect(TokenNumber)
		if err != nil {
			return err
		}
		num, err := ParseRevisionNumber(string(tok.Raw))
		if err != nil {
			return &SyntaxError{Offset: tok.Offset, Expected: "revision number", Found: tok.String()}
		}
		rev, ok := p.file.Revisions[num]
		if !ok {
			return fmt.Errorf("%w: deltatext for %s at offset %d has no admin record", ErrInconsistentGraph, num, tok.Offset)
		}
		if rev.hasText {
			return &SyntaxError{Offset: tok.Offset, Expected: "one deltatext per revision", Found: "duplicate " + string(num)}
		}

		if err := p.lex.ExpectKeyword(KeywordLog); err != nil {
			return err
		}
		logTok, err := p.lex.Expect(TokenString)
		if err != nil {
			return err
		}
		rev.Log = logTok.Raw

		for {
			tok, err := p.lex.Next()
			if err != nil {
				return err
			}
			if tok.Is(TokenIdentifier, KeywordText) {
				break
			}
			if tok.Kind != TokenIdentifier {
				return &SyntaxError{Offset: tok.Offset, Expected: fmt.Sprintf("%q", KeywordText), Found: tok.String()}
			}
			words, err := p.newphrase()
			if err != nil {
				return err
			}
			rev.TextExtra = append(rev.TextExtra, Phrase{Keyword: string(tok.Raw), Words: words})
		}
		textTok, err := p.lex.Expect(TokenString)
		if err != nil {
			return err
		}
		rev.Text = textTok.Raw
		rev.hasText = true
	}
	return nil
}

// link checks that every reference in the tree resolves, and records the
// predecessor of each revision.
func (f *File) link() error {
	if f.Head != "" {
		if _, ok := f.Revisions[f.Head]; !ok {
			return fmt.Errorf("%w: head %s has no admin record", ErrInconsistentGraph, f.Head)
		}
	}
	for _, num := range f.order {
		rev := f.Revisions[num]
		if rev.Next != "" {
			next, ok := f.Revisions[rev.Next]
			if !ok {
				return fmt.Errorf("%w: %s: next %s has no admin record", ErrInconsistentGraph, num, rev.Next)
			}
			// Trunk next pointers descend and branch ones ascend, which
			// also rules out cycles.
			if num.IsTrunk() {
				if !next.Number.IsTrunk() || !next.Number.Less(num) {
					return fmt.Errorf("%w: %s: next %s is not an older trunk revision", ErrInconsistentGraph, num, rev.Next)
				}
				if err := f.setParent(num, next.Number); err != nil {
					return err
				}
			} else {
				if !next.Number.OnBranch(num.BranchNumber()) || !num.Less(next.Number) {
					return fmt.Errorf("%w: %s: next %s is not a newer revision on the branch", ErrInconsistentGraph, num, rev.Next)
				}
				if err := f.setParent(next.Number, num); err != nil {
					return err
				}
			}
		}
		for _, branch := range rev.Branches {
			if _, ok := f.Revisions[branch]; !ok {
				return fmt.Errorf("%w: %s: branch %s has no admin record", ErrInconsistentGraph, num, branch)
			}
			if err := f.setParent(branch, num); err != nil {
				return err
			}
		}
	}
	for _, lock := range f.Locks {
		if rev, ok := f.Revisions[lock.Revision]; ok {
			rev.Locker = lock.User
		}
	}
	return nil
}

func (f *File) setParent(child, parent RevisionNumber) error {
	if prior, ok := f.parents[child]; ok && prior != parent {
		return fmt.Errorf("%w: %s is reached from both %s and %s", ErrInconsistentGraph, child, prior, parent)
	}
	f.parents[child] = parent
	return nil
}

// optionalNumber reads a number if one is next, returning "" otherwise.
func (p *parser) optionalNumber() (RevisionNumber, error) {
	tok, err := p.lex.Peek()
	if err != nil || tok.Kind != TokenNumber {
		return "", err
	}
	p.lex.Next()
	num, err := ParseRevisionNumber(string(tok.Raw))
	if err != nil {
		return "", &SyntaxError{Offset: tok.Offset, Expected: "revision number", Found: tok.String()}
	}
	return num, nil
}

// optionalString reads "{string};".
func (p *parser) optionalString() ([]byte, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	var value []byte
	if tok.Kind == TokenString {
		p.lex.Next()
		value = tok.Raw
	}
	return value, p.lex.ExpectSymbol(';')
}

// identifiers reads "{id}*;". Numbers are accepted as identifiers since
// RCS allows ids that begin with digits.
func (p *parser) identifiers() ([]string, error) {
	var ids []string
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Kind == TokenIdentifier || tok.Kind == TokenNumber:
			ids = append(ids, string(tok.Raw))
		case tok.Is(TokenSymbol, ";"):
			return ids, nil
		default:
			return nil, &SyntaxError{Offset: tok.Offset, Expected: "identifier or ';'", Found: tok.String()}
		}
	}
}

// words reads identifiers up to ";" for author and state, whose values
// are nominally a single id.
func (p *parser) words() ([]string, error) {
	return p.identifiers()
}

// pairs reads "{id : num}*;".
func (p *parser) pairs(fn func(string, RevisionNumber)) error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		if tok.Is(TokenSymbol, ";") {
			return nil
		}
		if tok.Kind != TokenIdentifier && tok.Kind != TokenNumber {
			return &SyntaxError{Offset: tok.Offset, Expected: "identifier or ';'", Found: tok.String()}
		}
		if err := p.lex.ExpectSymbol(':'); err != nil {
			return err
		}
		numTok, err := p.lex.Expect(TokenNumber)
		if err != nil {
			return err
		}
		num, err := ParseRevisionNumber(string(numTok.Raw))
		if err != nil {
			return &SyntaxError{Offset: numTok.Offset, Expected: "revision number", Found: numTok.String()}
		}
		fn(string(tok.Raw), num)
	}
}

// newphrase consumes the words of a phrase whose keyword has already been
// read, through the terminating ";".
//
//g: newphrase <- id word* ;    word <- id | num | string | :
func (p *parser) newphrase() ([]Word, error) {
	var words []Word
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Is(TokenSymbol, ";"):
			return words, nil
		case tok.Kind == TokenEOF:
			return nil, &SyntaxError{Offset: tok.Offset, Expected: "';' ending phrase", Found: tok.String()}
		default:
			words = append(words, Word{Kind: tok.Kind, Value: string(tok.Raw)})
		}
	}
}

func (p *parser) syntaxError(expected, found string) error {
	return &SyntaxError{Offset: p.lex.Offset(), Expected: expected, Found: found}
}

// ParseDate converts an RCS date, Y.mm.dd.hh.mm.ss, to a UTC time. Years
// written with two digits are in the 1900s.
func ParseDate(s string) (time.Time, error) {
	fields := strings.Split(s, ".")
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	var parts [6]int
	for idx, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
		parts[idx] = n
	}
	if len(fields[0]) == 2 {
		parts[0] += 1900
	}
	date := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	if date.Month() != time.Month(parts[1]) || date.Day() != parts[2] || parts[3] > 23 || parts[4] > 59 || parts[5] > 59 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return date, nil
}

// FormatDate renders t in the four-digit-year RCS date form.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d.%02d.%02d.%02d.%02d.%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}
