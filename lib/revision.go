package rcs

import (
	"strings"
	"time"
)

// Revision is one node of the revision tree: the admin record from the
// header plus the log message and text from its deltatext.
type Revision struct {
	Number   RevisionNumber   // This revision's number.
	Date     time.Time        // Commit time, UTC.
	Author   string           // Login of the committer.
	State    string           // Usually "Exp", or "dead" for CVS removals.
	Branches []RevisionNumber // First revisions of branches sprouting here.
	Next     RevisionNumber   // Trunk: next older revision. Branch: next newer.
	CommitID string           // CVS commitid newphrase, if present.
	Locker   string           // User holding a lock on this revision.

	// Extra holds the admin record's newphrases other than commitid, in
	// file order. TextExtra holds those of the deltatext.
	Extra     []Phrase
	TextExtra []Phrase

	Log  []byte // Log message.
	Text []byte // Full text for the head, an edit script otherwise.

	hasText bool
}

// HasText reports whether a deltatext record was present for the revision.
func (r *Revision) HasText() bool {
	return r.hasText
}

// IsDead reports whether CVS considers the file removed in this revision.
func (r *Revision) IsDead() bool {
	return r.State == StateDead
}

// Newphrase returns the first admin newphrase of the revision with the
// given keyword.
func (r *Revision) Newphrase(keyword string) (Phrase, bool) {
	return findPhrase(r.Extra, keyword)
}

// Word is one value of a newphrase. Kind is TokenIdentifier, TokenNumber,
// TokenString or TokenSymbol (for ":"); strings hold their decoded bytes.
type Word struct {
	Kind  TokenKind
	Value string
}

// Phrase is a newphrase: an extension keyword the parser does not
// interpret, with its words exactly as read.
type Phrase struct {
	Keyword string
	Words   []Word
}

// Text returns the phrase's words joined by single spaces.
func (ph Phrase) Text() string {
	values := make([]string, len(ph.Words))
	for idx, word := range ph.Words {
		values[idx] = word.Value
	}
	return strings.Join(values, " ")
}

func findPhrase(phrases []Phrase, keyword string) (Phrase, bool) {
	for _, ph := range phrases {
		if ph.Keyword == keyword {
			return ph, true
		}
	}
	return Phrase{}, false
}
