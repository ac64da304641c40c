package rcs

// Keywords of the RCS file grammar.
const (
	KeywordHead     = "head"
	KeywordBranch   = "branch"
	KeywordAccess   = "access"
	KeywordSymbols  = "symbols"
	KeywordLocks    = "locks"
	KeywordStrict   = "strict"
	KeywordComment  = "comment"
	KeywordExpand   = "expand"
	KeywordDate     = "date"
	KeywordAuthor   = "author"
	KeywordState    = "state"
	KeywordBranches = "branches"
	KeywordNext     = "next"
	KeywordCommitID = "commitid"
	KeywordDesc     = "desc"
	KeywordLog      = "log"
	KeywordText     = "text"
)

// StateExp is the state RCS assigns to a revision when none is given.
const StateExp = "Exp"

// StateDead marks a revision where CVS considers the file removed.
const StateDead = "dead"

// Newline terminates every line of revision text except, possibly, the last.
const Newline = '\n'
