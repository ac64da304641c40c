package rcs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampleHeader(t *testing.T) {
	f := loadSample(t)

	assert.Equal(t, filepath.FromSlash(samplePath), f.Path)
	assert.Equal(t, RevisionNumber("1.3"), f.Head)
	assert.Equal(t, RevisionNumber(""), f.Branch)
	assert.Empty(t, f.Access)
	assert.True(t, f.Strict)
	assert.Equal(t, "# ", f.Comment)
	assert.Equal(t, "", f.Expand)
	assert.Equal(t, "Sample file.\n", string(f.Description))
	assert.Equal(t, []Lock{{User: "joe", Revision: "1.3"}}, f.Locks)
	assert.Equal(t, []Symbol{
		{Name: "GHOST", Revision: "1.9.0.2"},
		{Name: "EMPTY_BR", Revision: "1.3.0.4"},
		{Name: "BRANCH_A", Revision: "1.2.0.2"},
		{Name: "REL_1_0", Revision: "1.2"},
	}, f.Symbols)
	assert.Equal(t, []RevisionNumber{"1.3", "1.2", "1.1", "1.2.2.1", "1.2.2.2"}, f.Order())
}

func TestParseSampleRevisions(t *testing.T) {
	f := loadSample(t)
	require.Len(t, f.Revisions, 5)

	r13 := f.Revisions["1.3"]
	assert.Equal(t, "joe", r13.Author)
	assert.Equal(t, StateExp, r13.State)
	assert.Equal(t, RevisionNumber("1.2"), r13.Next)
	assert.Equal(t, "10042A1B2C3D4E5", r13.CommitID)
	assert.Equal(t, "joe", r13.Locker)
	assert.Equal(t, time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), r13.Date)
	assert.Equal(t, "Mail joe@example.com about epsilon.\n", string(r13.Log))
	assert.Equal(t, sampleTexts["1.3"], string(r13.Text))
	assert.True(t, r13.HasText())

	r12 := f.Revisions["1.2"]
	assert.Equal(t, []RevisionNumber{"1.2.2.1"}, r12.Branches)
	assert.Equal(t, "", r12.Locker)

	r11 := f.Revisions["1.1"]
	assert.Equal(t, RevisionNumber(""), r11.Next)
	assert.Equal(t, time.Date(1999, 1, 2, 3, 4, 5, 0, time.UTC), r11.Date)

	assert.Equal(t, RevisionNumber("1.2.2.2"), f.Revisions["1.2.2.1"].Next)
}

func TestParseParents(t *testing.T) {
	f := loadSample(t)
	assert.Equal(t, RevisionNumber("1.2"), f.Parent("1.3"))
	assert.Equal(t, RevisionNumber("1.1"), f.Parent("1.2"))
	assert.Equal(t, RevisionNumber(""), f.Parent("1.1"))
	assert.Equal(t, RevisionNumber("1.2"), f.Parent("1.2.2.1"))
	assert.Equal(t, RevisionNumber("1.2.2.1"), f.Parent("1.2.2.2"))
}

func TestParseTags(t *testing.T) {
	f := loadSample(t)
	rev, ok := f.Tag("REL_1_0")
	assert.True(t, ok)
	assert.Equal(t, RevisionNumber("1.2"), rev)
	assert.Equal(t, []string{"REL_1_0"}, f.TagsFor("1.2"))
	assert.Equal(t, map[string]RevisionNumber{
		"GHOST":    "1.9.2",
		"EMPTY_BR": "1.3.4",
		"BRANCH_A": "1.2.2",
	}, f.BranchTags())
}

func TestLogIsYoungestFirst(t *testing.T) {
	f := loadSample(t)
	var got []RevisionNumber
	for _, rev := range f.Log() {
		got = append(got, rev.Number)
	}
	assert.Equal(t, []RevisionNumber{"1.3", "1.2.2.2", "1.2.2.1", "1.2", "1.1"}, got)
}

const minimalHeader = "head 1.1;\naccess;\nsymbols;\nlocks;\n\n"

func TestParseNewphrasesAndOptionalFields(t *testing.T) {
	src := "head 1.1; branch 1.1.1; access alice bob; symbols; locks; comment @@; expand @kv@;\n" +
		"owner 640; group @staff@;\n" +
		"1.1 date 2001.02.03.04.05.06; author alice; state; branches; next;\n" +
		"mergepoint1 1.0 ; kopt @b@;\n" +
		"desc @@\n" +
		"1.1 log @init@ hash @abc@; text @one\n@\n"
	f := parseString(t, src)

	assert.Equal(t, RevisionNumber("1.1.1"), f.Branch)
	assert.Equal(t, []string{"alice", "bob"}, f.Access)
	assert.Equal(t, "kv", f.Expand)
	rev := f.Revisions["1.1"]
	assert.Equal(t, "", rev.State)
	assert.Equal(t, []Phrase{
		{Keyword: "owner", Words: []Word{{Kind: TokenNumber, Value: "640"}}},
		{Keyword: "group", Words: []Word{{Kind: TokenString, Value: "staff"}}},
	}, f.Extra)
	assert.Equal(t, []Phrase{
		{Keyword: "mergepoint1", Words: []Word{{Kind: TokenNumber, Value: "1.0"}}},
		{Keyword: "kopt", Words: []Word{{Kind: TokenString, Value: "b"}}},
	}, rev.Extra)
	assert.Equal(t, []Phrase{{Keyword: "hash", Words: []Word{{Kind: TokenString, Value: "abc"}}}}, rev.TextExtra)
	kopt, ok := rev.Newphrase("kopt")
	assert.True(t, ok)
	assert.Equal(t, "b", kopt.Text())
	assert.Equal(t, "one\n", string(rev.Text))
}

func TestParseEmptyFile(t *testing.T) {
	f := parseString(t, "head ;\naccess;\nsymbols;\nlocks; strict;\n\ndesc\n@@\n")
	assert.Equal(t, RevisionNumber(""), f.Head)
	assert.Empty(t, f.Revisions)

	_, err := f.Resolve("")
	assert.True(t, errors.Is(err, ErrUnknownRevision))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
	}{
		{"missing head", "access;\nsymbols;\n", 0},
		{"head not a revision", "head 1;\n", 6},
		{"missing date", minimalHeader + "1.1 author joe; state Exp; branches; next;\ndesc @@\n", -1},
		{"missing author", minimalHeader + "1.1 date 2001.01.01.00.00.00; state Exp; branches; next;\ndesc @@\n", -1},
		{"odd revision", minimalHeader + "1.1.1 date 2001.01.01.00.00.00; author a;\ndesc @@\n", len(minimalHeader)},
		{"bad date", minimalHeader + "1.1 date 2001.13.01.00.00.00; author a;\ndesc @@\n", len(minimalHeader) + 9},
		{"duplicate revision", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a;\n1.1 date 2001.01.01.00.00.00; author a;\ndesc @@\n", -1},
		{"missing desc", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next;\n", -1},
		{"unterminated text", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next;\ndesc @@\n1.1 log @x@ text @abc", -1},
		{"missing text", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next;\ndesc @@\n1.1 log @x@\n", -1},
		{"bad branch", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; branches 1.3.2.1; next;\ndesc @@\n", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.src))
			assert.Nil(t, f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)
			var syntax *SyntaxError
			require.True(t, errors.As(err, &syntax))
			if tt.offset >= 0 {
				assert.Equal(t, tt.offset, syntax.Offset)
			}
		})
	}
}

func TestParseInconsistentGraph(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"dangling head", "head 1.2;\ndesc @@\n"},
		{"dangling next", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next 1.0;\ndesc @@\n"},
		{"next not older", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next 1.1;\ndesc @@\n"},
		{"dangling branch", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; branches 1.1.2.1; next;\ndesc @@\n"},
		{"unknown deltatext", minimalHeader + "1.1 date 2001.01.01.00.00.00; author a; next;\ndesc @@\n1.7 log @@ text @@\n"},
		{"branch reached twice", minimalHeader +
			"1.1 date 2001.01.01.00.00.00; author a; branches 1.1.2.1; next;\n" +
			"1.1.2.1 date 2001.01.01.00.00.00; author a; next 1.1.2.2;\n" +
			"1.1.2.2 date 2001.01.01.00.00.00; author a; next;\n" +
			"1.1.2.3 date 2001.01.01.00.00.00; author a; next 1.1.2.2;\n" +
			"desc @@\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.src))
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, ErrInconsistentGraph), "got %v", err)
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing,v"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(t.TempDir(), "empty,v")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = ParseFile(empty)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), "empty,v")
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("97.12.31.23.59.58")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1997, 12, 31, 23, 59, 58, 0, time.UTC), date)
	assert.Equal(t, "1997.12.31.23.59.58", FormatDate(date))

	_, err = ParseDate("2001.02.30.00.00.00")
	assert.Error(t, err)
	_, err = ParseDate("2001.02.03")
	assert.Error(t, err)

	for _, bad := range []string{"2001.01.01.23.59.60", "2001.01.01.01.-1.00", "2001.01.01.24.00.00"} {
		_, err = ParseDate(bad)
		assert.Error(t, err, bad)
	}
}
