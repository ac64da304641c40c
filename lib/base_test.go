package rcs

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePath = "testdata/sample,v"

// Full text of every revision in testdata/sample,v.
var sampleTexts = map[RevisionNumber]string{
	"1.1":     "alpha\nbeta\ngamma\n",
	"1.2":     "alpha\nBETA\ngamma\ndelta\n",
	"1.3":     "BETA\ngamma\ndelta\nepsilon\n",
	"1.2.2.1": "alpha\nBETA\nGAMMA-branch\ndelta\n",
	"1.2.2.2": "zeta\nalpha\nBETA\nGAMMA-branch\ndelta\n",
}

func loadSample(t *testing.T) *File {
	t.Helper()
	f, err := ParseFile(filepath.FromSlash(samplePath))
	require.NoError(t, err)
	return f
}

func parseString(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return f
}

func lines(texts ...string) [][]byte {
	out := make([][]byte, len(texts))
	for idx, text := range texts {
		out[idx] = []byte(text)
	}
	return out
}
