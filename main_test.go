package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rcs "github.com/kfsone/rcs-go/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yml "gopkg.in/yaml.v3"
)

const samplePath = "lib/testdata/sample,v"

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--quiet", "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckoutCommand(t *testing.T) {
	tests := map[string]string{
		"":         "BETA\ngamma\ndelta\nepsilon\n",
		"REL_1_0":  "alpha\nBETA\ngamma\ndelta\n",
		"1.1":      "alpha\nbeta\ngamma\n",
		"BRANCH_A": "zeta\nalpha\nBETA\nGAMMA-branch\ndelta\n",
		"EMPTY_BR": "BETA\ngamma\ndelta\nepsilon\n",
	}
	for rev, want := range tests {
		out, err := runCommand(t, "co", "-r", rev, samplePath)
		require.NoError(t, err, "revision %q", rev)
		assert.Equal(t, want, out, "revision %q", rev)
	}
}

func TestCheckoutErrors(t *testing.T) {
	_, err := runCommand(t, "co", "-r", "1.9", samplePath)
	assert.True(t, errors.Is(err, rcs.ErrUnknownRevision))

	_, err = runCommand(t, "co", "-r", "GHOST", samplePath)
	assert.True(t, errors.Is(err, rcs.ErrAmbiguousTag))

	_, err = runCommand(t, "co", "-k", "nope", samplePath)
	assert.Error(t, err)

	_, err = runCommand(t, "co", "missing,v")
	assert.Error(t, err)
}

func TestCheckoutExpandsKeywords(t *testing.T) {
	src := strings.Replace(readSample(t), "@BETA\n", "@$"+"Revision$\n", 1)
	path := filepath.Join(t.TempDir(), "kw,v")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	out, err := runCommand(t, "co", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$"+"Revision: 1.3 $\n"), out)

	out, err = runCommand(t, "co", "-k", "o", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$"+"Revision$\n"), out)
}

func TestAnnotateCommand(t *testing.T) {
	out, err := runCommand(t, "annotate", samplePath)
	require.NoError(t, err)
	want := "" +
		"1.2          (ann      06-May-04): BETA\n" +
		"1.1          (bob      02-Jan-99): gamma\n" +
		"1.2          (ann      06-May-04): delta\n" +
		"1.3          (joe      01-Jan-05): epsilon\n"
	assert.Equal(t, want, out)
}

func TestAnnotateCommandYAML(t *testing.T) {
	out, err := runCommand(t, "--format", "yaml", "blame", "-r", "BRANCH_A", samplePath)
	require.NoError(t, err)

	var report AnnotateReport
	require.NoError(t, yml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "1.2.2.2", report.Revision)
	require.Len(t, report.Lines, 5)

	got := make([]string, len(report.Lines))
	for idx, line := range report.Lines {
		got[idx] = line.Revision + " " + line.Text
	}
	assert.Equal(t, []string{"1.2.2.2 zeta", "1.1 alpha", "1.2 BETA", "1.2.2.1 GAMMA-branch", "1.2 delta"}, got)
	assert.Equal(t, "1.2.2.1", report.Lines[0].Previous)
	assert.Equal(t, "cid", report.Lines[0].Author)
}

func TestLogCommand(t *testing.T) {
	out, err := runCommand(t, "log", samplePath)
	require.NoError(t, err)

	for _, want := range []string{
		"RCS file: " + samplePath + "\n",
		"head: 1.3\n",
		"locks: strict\n\tjoe: 1.3\n",
		"symbolic names:\n\tGHOST: 1.9.0.2\n\tEMPTY_BR: 1.3.0.4\n\tBRANCH_A: 1.2.0.2\n\tREL_1_0: 1.2\n",
		"keyword substitution: kv\n",
		"total revisions: 5\n",
		"description:\nSample file.\n",
		"revision 1.3\tlocked by: joe;\n",
		"date: 2005/01/01 00:00:00;  author: joe;  state: Exp;  lines: +1 -1;  commitid: 10042A1B2C3D4E5;\n",
		"date: 2004/05/06 07:08:09;  author: ann;  state: Exp;  lines: +2 -1;\nbranches:  1.2.2;\n",
		"date: 1999/01/02 03:04:05;  author: bob;  state: Exp;\nInitial revision\n",
		"Mail joe@example.com about epsilon.\n",
	} {
		assert.Contains(t, out, want)
	}

	order := []string{"revision 1.3", "revision 1.2.2.2", "revision 1.2.2.1", "revision 1.2\n", "revision 1.1"}
	last := -1
	for _, marker := range order {
		at := strings.Index(out, marker)
		require.Greater(t, at, last, "%s out of order", marker)
		last = at
	}
	assert.True(t, strings.HasSuffix(out, fileDivider+"\n"))
}

func TestLogCommandYAML(t *testing.T) {
	out, err := runCommand(t, "--format", "yaml", "log", samplePath)
	require.NoError(t, err)

	var report LogReport
	require.NoError(t, yml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "1.3", report.Head)
	assert.True(t, report.Strict)
	require.Len(t, report.Revisions, 5)

	head := report.Revisions[0]
	assert.Equal(t, "1.3", head.Revision)
	assert.Equal(t, "joe", head.Locker)
	assert.Equal(t, &LineStats{Added: 1, Removed: 1}, head.Lines)

	root := report.Revisions[4]
	assert.Equal(t, "1.1", root.Revision)
	assert.Nil(t, root.Lines)
	assert.Equal(t, 1999, root.Date.Year())

	assert.Equal(t, []string{"REL_1_0"}, report.Revisions[3].Tags)
}

func TestVerifyCommand(t *testing.T) {
	out, err := runCommand(t, "verify", "lib/testdata")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+filepath.Join("lib", "testdata", "sample,v")+" (5 revisions)\n")
	assert.Contains(t, out, "1 files, 0 failed\n")
}

func TestVerifyCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good,v"), []byte(readSample(t)), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Attic"), 0o755))
	broken := strings.Replace(readSample(t), "@d3 1\na3 1\n", "@d9 1\na3 1\n", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Attic", "bad,v"), []byte(broken), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not rcs"), 0o644))

	out, err := runCommand(t, "verify", "-j", "2", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "FAIL "+filepath.Join(dir, "Attic", "bad,v"))

	out, err = runCommand(t, "verify", "--exclude", "Attic", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 files, 0 failed\n")
}

func readSample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	return string(data)
}
