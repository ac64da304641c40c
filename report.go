package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	rcs "github.com/kfsone/rcs-go/lib"
	yml "gopkg.in/yaml.v3"
)

const (
	rlogDate     = "2006/01/02 15:04:05"
	annotateDate = "02-Jan-06"
	logDivider   = "----------------------------"
	fileDivider  = "============================================================================="
)

// writeYAML encodes v as a yaml document with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	ymlenc := yml.NewEncoder(w)
	ymlenc.SetIndent(2)
	if err := ymlenc.Encode(v); err != nil {
		return err
	}
	return ymlenc.Close()
}

type LineStats struct {
	Added   int `yaml:"added"`
	Removed int `yaml:"removed"`
}

type RevisionReport struct {
	Revision string     `yaml:"revision"`
	Date     time.Time  `yaml:"date"`
	Author   string     `yaml:"author"`
	State    string     `yaml:"state"`
	Lines    *LineStats `yaml:"lines,omitempty"`
	Branches []string   `yaml:"branches,omitempty"`
	Tags     []string   `yaml:"tags,omitempty"`
	Locker   string     `yaml:"locker,omitempty"`
	CommitID string     `yaml:"commitid,omitempty"`
	Log      string     `yaml:"log"`
}

type NamedRevision struct {
	Name     string `yaml:"name"`
	Revision string `yaml:"revision"`
}

// LogReport is the rlog view of one file.
type LogReport struct {
	File        string           `yaml:"file"`
	Head        string           `yaml:"head"`
	Branch      string           `yaml:"branch,omitempty"`
	Strict      bool             `yaml:"strict"`
	Locks       []NamedRevision  `yaml:"locks,omitempty"`
	Access      []string         `yaml:"access,omitempty"`
	Symbols     []NamedRevision  `yaml:"symbols,omitempty"`
	Expand      string           `yaml:"expand"`
	Description string           `yaml:"description"`
	Revisions   []RevisionReport `yaml:"revisions"`
}

func NewLogReport(f *rcs.File) (*LogReport, error) {
	expand := f.Expand
	if expand == "" {
		expand = string(rcs.ExpandKeyValue)
	}
	report := &LogReport{
		File:        f.Path,
		Head:        string(f.Head),
		Branch:      string(f.Branch),
		Strict:      f.Strict,
		Access:      f.Access,
		Expand:      expand,
		Description: string(f.Description),
	}
	for _, lock := range f.Locks {
		report.Locks = append(report.Locks, NamedRevision{Name: lock.User, Revision: string(lock.Revision)})
	}
	for _, sym := range f.Symbols {
		report.Symbols = append(report.Symbols, NamedRevision{Name: sym.Name, Revision: string(sym.Revision)})
	}

	for _, rev := range f.Log() {
		entry := RevisionReport{
			Revision: string(rev.Number),
			Date:     rev.Date,
			Author:   rev.Author,
			State:    rev.State,
			Tags:     f.TagsFor(rev.Number),
			Locker:   rev.Locker,
			CommitID: rev.CommitID,
			Log:      string(rev.Log),
		}
		for _, branch := range rev.Branches {
			entry.Branches = append(entry.Branches, string(branch.BranchNumber()))
		}
		if f.Parent(rev.Number) != "" {
			added, removed, err := f.Changes(rev.Number)
			if err != nil {
				return nil, err
			}
			entry.Lines = &LineStats{Added: added, Removed: removed}
		}
		report.Revisions = append(report.Revisions, entry)
	}
	return report, nil
}

// WriteText prints the report the way rlog does.
func (r *LogReport) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nRCS file: %s\n", r.File)
	fmt.Fprintf(&b, "head: %s\n", r.Head)
	fmt.Fprintf(&b, "branch: %s\n", r.Branch)
	b.WriteString("locks:")
	if r.Strict {
		b.WriteString(" strict")
	}
	b.WriteString("\n")
	for _, lock := range r.Locks {
		fmt.Fprintf(&b, "\t%s: %s\n", lock.Name, lock.Revision)
	}
	b.WriteString("access list:\n")
	for _, user := range r.Access {
		fmt.Fprintf(&b, "\t%s\n", user)
	}
	b.WriteString("symbolic names:\n")
	for _, sym := range r.Symbols {
		fmt.Fprintf(&b, "\t%s: %s\n", sym.Name, sym.Revision)
	}
	fmt.Fprintf(&b, "keyword substitution: %s\n", r.Expand)
	fmt.Fprintf(&b, "total revisions: %d\n", len(r.Revisions))
	fmt.Fprintf(&b, "description:\n%s", r.Description)
	if r.Description != "" && !strings.HasSuffix(r.Description, "\n") {
		b.WriteString("\n")
	}

	for _, rev := range r.Revisions {
		b.WriteString(logDivider + "\n")
		fmt.Fprintf(&b, "revision %s", color.CyanString(rev.Revision))
		if rev.Locker != "" {
			fmt.Fprintf(&b, "\tlocked by: %s;", color.YellowString(rev.Locker))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "date: %s;  author: %s;  state: %s;", rev.Date.UTC().Format(rlogDate), rev.Author, rev.State)
		if rev.Lines != nil {
			fmt.Fprintf(&b, "  lines: +%d -%d;", rev.Lines.Added, rev.Lines.Removed)
		}
		if rev.CommitID != "" {
			fmt.Fprintf(&b, "  commitid: %s;", rev.CommitID)
		}
		b.WriteString("\n")
		if len(rev.Branches) > 0 {
			fmt.Fprintf(&b, "branches:  %s;\n", strings.Join(rev.Branches, ";  "))
		}
		b.WriteString(rev.Log)
		if rev.Log != "" && !strings.HasSuffix(rev.Log, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString(fileDivider + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

type AnnotateLine struct {
	Line     int       `yaml:"line"`
	Revision string    `yaml:"revision"`
	Previous string    `yaml:"previous,omitempty"`
	Author   string    `yaml:"author"`
	Date     time.Time `yaml:"date"`
	Text     string    `yaml:"text"`
}

// AnnotateReport is the per-line provenance of one revision.
type AnnotateReport struct {
	File     string         `yaml:"file"`
	Revision string         `yaml:"revision"`
	Lines    []AnnotateLine `yaml:"lines"`
}

func NewAnnotateReport(f *rcs.File, rev rcs.RevisionNumber, annotated []rcs.AnnotatedLine) *AnnotateReport {
	report := &AnnotateReport{File: f.Path, Revision: string(rev), Lines: make([]AnnotateLine, len(annotated))}
	for idx, line := range annotated {
		report.Lines[idx] = AnnotateLine{
			Line:     line.LineNumber,
			Revision: string(line.Revision),
			Previous: string(line.PrevRevision),
			Author:   line.Author,
			Date:     line.Date,
			Text:     strings.TrimSuffix(string(line.Text), "\n"),
		}
	}
	return report
}

// WriteText prints one line per text line, cvs annotate style.
func (r *AnnotateReport) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%s (%s %s): %s\n",
			color.CyanString("%-12s", line.Revision),
			color.GreenString("%-8s", line.Author),
			line.Date.UTC().Format(annotateDate),
			line.Text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type VerifyResult struct {
	Path      string `yaml:"path"`
	Revisions int    `yaml:"revisions"`
	Error     string `yaml:"error,omitempty"`
}

// VerifyReport lists the outcome for every file checked.
type VerifyReport struct {
	Files   int            `yaml:"files"`
	Failed  int            `yaml:"failed"`
	Results []VerifyResult `yaml:"results"`
}

func (r *VerifyReport) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, result := range r.Results {
		if result.Error != "" {
			fmt.Fprintf(&b, "%s %s: %s\n", color.RedString("FAIL"), result.Path, result.Error)
		} else {
			fmt.Fprintf(&b, "%s   %s (%d revisions)\n", color.GreenString("ok"), result.Path, result.Revisions)
		}
	}
	fmt.Fprintf(&b, "%d files, %d failed\n", r.Files, r.Failed)
	_, err := io.WriteString(w, b.String())
	return err
}

// textWriter is implemented by every report.
type textWriter interface {
	WriteText(w io.Writer) error
}

// writeReport emits report in the configured format.
func writeReport(w io.Writer, format string, report textWriter) error {
	if format == FormatYAML {
		return writeYAML(w, report)
	}
	return report.WriteText(w)
}
