package rcs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
)

// ExpandMode is an RCS keyword substitution mode, as given to co -k.
type ExpandMode string

const (
	ExpandKeyValue       ExpandMode = "kv"
	ExpandKeyValueLocker ExpandMode = "kvl"
	ExpandKey            ExpandMode = "k"
	ExpandValue          ExpandMode = "v"
	ExpandOld            ExpandMode = "o"
	ExpandBinary         ExpandMode = "b"
)

// ParseExpandMode validates a mode string. The empty string means the RCS
// default, kv.
func ParseExpandMode(s string) (ExpandMode, error) {
	switch mode := ExpandMode(s); mode {
	case "":
		return ExpandKeyValue, nil
	case ExpandKeyValue, ExpandKeyValueLocker, ExpandKey, ExpandValue, ExpandOld, ExpandBinary:
		return mode, nil
	}
	return "", fmt.Errorf("%w: unknown keyword expansion mode %q", ErrMalformedInput, s)
}

// $Log$ is not expanded.
var keywordPattern = regexp.MustCompile(`\$(Author|Date|Header|Id|Locker|Name|RCSfile|Revision|Source|State)(?::[^$\n]*)?\$`)

// Expand performs keyword substitution on text for revision rev of f.
// name is the symbolic name used to select the revision, for $Name$.
func Expand(text []byte, f *File, rev *Revision, mode ExpandMode, name string) []byte {
	if mode == ExpandOld || mode == ExpandBinary || rev == nil {
		return text
	}
	if bytes.IndexByte(text, '$') == -1 {
		return text
	}

	return keywordPattern.ReplaceAllFunc(text, func(match []byte) []byte {
		keyword := string(keywordPattern.FindSubmatch(match)[1])
		switch mode {
		case ExpandKey:
			return []byte("$" + keyword + "$")
		case ExpandValue:
			return []byte(keywordValue(keyword, f, rev, mode, name))
		}
		value := keywordValue(keyword, f, rev, mode, name)
		if value == "" {
			return []byte("$" + keyword + ": $")
		}
		return []byte("$" + keyword + ": " + value + " $")
	})
}

func keywordValue(keyword string, f *File, rev *Revision, mode ExpandMode, name string) string {
	date := rev.Date.UTC().Format("2006/01/02 15:04:05")
	switch keyword {
	case "Author":
		return rev.Author
	case "Date":
		return date
	case "Header", "Id":
		file := baseName(f.Path)
		if keyword == "Header" {
			file = f.Path
		}
		value := fmt.Sprintf("%s %s %s %s %s", file, rev.Number, date, rev.Author, rev.State)
		if mode == ExpandKeyValueLocker && rev.Locker != "" {
			value += " " + rev.Locker
		}
		return value
	case "Locker":
		if mode == ExpandKeyValueLocker {
			return rev.Locker
		}
		return ""
	case "Name":
		return name
	case "RCSfile":
		return baseName(f.Path)
	case "Revision":
		return string(rev.Number)
	case "Source":
		return f.Path
	case "State":
		return rev.State
	}
	return ""
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
