// Package pofile reads and writes gettext PO/POT files.
//
// Besides the message strings it keeps the "#:" references, which carry the
// module provenance clues of every extracted string, split into
// (location, line) pairs.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Reference is one "location:line" item of a "#:" comment.
type Reference struct {
	Location string
	Line     int
}

// String renders the reference the way it appears in a PO file.
func (r Reference) String() string {
	if r.Line <= 0 {
		return r.Location
	}
	return r.Location + ":" + strconv.Itoa(r.Line)
}

// ParseReference splits "location:line". A missing or non-numeric line
// leaves the whole item as the location.
func ParseReference(s string) Reference {
	if idx := strings.LastIndex(s, ":"); idx > 0 {
		if n, err := strconv.Atoi(s[idx+1:]); err == nil {
			return Reference{Location: s[:idx], Line: n}
		}
	}
	return Reference{Location: s}
}

// Entry is a single message of a PO file.
type Entry struct {
	TranslatorComments []string
	ExtractedComments  []string
	// References holds the raw "#:" lines; use Locations for parsed items.
	References    []string
	Flags         []string
	PreviousMsgID string

	MsgCtxt      string
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural map[int]string

	Obsolete bool
}

// Locations returns every reference item of the entry in file order.
func (e *Entry) Locations() []Reference {
	var refs []Reference
	for _, line := range e.References {
		for _, item := range strings.Fields(line) {
			refs = append(refs, ParseReference(item))
		}
	}
	return refs
}

// AddLocation appends a reference on its own "#:" line.
func (e *Entry) AddLocation(ref Reference) {
	e.References = append(e.References, ref.String())
}

// IsTranslated reports whether the entry carries a usable translation.
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" || e.IsFuzzy() {
		return false
	}
	if e.MsgIDPlural != "" {
		if len(e.MsgStrPlural) == 0 {
			return false
		}
		for _, v := range e.MsgStrPlural {
			if v == "" {
				return false
			}
		}
		return true
	}
	return e.MsgStr != ""
}

// IsFuzzy reports whether the entry is flagged fuzzy.
func (e *Entry) IsFuzzy() bool {
	return e.HasFlag("fuzzy")
}

// HasFlag checks if a specific flag is present.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// File is a parsed PO or POT file.
type File struct {
	Header  *Entry
	Entries []*Entry
}

// NewFile creates a file with an empty header.
func NewFile() *File {
	return &File{
		Header:  &Entry{},
		Entries: make([]*Entry, 0),
	}
}

// NewTemplate creates a POT file with the standard header for project.
func NewTemplate(project, version string) *File {
	f := NewFile()
	f.Header = MakeHeader(project, version, time.Now())
	return f
}

// HeaderField returns a header field value by name (case-insensitive).
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// SetHeaderField sets a header field, appending it if missing.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = &Entry{}
	}

	lines := strings.Split(f.Header.MsgStr, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, ":"); idx > 0 && strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
			lines[i] = name + ": " + value
			f.Header.MsgStr = strings.Join(lines, "\n")
			return
		}
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = append(lines[:n-1], name+": "+value, "")
	} else {
		lines = append(lines, name+": "+value)
	}
	f.Header.MsgStr = strings.Join(lines, "\n")
}

// EntryByMsgID finds a live entry by its msgid.
func (f *File) EntryByMsgID(msgid string) *Entry {
	for _, e := range f.Entries {
		if e.MsgID == msgid && !e.Obsolete {
			return e
		}
	}
	return nil
}

// Stats returns translation statistics over live entries.
func (f *File) Stats() (total, translated, fuzzy, untranslated int) {
	for _, e := range f.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		total++
		switch {
		case e.IsFuzzy():
			fuzzy++
		case e.IsTranslated():
			translated++
		default:
			untranslated++
		}
	}
	return
}

// SortByReference orders entries by their first reference location, then
// msgid. Entries without references go last. Obsolete entries stay at the end.
func (f *File) SortByReference() {
	first := func(e *Entry) string {
		if refs := e.Locations(); len(refs) > 0 {
			return refs[0].Location
		}
		return "\xff"
	}
	sort.SliceStable(f.Entries, func(i, j int) bool {
		a, b := f.Entries[i], f.Entries[j]
		if a.Obsolete != b.Obsolete {
			return !a.Obsolete
		}
		fa, fb := first(a), first(b)
		if fa != fb {
			return fa < fb
		}
		return a.MsgID < b.MsgID
	})
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Parse reads a PO/POT file from a reader.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var current *Entry
	var lastField string // msgid/msgstr/... receiving continuation lines
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.MsgID == "" && !current.Obsolete {
			f.Header = current
		} else {
			f.Entries = append(f.Entries, current)
		}
		current = nil
		lastField = ""
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			current = &Entry{MsgStrPlural: make(map[int]string)}
		}

		if strings.HasPrefix(line, "#~") {
			current.Obsolete = true
			line = strings.TrimPrefix(strings.TrimPrefix(line, "#~"), " ")
		}

		if strings.HasPrefix(line, "#") {
			parseComment(current, line)
			continue
		}

		field, value, ok := splitKeyword(line)
		switch {
		case ok && strings.HasPrefix(field, "msgstr["):
			idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(field, "msgstr["), "]"))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			current.MsgStrPlural[idx] = unquote(value)
			lastField = field
		case ok:
			setField(current, field, unquote(value))
			lastField = field
		case strings.HasPrefix(line, `"`):
			appendField(current, lastField, unquote(line))
		default:
			return nil, fmt.Errorf("line %d: unexpected content: %s", lineNum, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	return f, nil
}

// ParseFile reads a PO/POT file from disk.
func ParseFile(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	f, err := Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func parseComment(e *Entry, line string) {
	switch {
	case strings.HasPrefix(line, "#:"):
		e.References = append(e.References, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		prev := strings.TrimSpace(line[2:])
		if strings.HasPrefix(prev, "msgid ") {
			e.PreviousMsgID = unquote(strings.TrimPrefix(prev, "msgid "))
		}
	default:
		e.TranslatorComments = append(e.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
}

var keywords = []string{"msgctxt", "msgid_plural", "msgid", "msgstr"}

// splitKeyword recognizes `keyword "value"` and `msgstr[N] "value"`.
func splitKeyword(line string) (field, value string, ok bool) {
	if strings.HasPrefix(line, "msgstr[") {
		if end := strings.Index(line, "]"); end > 0 {
			return line[:end+1], strings.TrimSpace(line[end+1:]), true
		}
		return "", "", false
	}
	for _, kw := range keywords {
		if strings.HasPrefix(line, kw+" ") {
			return kw, strings.TrimSpace(line[len(kw):]), true
		}
	}
	return "", "", false
}

func setField(e *Entry, field, value string) {
	switch field {
	case "msgctxt":
		e.MsgCtxt = value
	case "msgid":
		e.MsgID = value
	case "msgid_plural":
		e.MsgIDPlural = value
	case "msgstr":
		e.MsgStr = value
	}
}

func appendField(e *Entry, field, value string) {
	if strings.HasPrefix(field, "msgstr[") {
		idx, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(field, "msgstr["), "]"))
		e.MsgStrPlural[idx] += value
		return
	}
	switch field {
	case "msgctxt":
		e.MsgCtxt += value
	case "msgid":
		e.MsgID += value
	case "msgid_plural":
		e.MsgIDPlural += value
	case "msgstr":
		e.MsgStr += value
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write writes the PO file to a writer.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if f.Header != nil {
		writeEntry(bw, f.Header)
	}
	for _, e := range f.Entries {
		bw.WriteString("\n")
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// WriteFile writes the PO file through a temporary file and renames it into
// place.
func (f *File) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, c := range e.TranslatorComments {
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}
	if e.PreviousMsgID != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(e.PreviousMsgID))
	}

	if e.MsgCtxt != "" {
		writeQuotedField(w, prefix+"msgctxt", e.MsgCtxt)
	}
	writeQuotedField(w, prefix+"msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeQuotedField(w, prefix+"msgid_plural", e.MsgIDPlural)
	}

	if e.MsgIDPlural != "" && len(e.MsgStrPlural) > 0 {
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeQuotedField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), e.MsgStrPlural[idx])
		}
		return
	}
	writeQuotedField(w, prefix+"msgstr", e.MsgStr)
}

// writeQuotedField writes a field, splitting multiline values after each
// newline as msgcat does.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}

	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		switch {
		case i < len(parts)-1:
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		case part != "":
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// MakeHeader creates the header entry of a template for project.
func MakeHeader(project, version string, now time.Time) *Entry {
	stamp := now.UTC().Format("2006-01-02 15:04-0700")

	msgstr := fmt.Sprintf(
		"Project-Id-Version: %s %s\n"+
			"Report-Msgid-Bugs-To: \n"+
			"POT-Creation-Date: %s\n"+
			"PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n"+
			"Last-Translator: FULL NAME <EMAIL@ADDRESS>\n"+
			"Language-Team: LANGUAGE <LL@li.org>\n"+
			"MIME-Version: 1.0\n"+
			"Content-Type: text/plain; charset=utf-8\n"+
			"Content-Transfer-Encoding: 8bit\n",
		project, version, stamp,
	)

	return &Entry{
		TranslatorComments: []string{
			fmt.Sprintf("Translations template for %s.", project),
			fmt.Sprintf("Copyright (C) %d ORGANIZATION", now.Year()),
			fmt.Sprintf("This file is distributed under the same license as the %s project.", project),
		},
		Flags:  []string{"fuzzy"},
		MsgStr: msgstr,
	}
}
