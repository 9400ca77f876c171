// Package merge brings translators' local PO files up to date with a newly
// extracted template, the way msgmerge does.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	po "github.com/minios-linux/mmdl10n/pofile"
)

// Result counts what a merge did to one PO file.
type Result struct {
	Path     string
	Kept     int
	Added    int
	Obsolete int
}

// Merge updates a PO file with entries from a POT template.
//   - New template entries are added untranslated.
//   - Entries still in the template keep their translation and take the
//     template's locations, so reconciling them lands in the current module
//     streams.
//   - Entries no longer in the template become obsolete; ones that already
//     were are dropped.
func Merge(poFile, potFile *po.File) *po.File {
	merged, _ := merge(poFile, potFile)
	return merged
}

func merge(poFile, potFile *po.File) (*po.File, Result) {
	result := po.NewFile()
	var res Result

	result.Header = poFile.Header
	if potFile.Header != nil {
		if date := potFile.HeaderField("POT-Creation-Date"); date != "" {
			result.SetHeaderField("POT-Creation-Date", date)
		}
	}

	existing := make(map[string]*po.Entry)
	for _, e := range poFile.Entries {
		if !e.Obsolete {
			existing[e.MsgID] = e
		}
	}
	matched := make(map[string]bool)

	for _, potEntry := range potFile.Entries {
		if potEntry.MsgID == "" {
			continue
		}

		if old, ok := existing[potEntry.MsgID]; ok {
			result.Entries = append(result.Entries, &po.Entry{
				TranslatorComments: old.TranslatorComments,
				ExtractedComments:  potEntry.ExtractedComments,
				References:         potEntry.References,
				Flags:              mergeFlags(old.Flags, potEntry.Flags),
				MsgCtxt:            potEntry.MsgCtxt,
				MsgID:              potEntry.MsgID,
				MsgIDPlural:        potEntry.MsgIDPlural,
				MsgStr:             old.MsgStr,
				MsgStrPlural:       old.MsgStrPlural,
			})
			matched[potEntry.MsgID] = true
			res.Kept++
			continue
		}

		result.Entries = append(result.Entries, &po.Entry{
			ExtractedComments: potEntry.ExtractedComments,
			References:        potEntry.References,
			Flags:             potEntry.Flags,
			MsgCtxt:           potEntry.MsgCtxt,
			MsgID:             potEntry.MsgID,
			MsgIDPlural:       potEntry.MsgIDPlural,
			MsgStrPlural:      make(map[int]string),
		})
		res.Added++
	}

	for _, e := range poFile.Entries {
		if e.MsgID == "" || e.Obsolete || matched[e.MsgID] {
			continue
		}
		obsolete := *e
		obsolete.Obsolete = true
		obsolete.References = nil
		result.Entries = append(result.Entries, &obsolete)
		res.Obsolete++
	}

	return result, res
}

// mergeFlags keeps the PO file's flags (fuzzy) and adds the template's.
// fuzzy comes first, the rest sorted.
func mergeFlags(poFlags, potFlags []string) []string {
	set := make(map[string]bool)
	for _, f := range poFlags {
		set[f] = true
	}
	for _, f := range potFlags {
		set[f] = true
	}

	var rest []string
	for f := range set {
		if f != "fuzzy" {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)

	if set["fuzzy"] {
		return append([]string{"fuzzy"}, rest...)
	}
	return rest
}

// MergeDir merges the template into every .po file directly under dir and
// writes them back.
func MergeDir(dir string, pot *po.File) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".po") {
			continue
		}
		path := filepath.Join(dir, de.Name())

		f, err := po.ParseFile(path)
		if err != nil {
			return results, err
		}
		merged, res := merge(f, pot)
		if err := merged.WriteFile(path); err != nil {
			return results, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Path = path
		results = append(results, res)
	}
	return results, nil
}
