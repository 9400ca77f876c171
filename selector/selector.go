// Package selector picks the latest module builds out of a tag listing.
//
// Koji tags every context of every module build. Pungi composes only the
// newest version of each name:stream, keeping all of its contexts, and the
// extracted strings have to follow the same rule.
package selector

import (
	"sort"
	"strings"

	"github.com/minios-linux/mmdl10n/koji"
)

// ReleaseKey drops the context suffix (everything from the last ".") from a
// module build release. A release without a dot is returned unchanged.
func ReleaseKey(release string) string {
	if idx := strings.LastIndex(release, "."); idx >= 0 {
		return release[:idx]
	}
	return release
}

type streamKey struct {
	name   string
	stream string
}

// SelectLatest keeps, for every (name, stream), the builds whose release key
// is the lexicographic maximum. Groups come out ordered by name then stream;
// builds inside a group keep their input order.
func SelectLatest(builds []koji.Build) []koji.Build {
	groups := make(map[streamKey]map[string][]koji.Build)
	for _, b := range builds {
		k := streamKey{b.Name, b.Stream}
		if groups[k] == nil {
			groups[k] = make(map[string][]koji.Build)
		}
		version := ReleaseKey(b.Release)
		groups[k][version] = append(groups[k][version], b)
	}

	keys := make([]streamKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].stream < keys[j].stream
	})

	latest := make([]koji.Build, 0, len(keys))
	for _, k := range keys {
		best := ""
		first := true
		for version := range groups[k] {
			if first || version > best {
				best = version
				first = false
			}
		}
		latest = append(latest, groups[k][best]...)
	}
	return latest
}
