package timezone

import (
	_ "embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	// Linked in so zones load in containers without a system zoneinfo tree.
	_ "time/tzdata"
)

//go:embed zones.txt
var embeddedZones string

// zoneinfoDirs are searched in order; the first one that exists wins.
var zoneinfoDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
}

var (
	namesOnce sync.Once
	names     []string
)

// Names returns every IANA zone identifier known to this process, sorted.
// The list is computed once; the returned slice must not be modified.
func Names() []string {
	namesOnce.Do(func() {
		dirs := zoneinfoDirs
		if dir := os.Getenv("ZONEINFO"); dir != "" {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				dirs = append([]string{dir}, dirs...)
			}
		}
		for _, dir := range dirs {
			if found := scanZoneinfo(dir); len(found) > 0 {
				names = found
				return
			}
		}
		names = parseZoneList(embeddedZones)
	})
	return names
}

// scanZoneinfo walks a zoneinfo tree and keeps every file that loads as a zone.
func scanZoneinfo(root string) []string {
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return fs.SkipDir
			}
			return nil
		}
		if !isZoneName(rel) {
			return nil
		}
		if _, err := time.LoadLocation(rel); err == nil {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Strings(found)
	return found
}

// isZoneName filters out the data files that live next to the zones.
func isZoneName(name string) bool {
	if name == "" || strings.ContainsAny(name, ". ") {
		return false
	}
	switch name {
	case "localtime", "posixrules", "Factory", "leapseconds", "leap-seconds.list",
		"tzdata.zi", "zone.tab", "zone1970.tab", "zonenow.tab", "iso3166.tab", "SECURITY":
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

func parseZoneList(list string) []string {
	var out []string
	for _, line := range strings.Split(list, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if _, err := time.LoadLocation(name); err == nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
