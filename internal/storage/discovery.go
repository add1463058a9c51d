package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FindExact returns, in extension order, the names "<stem>.<ext>" that exist
// in dir. Extensions may be given with or without a leading dot.
func FindExact(dir, stem string, exts []string) []string {
	files := []string{}
	for _, ext := range exts {
		name := stem + "." + strings.TrimPrefix(ext, ".")
		if FileExists(filepath.Join(dir, name)) {
			files = append(files, name)
		}
	}
	return files
}

// FindLatest returns the single most recently created entry in dir, or an
// empty list if dir is empty or unreadable.
//
// The tool picks the final file name from remote metadata, so the newest
// entry is taken as this job's output. Two jobs finishing in the same
// directory at the same time can see each other's file.
func FindLatest(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}

	var (
		latest     string
		latestTime time.Time
	)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		t := changeTime(info)
		if latest == "" || t.After(latestTime) {
			latest = e.Name()
			latestTime = t
		}
	}

	if latest == "" {
		return []string{}
	}
	return []string{latest}
}
