// Package radar matches the shared volume-scan archive against flight day
// spans and renders matched scans into per-flight frame images.
package radar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// VolumeExt is the extension of gridded volume-scan exports in the archive.
const VolumeExt = ".nc"

// Archive filename convention: underscore-delimited tokens with an 8-digit
// acquisition date and 6-digit time at fixed positions, e.g.
// "raw_grid_20240601_235958.nc".
const (
	archiveDateToken = 2
	archiveTimeToken = 3

	archiveTimeLayout = "20060102150405"
)

// ArchiveFile is one read-only volume scan in the shared archive.
type ArchiveFile struct {
	Name string
	Path string
}

// ParseArchiveTime extracts the acquisition timestamp embedded in an
// archive filename.
func ParseArchiveTime(name string) (time.Time, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "_")
	if len(parts) <= archiveTimeToken {
		return time.Time{}, fmt.Errorf("archive name %q: want at least %d underscore tokens", name, archiveTimeToken+1)
	}

	ts, err := time.Parse(archiveTimeLayout, parts[archiveDateToken]+parts[archiveTimeToken])
	if err != nil {
		return time.Time{}, fmt.Errorf("archive name %q: %w", name, err)
	}
	return ts, nil
}

// ListArchive returns every volume-scan file in the shared archive
// directory. A missing or unreadable directory is an environment-level
// error: the caller halts its rendering stage, not the whole run.
func ListArchive(dir string) ([]ArchiveFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing radar archive: %w", err)
	}

	var files []ArchiveFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != VolumeExt {
			continue
		}
		files = append(files, ArchiveFile{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return files, nil
}

// MatchByDays filters archive files to those whose name contains any of
// the day keys as a substring. Deliberately loose: the archive predates
// this tool and its naming varies between radar sites, so a date token
// anywhere in the name counts. An empty result is a valid "no applicable
// radar data" outcome, not an error.
func MatchByDays(files []ArchiveFile, dayKeys []string) []ArchiveFile {
	var matched []ArchiveFile
	for _, f := range files {
		for _, key := range dayKeys {
			if strings.Contains(f.Name, key) {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}
