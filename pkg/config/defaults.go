package config

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

const (
	// DefaultFileExcludesFile lists the substrings that exclude a file from
	// every pair.
	DefaultFileExcludesFile = "defaultFileExcludePatterns.txt"

	// DefaultDirExcludesFile lists the suffixes that exclude a directory
	// from every pair.
	DefaultDirExcludesFile = "defaultDirExcludePatterns.txt"

	// legacyExcludesFile held a single list that applied to both files and
	// directories.
	legacyExcludesFile = "defaultExcludePatterns.txt"
)

// Defaults are the exclusion patterns shared by every pair.
type Defaults struct {
	Files mapset.Set[string]
	Dirs  mapset.Set[string]
}

// EmptyDefaults returns Defaults without any patterns.
func EmptyDefaults() Defaults {
	return Defaults{Files: mapset.NewThreadUnsafeSet[string](), Dirs: mapset.NewThreadUnsafeSet[string]()}
}

// LoadDefaults reads the default pattern files from `dir`. Missing files
// contribute no patterns.
func LoadDefaults(dir string) (Defaults, error) {
	defaults := EmptyDefaults()

	legacy, err := readPatternFile(filepath.Join(dir, legacyExcludesFile))
	if err != nil {
		return Defaults{}, errors.WithContext(err, "read legacy patterns")
	}
	files, err := readPatternFile(filepath.Join(dir, DefaultFileExcludesFile))
	if err != nil {
		return Defaults{}, errors.WithContext(err, "read file patterns")
	}
	dirs, err := readPatternFile(filepath.Join(dir, DefaultDirExcludesFile))
	if err != nil {
		return Defaults{}, errors.WithContext(err, "read directory patterns")
	}

	defaults.Files.Append(legacy...)
	defaults.Files.Append(files...)
	defaults.Dirs.Append(legacy...)
	defaults.Dirs.Append(dirs...)

	log.WithFields(log.Fields{
		"filePatterns": defaults.Files.Cardinality(),
		"dirPatterns":  defaults.Dirs.Cardinality(),
	}).Debug("Loaded default exclusion patterns")
	return defaults, nil
}

// readPatternFile returns the non-blank lines of `path`. A missing file is
// treated as empty.
func readPatternFile(path string) ([]string, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		if pattern := strings.TrimSpace(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	return patterns, scanner.Err()
}
