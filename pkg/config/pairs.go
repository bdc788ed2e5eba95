package config

import (
	"bufio"
	"bytes"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// fieldSeparator splits the fields of a line in the folder list file.
const fieldSeparator = "::::"

// SyncPair is one source directory to archive into one target directory.
type SyncPair struct {
	Source string
	Target string

	// FileExcludes are matched as substrings of a file's path.
	FileExcludes mapset.Set[string]

	// DirExcludes are matched as suffixes of a directory's path.
	DirExcludes mapset.Set[string]
}

// ParsePairList reads the folder list at `path`. Each line has the form
//
//	source::::target[::::pattern,pattern[::::dirPattern,dirPattern]]
//
// Lines that can't be parsed are logged and skipped. Patterns in the third
// field exclude both files and directories, the optional fourth field only
// directories. The defaults are merged into every pair.
func ParsePairList(path string, defaults Defaults) ([]SyncPair, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return nil, errors.FileNotFound{Path: path}
		}
		return nil, errors.WithContext(err, "read folder list")
	}

	var pairs []SyncPair
	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		pair, err := parsePairLine(line, defaults)
		if err != nil {
			log.WithError(err).WithField("line", lineNum).Warnf(
				"Invalid line in folder list file: %q", line)
			continue
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return pairs, errors.WithContext(err, "scan folder list")
	}
	return pairs, nil
}

func parsePairLine(line string, defaults Defaults) (SyncPair, error) {
	var fields []string
	for _, field := range strings.Split(line, fieldSeparator) {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}
	switch len(fields) {
	case 0:
		return SyncPair{}, errors.MissingFieldError{Field: "source"}
	case 1:
		return SyncPair{}, errors.MissingFieldError{Field: "target"}
	}

	source, err := cleanPath(fields[0])
	if err != nil {
		return SyncPair{}, errors.WithContext(err, "source")
	}
	target, err := cleanPath(fields[1])
	if err != nil {
		return SyncPair{}, errors.WithContext(err, "target")
	}

	pair := SyncPair{
		Source:       source,
		Target:       target,
		FileExcludes: defaults.Files.Clone(),
		DirExcludes:  defaults.Dirs.Clone(),
	}
	if len(fields) > 2 {
		custom := splitPatterns(fields[2])
		pair.FileExcludes.Append(custom...)
		pair.DirExcludes.Append(custom...)
	}
	if len(fields) > 3 {
		pair.DirExcludes.Append(splitPatterns(fields[3])...)
	}
	return pair, nil
}

func cleanPath(path string) (string, error) {
	expanded, err := homedirExpand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand homedir")
	}
	return absPath(expanded)
}

func splitPatterns(field string) (patterns []string) {
	for _, pattern := range strings.Split(field, ",") {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}
