package sync

import (
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// walker finds the files of one pair that changed since the checkpoint and
// feeds them to the builder.
type walker struct {
	checkpoint   time.Time
	fileExcludes mapset.Set[string]
	dirExcludes  mapset.Set[string]

	// builder is nil in preview mode.
	builder *Builder
	preview bool

	stats Stats
	log   logrus.FieldLogger
}

// walk visits `currentDir` depth first, files before subdirectories, and
// returns whether any file was selected. Relative paths inside the volumes are
// computed against `baseDir`.
func (w *walker) walk(baseDir, currentDir string) bool {
	entries, err := afero.ReadDir(fs, currentDir)
	if err != nil {
		w.log.WithError(err).WithField("dir", currentDir).Error("Failed to list directory")
		return false
	}

	selected := false
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		path := filepath.Join(currentDir, fi.Name())

		fi, ok := w.regularFile(path, fi)
		if !ok {
			continue
		}

		if IsFileExcluded(path, w.fileExcludes) {
			w.stats.FilesExcluded++
			w.log.WithField("path", path).Info("Excluded file based on exclusion patterns")
			continue
		}

		if !IsEligible(readFileTimes(path, fi), w.checkpoint) {
			continue
		}
		selected = true

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			// Unreachable since `path` is always beneath `baseDir`.
			w.stats.FilesFailed++
			w.log.WithError(err).WithField("path", path).Error("Failed to compute relative path")
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if w.preview {
			w.stats.FilesProcessed++
			w.stats.BytesSelected += fi.Size()
			w.log.WithField("path", path).Info("[Preview] Would add file to archive")
			continue
		}

		if err := w.builder.AddFile(path, relPath, fi.Size()); err != nil {
			w.stats.FilesFailed++
			w.log.WithError(err).WithField("path", path).Error("Failed to add file to archive")
			continue
		}
		w.stats.FilesProcessed++
		w.stats.BytesSelected += fi.Size()
		w.log.WithField("path", path).Info("Added file to archive")
	}

	for _, fi := range entries {
		if !fi.IsDir() {
			continue
		}
		path := filepath.Join(currentDir, fi.Name())

		if IsDirExcluded(path, w.dirExcludes) {
			w.stats.DirsExcluded++
			w.log.WithField("path", path).Info("Excluded directory based on exclusion patterns")
			continue
		}

		if w.walk(baseDir, path) {
			selected = true
		}
	}
	return selected
}

// regularFile returns the info of the regular file at `path`, following
// symlinks. Other entries, such as devices or links to directories, are
// skipped.
func (w *walker) regularFile(path string, fi os.FileInfo) (os.FileInfo, bool) {
	if fi.Mode().IsRegular() {
		return fi, true
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Stat(path)
		if err != nil {
			w.log.WithError(err).WithField("path", path).Warn("Failed to follow symlink")
			return nil, false
		}
		if target.Mode().IsRegular() {
			return target, true
		}
	}

	w.log.WithFields(logrus.Fields{
		"path": path,
		"mode": fi.Mode().String(),
	}).Debug("Skipped non-regular file")
	return nil, false
}
