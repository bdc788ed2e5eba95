package sync

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/config"
	"github.com/sidkik/foldersync/pkg/errors"
)

// fs is overridden by afero.NewMemMapFs() in the tests.
var fs = afero.NewOsFs()

// CheckpointStore persists the time of the last completed sync.
type CheckpointStore interface {
	Get() time.Time
	Set(now time.Time) error
}

// Syncer archives the files that changed in each pair since the last sync.
type Syncer struct {
	Checkpoint CheckpointStore
	Clock      clockwork.Clock
	Log        *logrus.Logger

	// TempDir is where volumes are staged before being copied to the target.
	TempDir string

	// MaxVolumeSize caps the uncompressed bytes per volume.
	MaxVolumeSize int64

	// Preview reports what would be archived without writing anything.
	Preview bool
}

// PairResult is the outcome of syncing one pair.
type PairResult struct {
	Pair config.SyncPair

	// Skipped is set when the pair couldn't be synced at all, for example
	// because the source doesn't exist.
	Skipped bool

	// AnySelected is whether any file changed since the checkpoint.
	AnySelected bool

	// Volumes are the staged volumes, in creation order. They no longer
	// exist on disk once Run returns.
	Volumes []Volume

	// Delivered are the paths of the archives copied into the target.
	Delivered []string

	Stats Stats
}

// RunResult is the outcome of a full run.
type RunResult struct {
	Pairs  []PairResult
	Totals Stats

	// Checkpoint is the time selection was based on.
	Checkpoint time.Time
}

// Run syncs every pair in order, then advances the checkpoint unless this is
// a preview. Failures within a pair are logged and don't stop the run. The
// returned error is only set if the checkpoint couldn't be saved.
func (s Syncer) Run(pairs []config.SyncPair) (RunResult, error) {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	result := RunResult{Checkpoint: s.Checkpoint.Get()}
	timestamp := clock.Now().Format(TimestampLayout)
	s.logger().WithFields(logrus.Fields{
		"lastSync": result.Checkpoint,
		"pairs":    len(pairs),
		"preview":  s.Preview,
	}).Debug("Starting sync")

	for _, pair := range pairs {
		pairResult := s.syncPair(pair, result.Checkpoint, timestamp)
		result.Totals.Add(pairResult.Stats)
		result.Pairs = append(result.Pairs, pairResult)
	}

	if s.Preview {
		return result, nil
	}

	if err := s.Checkpoint.Set(clock.Now()); err != nil {
		return result, errors.WithContext(err, "update last sync time")
	}
	return result, nil
}

func (s Syncer) syncPair(pair config.SyncPair, checkpoint time.Time, timestamp string) PairResult {
	result := PairResult{Pair: pair}
	log := s.logger().WithField("source", pair.Source)

	if exists, err := afero.DirExists(fs, pair.Source); err != nil || !exists {
		log.WithError(err).Error("Source folder does not exist. Skipping.")
		result.Skipped = true
		return result
	}

	w := &walker{
		checkpoint:   checkpoint,
		fileExcludes: pair.FileExcludes,
		dirExcludes:  pair.DirExcludes,
		preview:      s.Preview,
		log:          log,
	}

	if s.Preview {
		result.AnySelected = w.walk(pair.Source, pair.Source)
		result.Stats = w.stats
		if !result.AnySelected {
			log.Info("Nothing to do. No files changed since the last sync.")
		} else {
			log.WithField("files", w.stats.FilesProcessed).Info("[Preview] Files would be archived")
		}
		return result
	}

	if err := fs.MkdirAll(pair.Target, 0755); err != nil {
		log.WithError(err).WithField("target", pair.Target).Error(
			"Failed to create target folder. Skipping.")
		result.Skipped = true
		return result
	}

	sourceName := filepath.Base(filepath.Clean(pair.Source))
	w.builder = NewBuilder(s.tempDir(), sourceName, s.MaxVolumeSize)
	if err := w.builder.Open(); err != nil {
		log.WithError(err).Error("Failed to create temp zip file. Skipping.")
		result.Skipped = true
		return result
	}
	log.WithField("volume", VolumePath(s.tempDir(), sourceName, 1)).Debug("Created temp zip file")

	result.AnySelected, result.Volumes = s.build(w, pair.Source)
	result.Stats = w.stats

	if result.AnySelected {
		result.Delivered = deliver(log, result.Volumes, pair.Target, sourceName, timestamp)
	} else {
		log.Info("Nothing to do. No files changed since the last sync.")
	}

	cleanup(log, result.Volumes)
	return result
}

// build walks the source into the builder. The builder is always closed, so
// the open volume is released even if the walk panics.
func (s Syncer) build(w *walker, source string) (selected bool, volumes []Volume) {
	defer func() {
		var err error
		volumes, err = w.builder.Close()
		if err != nil {
			w.log.WithError(err).Error("Failed to close zip file")
		}
	}()
	return w.walk(source, source), nil
}

func (s Syncer) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

func (s Syncer) tempDir() string {
	if s.TempDir != "" {
		return s.TempDir
	}
	return os.TempDir()
}
