// Package checkpoint persists the instant of the last completed sync.
package checkpoint

import (
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// DefaultPath is where the checkpoint is stored unless the settings say
// otherwise.
const DefaultPath = "lastSync.txt"

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// legacyLayouts are the formats written by older releases, which stored the
// local time in a culture dependent format. They're only used for reading.
var legacyLayouts = []string{
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05",
}

// Store reads and writes the checkpoint file at a fixed path.
type Store struct {
	path string
}

// New returns a Store backed by the file at `path`.
func New(path string) Store {
	return Store{path: path}
}

// Get returns the instant of the last sync. The zero time is returned if the
// checkpoint doesn't exist or can't be parsed, so that every file is
// considered changed.
func (s Store) Get() time.Time {
	contents, err := afero.ReadFile(fs, s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("path", s.path).Debug(
				"Failed to read checkpoint. Treating as never synced.")
		}
		return time.Time{}
	}

	t, ok := parse(strings.TrimSpace(string(contents)))
	if !ok {
		log.WithField("path", s.path).Debug(
			"Failed to parse checkpoint. Treating as never synced.")
		return time.Time{}
	}
	return t
}

// Set overwrites the checkpoint with `now`.
func (s Store) Set(now time.Time) error {
	if err := afero.WriteFile(fs, s.path, []byte(now.Format(time.RFC3339Nano)+"\n"), 0644); err != nil {
		return errors.WithContext(err, "write checkpoint")
	}
	return nil
}

// Reset removes the checkpoint. It's not an error if it doesn't exist.
func (s Store) Reset() error {
	if err := fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.WithContext(err, "remove checkpoint")
	}
	return nil
}

func parse(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}

	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
