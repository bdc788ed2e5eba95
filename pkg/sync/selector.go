package sync

import (
	"os"
	"time"

	"github.com/djherbis/times"
)

// FileTimes are the timestamps that decide whether a file changed.
type FileTimes struct {
	ModifiedAt time.Time

	// CreatedAt is the zero time on platforms and filesystems that don't
	// record a birth time.
	CreatedAt time.Time
}

// IsEligible returns whether a file was modified or created strictly after
// the checkpoint.
func IsEligible(ft FileTimes, checkpoint time.Time) bool {
	return ft.ModifiedAt.After(checkpoint) || ft.CreatedAt.After(checkpoint)
}

// Mocked out for unit testing.
var birthTime = func(path string, fi os.FileInfo) (time.Time, bool) {
	// In-memory filesystems don't expose any platform stat data.
	if fi.Sys() == nil {
		return time.Time{}, false
	}

	ts, err := times.Stat(path)
	if err != nil || !ts.HasBirthTime() {
		return time.Time{}, false
	}
	return ts.BirthTime(), true
}

func readFileTimes(path string, fi os.FileInfo) FileTimes {
	ft := FileTimes{ModifiedAt: fi.ModTime()}
	if created, ok := birthTime(path, fi); ok {
		ft.CreatedAt = created
	}
	return ft
}
