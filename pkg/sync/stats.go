package sync

// Stats are the counters for a single run or pair.
type Stats struct {
	// FilesProcessed counts files added to a volume, or that would have been
	// added in preview mode.
	FilesProcessed int
	FilesExcluded  int
	DirsExcluded   int

	// FilesFailed counts selected files that couldn't be read or written.
	FilesFailed int

	// BytesSelected is the uncompressed size of the processed files.
	BytesSelected int64
}

// Add accumulates `other` into the receiver.
func (s *Stats) Add(other Stats) {
	s.FilesProcessed += other.FilesProcessed
	s.FilesExcluded += other.FilesExcluded
	s.DirsExcluded += other.DirsExcluded
	s.FilesFailed += other.FilesFailed
	s.BytesSelected += other.BytesSelected
}
