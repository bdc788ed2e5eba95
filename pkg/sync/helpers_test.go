package sync

import (
	"bytes"
	"io"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type mockFile struct {
	path     string
	contents string
	modTime  time.Time
}

func (f mockFile) writeToFs() error {
	if err := afero.WriteFile(fs, f.path, []byte(f.contents), 0644); err != nil {
		return err
	}
	return fs.Chtimes(f.path, f.modTime, f.modTime)
}

func writeFiles(t *testing.T, files ...mockFile) {
	for _, f := range files {
		require.NoError(t, f.writeToFs())
	}
}

// readZip returns the contents of every entry in the zip at `path`, keyed by
// entry name.
func readZip(t *testing.T, path string) map[string]string {
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		contents, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(contents)
	}
	return entries
}

func listDir(t *testing.T, dir string) (names []string) {
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	for _, fi := range entries {
		names = append(names, fi.Name())
	}
	return names
}

// memCheckpoint is an in-memory CheckpointStore.
type memCheckpoint struct {
	last time.Time
	sets int
}

func (c *memCheckpoint) Get() time.Time {
	return c.last
}

func (c *memCheckpoint) Set(now time.Time) error {
	c.last = now
	c.sets++
	return nil
}

// failingFs wraps a filesystem to inject I/O errors for specific paths.
type failingFs struct {
	afero.Fs

	// failOpen fails opening the paths for reading.
	failOpen map[string]bool

	// failReadAfter fails reads of the paths once the given number of bytes
	// was read.
	failReadAfter map[string]int

	// failCreate fails opening the paths for writing.
	failCreate map[string]bool
}

func (ffs failingFs) Open(name string) (afero.File, error) {
	if ffs.failOpen[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}

	f, err := ffs.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	if limit, ok := ffs.failReadAfter[name]; ok {
		return &failingFile{File: f, remaining: limit}, nil
	}
	return f, nil
}

func (ffs failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if ffs.failCreate[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.ENOSPC}
	}
	return ffs.Fs.OpenFile(name, flag, perm)
}

type failingFile struct {
	afero.File
	remaining int
}

func (f *failingFile) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, &os.PathError{Op: "read", Path: f.Name(), Err: syscall.EIO}
	}
	if len(p) > f.remaining {
		p = p[:f.remaining]
	}
	n, err := f.File.Read(p)
	f.remaining -= n
	return n, err
}
