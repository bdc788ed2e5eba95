package sync

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// DefaultMaxVolumeSize is the number of uncompressed bytes after which a
// volume is closed and a new one started.
const DefaultMaxVolumeSize int64 = 500 * 1024 * 1024

// Volume is one archive file staged in the temporary directory.
type Volume struct {
	// Path is the location of the staged zip file.
	Path string

	// Size is the number of uncompressed source bytes written into the
	// volume.
	Size int64

	// Index is the 1-based position of the volume in creation order.
	Index int
}

// openVolume is the volume that's currently being written to.
type openVolume struct {
	path string
	file afero.File
	zw   *zip.Writer
}

// Builder packages files into a series of zip volumes in `tempDir`. Each
// volume holds roughly `maxSize` uncompressed bytes. The cap is checked after
// a file is added, so a volume may exceed it by up to one file, and a file is
// never split across volumes.
type Builder struct {
	tempDir string
	name    string
	maxSize int64

	current *openVolume
	size    int64
	index   int
	volumes []Volume
}

// NewBuilder returns a Builder that names its volumes after `name`. No volume
// is created until Open or AddFile is called.
func NewBuilder(tempDir, name string, maxSize int64) *Builder {
	if maxSize <= 0 {
		maxSize = DefaultMaxVolumeSize
	}
	return &Builder{
		tempDir: tempDir,
		name:    name,
		maxSize: maxSize,
		index:   1,
	}
}

// VolumePath returns the staging path of the volume with the given index.
func VolumePath(tempDir, name string, index int) string {
	return filepath.Join(tempDir, fmt.Sprintf("%s_%d.zip", name, index))
}

// Open creates the volume for the current index. Any stale file left at the
// same path by a previous run is removed first.
func (b *Builder) Open() error {
	if b.current != nil {
		return nil
	}

	path := VolumePath(b.tempDir, b.name, b.index)
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithContext(err, fmt.Sprintf("remove stale volume %s", path))
	}

	if err := fs.MkdirAll(b.tempDir, 0755); err != nil {
		return errors.WithContext(err, "create temp dir")
	}

	f, err := fs.Create(path)
	if err != nil {
		return errors.WithContext(err, fmt.Sprintf("create volume %s", path))
	}

	b.current = &openVolume{path: path, file: f, zw: zip.NewWriter(f)}
	b.size = 0
	return nil
}

// AddFile writes the contents of `absPath` into the current volume as
// `relPath`, then rolls over to a new volume if the cap was exceeded.
func (b *Builder) AddFile(absPath, relPath string, size int64) error {
	if err := b.Open(); err != nil {
		return errors.WithContext(err, "open volume")
	}

	if err := b.writeEntry(absPath, relPath); err != nil {
		return err
	}

	b.size += size
	if b.size <= b.maxSize {
		return nil
	}

	closeErr := b.closeCurrent()
	b.index++
	if err := b.Open(); err != nil {
		return errors.WithContext(err, "open next volume")
	}
	if closeErr != nil {
		return errors.WithContext(closeErr, "close full volume")
	}
	return nil
}

// writeEntry compresses the file into a staging file before adding it to the
// volume, so that a read that fails partway never leaves a truncated entry
// behind.
func (b *Builder) writeEntry(absPath, relPath string) error {
	src, err := fs.Open(absPath)
	if err != nil {
		return errors.WithContext(err, "open")
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return errors.WithContext(err, "stat")
	}

	header, err := zip.FileInfoHeader(fi)
	if err != nil {
		return errors.WithContext(err, "make header")
	}
	header.Name = filepath.ToSlash(relPath)
	header.Method = zip.Deflate

	staged, err := afero.TempFile(fs, b.tempDir, b.name+"_entry_")
	if err != nil {
		return errors.WithContext(err, "create staging file")
	}
	defer func() {
		staged.Close()
		fs.Remove(staged.Name())
	}()

	fw, err := flate.NewWriter(staged, flate.DefaultCompression)
	if err != nil {
		return errors.WithContext(err, "make compressor")
	}

	crc := crc32.NewIEEE()
	n, err := io.Copy(io.MultiWriter(fw, crc), src)
	if err != nil {
		return errors.WithContext(err, "read")
	}
	if err := fw.Close(); err != nil {
		return errors.WithContext(err, "compress")
	}

	compressed, err := staged.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.WithContext(err, "seek staging file")
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return errors.WithContext(err, "seek staging file")
	}

	header.CRC32 = crc.Sum32()
	header.UncompressedSize64 = uint64(n)
	header.CompressedSize64 = uint64(compressed)

	w, err := b.current.zw.CreateRaw(header)
	if err != nil {
		return errors.WithContext(err, "write header")
	}
	if _, err := io.Copy(w, staged); err != nil {
		return errors.WithContext(err, "write entry")
	}
	return nil
}

// closeCurrent finalizes the open volume and records it. The volume is
// recorded even if closing fails so that it's still cleaned up.
func (b *Builder) closeCurrent() error {
	if b.current == nil {
		return nil
	}

	current := b.current
	b.current = nil
	b.volumes = append(b.volumes, Volume{Path: current.path, Size: b.size, Index: b.index})
	b.size = 0

	zipErr := current.zw.Close()
	fileErr := current.file.Close()
	if zipErr != nil {
		return errors.WithContext(zipErr, "finalize zip")
	}
	if fileErr != nil {
		return errors.WithContext(fileErr, "close file")
	}
	return nil
}

// Close finalizes the open volume, even if it's empty, and returns every
// volume created so far in creation order.
func (b *Builder) Close() ([]Volume, error) {
	err := b.closeCurrent()
	return b.volumes, err
}
