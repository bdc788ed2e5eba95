package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// TimestampLayout formats the run start time in delivered archive names.
const TimestampLayout = "20060102_150405"

// DeliveredName returns the name of the `index`th volume (1-based) in the
// target directory. The first volume has no index suffix.
func DeliveredName(sourceName, timestamp string, index int) string {
	if index == 1 {
		return fmt.Sprintf("%s_%s.zip", sourceName, timestamp)
	}
	return fmt.Sprintf("%s_%s_%d.zip", sourceName, timestamp, index)
}

// deliver copies the volumes into `targetDir`, overwriting existing archives
// of the same name. Volumes that vanished or fail to copy are logged and
// skipped. It returns the paths of the delivered archives.
func deliver(log logrus.FieldLogger, volumes []Volume, targetDir, sourceName,
	timestamp string) (delivered []string) {

	for i, volume := range volumes {
		exists, err := afero.Exists(fs, volume.Path)
		if err != nil || !exists {
			log.WithError(err).WithField("volume", volume.Path).Warn(
				"Temp zip file does not exist. Skipping delivery.")
			continue
		}

		dst := filepath.Join(targetDir, DeliveredName(sourceName, timestamp, i+1))
		if err := copyFile(volume.Path, dst); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"volume": volume.Path,
				"dst":    dst,
			}).Error("Failed to copy zip file to target")
			continue
		}

		log.WithField("dst", dst).Info("Copied zip file to target")
		delivered = append(delivered, dst)
	}
	return delivered
}

func copyFile(src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "copy")
	}
	return out.Close()
}

// cleanup removes every staged volume that still exists.
func cleanup(log logrus.FieldLogger, volumes []Volume) {
	for _, volume := range volumes {
		if err := fs.Remove(volume.Path); err != nil {
			if !os.IsNotExist(err) {
				log.WithError(err).WithField("volume", volume.Path).Warn(
					"Failed to delete temp zip file")
			}
			continue
		}
		log.WithField("volume", volume.Path).Info("Deleted temp zip file")
	}
}
