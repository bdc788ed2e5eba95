package config

import (
	"os"

	"github.com/dustin/go-humanize"

	"github.com/sidkik/foldersync/pkg/checkpoint"
	"github.com/sidkik/foldersync/pkg/errors"
)

const (
	// InitialSettingsVersion is the first version of the settings file.
	// Files that do not specify a version default to this version.
	InitialSettingsVersion = "v1alpha1"

	// SupportedSettingsVersion is the settings version understood by this
	// binary.
	SupportedSettingsVersion = "v1alpha1"

	// DefaultMaxVolumeSize caps the uncompressed bytes added to one archive
	// volume.
	DefaultMaxVolumeSize = "500 MiB"
)

// Settings holds the paths and limits used by a sync run. Every field is
// optional in the settings file.
type Settings struct {
	Version string `json:"version,omitempty"`

	// CheckpointPath is the file recording the last sync time.
	CheckpointPath string `json:"checkpointPath,omitempty"`

	// LogPath is the run log that events are appended to.
	LogPath string `json:"logPath,omitempty"`

	// TempDir is where archive volumes are staged before delivery. The
	// system temporary directory is used when it's empty.
	TempDir string `json:"tempDir,omitempty"`

	// MaxVolumeSize is a human readable size such as "500 MiB" or "2GB".
	MaxVolumeSize string `json:"maxVolumeSize,omitempty"`

	// DefaultsDir contains the default exclusion pattern files.
	DefaultsDir string `json:"defaultsDir,omitempty"`
}

func (s Settings) getVersion() string {
	return s.Version
}

// DefaultSettings returns the settings used when no settings file is given.
func DefaultSettings() Settings {
	return Settings{
		Version:        InitialSettingsVersion,
		CheckpointPath: checkpoint.DefaultPath,
		LogPath:        "syncLog.txt",
		MaxVolumeSize:  DefaultMaxVolumeSize,
		DefaultsDir:    ".",
	}
}

// ParseSettings reads the settings file at `path`, filling unset fields with
// their defaults. An empty path returns the defaults.
func ParseSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path != "" {
		expanded, err := homedirExpand(path)
		if err != nil {
			return Settings{}, errors.WithContext(err, "expand settings path")
		}

		parsed := Settings{Version: InitialSettingsVersion}
		if err := parseConfig(expanded, &parsed, SupportedSettingsVersion); err != nil {
			if notFound, ok := err.(errors.FileNotFound); ok {
				return Settings{}, errors.NewFriendlyError(
					"The settings file doesn't exist at %q.", notFound.Path)
			}
			return Settings{}, errors.WithContext(err, "parse")
		}
		settings = merge(settings, parsed)
	}

	for _, field := range []*string{&settings.CheckpointPath, &settings.LogPath,
		&settings.TempDir, &settings.DefaultsDir} {
		expanded, err := homedirExpand(*field)
		if err != nil {
			return Settings{}, errors.WithContext(err, "expand path")
		}
		*field = expanded
	}

	if _, err := settings.MaxVolumeBytes(); err != nil {
		return Settings{}, errors.NewFriendlyError(
			"Invalid maxVolumeSize %q: %s", settings.MaxVolumeSize, err)
	}
	return settings, nil
}

// MaxVolumeBytes returns the volume cap in bytes.
func (s Settings) MaxVolumeBytes() (int64, error) {
	size, err := humanize.ParseBytes(s.MaxVolumeSize)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, errors.New("must be greater than zero")
	}
	return int64(size), nil
}

// StagingDir returns the directory volumes are staged in.
func (s Settings) StagingDir() string {
	if s.TempDir != "" {
		return s.TempDir
	}
	return os.TempDir()
}

func merge(base, override Settings) Settings {
	base.Version = override.Version
	if override.CheckpointPath != "" {
		base.CheckpointPath = override.CheckpointPath
	}
	if override.LogPath != "" {
		base.LogPath = override.LogPath
	}
	if override.TempDir != "" {
		base.TempDir = override.TempDir
	}
	if override.MaxVolumeSize != "" {
		base.MaxVolumeSize = override.MaxVolumeSize
	}
	if override.DefaultsDir != "" {
		base.DefaultsDir = override.DefaultsDir
	}
	return base
}
