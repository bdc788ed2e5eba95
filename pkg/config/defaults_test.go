package config

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	restoreMocks(t)
	tests := []struct {
		name     string
		files    map[string]string
		expFiles mapset.Set[string]
		expDirs  mapset.Set[string]
	}{
		{
			name:     "NoFiles",
			expFiles: mapset.NewThreadUnsafeSet[string](),
			expDirs:  mapset.NewThreadUnsafeSet[string](),
		},
		{
			name: "SeparateFiles",
			files: map[string]string{
				"conf/" + DefaultFileExcludesFile: "Thumbs.db\n\n  .DS_Store  \n",
				"conf/" + DefaultDirExcludesFile:  "node_modules\n.git\n",
			},
			expFiles: mapset.NewThreadUnsafeSet("Thumbs.db", ".DS_Store"),
			expDirs:  mapset.NewThreadUnsafeSet("node_modules", ".git"),
		},
		{
			name: "LegacyFileAppliesToBoth",
			files: map[string]string{
				"conf/" + legacyExcludesFile:      "~$\n.git\n",
				"conf/" + DefaultFileExcludesFile: ".git\n",
			},
			expFiles: mapset.NewThreadUnsafeSet("~$", ".git"),
			expDirs:  mapset.NewThreadUnsafeSet("~$", ".git"),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			for path, contents := range test.files {
				require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
			}

			defaults, err := LoadDefaults("conf")
			assert.NoError(t, err)
			assert.True(t, test.expFiles.Equal(defaults.Files), defaults.Files.String())
			assert.True(t, test.expDirs.Equal(defaults.Dirs), defaults.Dirs.String())
		})
	}
}
