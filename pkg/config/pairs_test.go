package config

import (
	"path/filepath"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/foldersync/pkg/errors"
)

func mockPaths(t *testing.T) {
	restoreMocks(t)
	homedirExpand = func(path string) (string, error) {
		if len(path) > 0 && path[0] == '~' {
			return filepath.Join("/home/user", path[1:]), nil
		}
		return path, nil
	}
	absPath = func(path string) (string, error) {
		if filepath.IsAbs(path) {
			return filepath.Clean(path), nil
		}
		return filepath.Join("/work", path), nil
	}
	fs = afero.NewMemMapFs()
}

func TestMocksRestored(t *testing.T) {
	t.Run("Mocked", func(t *testing.T) {
		mockPaths(t)
		path, err := absPath("list.txt")
		assert.NoError(t, err)
		assert.Equal(t, "/work/list.txt", path)
	})

	_, ok := fs.(*afero.OsFs)
	assert.True(t, ok)

	exp, err := filepath.Abs("list.txt")
	require.NoError(t, err)
	path, err := absPath("list.txt")
	assert.NoError(t, err)
	assert.Equal(t, exp, path)
}

func TestParsePairList(t *testing.T) {
	mockPaths(t)
	defaults := Defaults{
		Files: mapset.NewThreadUnsafeSet(".tmp"),
		Dirs:  mapset.NewThreadUnsafeSet("node_modules"),
	}

	list := "/data/docs::::/backup/docs\n" +
		"\n" +
		"# photos are synced separately\n" +
		"~/photos :::: /backup/photos :::: .raw, cache,,.tmp\n" +
		"only-one-field\n" +
		"src::::/backup/src::::.log::::bin,obj\n" +
		"::::/backup/missing-source\n"
	require.NoError(t, afero.WriteFile(fs, "folders.txt", []byte(list), 0644))

	pairs, err := ParsePairList("folders.txt", defaults)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, "/data/docs", pairs[0].Source)
	assert.Equal(t, "/backup/docs", pairs[0].Target)
	assert.True(t, pairs[0].FileExcludes.Equal(mapset.NewThreadUnsafeSet(".tmp")))
	assert.True(t, pairs[0].DirExcludes.Equal(mapset.NewThreadUnsafeSet("node_modules")))

	assert.Equal(t, "/home/user/photos", pairs[1].Source)
	assert.Equal(t, "/backup/photos", pairs[1].Target)
	assert.True(t, pairs[1].FileExcludes.Equal(mapset.NewThreadUnsafeSet(".tmp", ".raw", "cache")))
	assert.True(t, pairs[1].DirExcludes.Equal(mapset.NewThreadUnsafeSet("node_modules", ".tmp", ".raw", "cache")))

	assert.Equal(t, "/work/src", pairs[2].Source)
	assert.True(t, pairs[2].FileExcludes.Equal(mapset.NewThreadUnsafeSet(".tmp", ".log")))
	assert.True(t, pairs[2].DirExcludes.Equal(mapset.NewThreadUnsafeSet("node_modules", ".log", "bin", "obj")))

	// Pairs get their own copies of the defaults.
	assert.Equal(t, 1, defaults.Files.Cardinality())
	assert.Equal(t, 1, defaults.Dirs.Cardinality())
}

func TestParsePairListMissing(t *testing.T) {
	mockPaths(t)
	_, err := ParsePairList("missing.txt", EmptyDefaults())
	assert.Equal(t, errors.FileNotFound{Path: "missing.txt"}, err)
}

func TestParsePairLine(t *testing.T) {
	mockPaths(t)
	tests := []struct {
		name   string
		line   string
		expErr error
		exp    SyncPair
	}{
		{
			name: "TwoFields",
			line: "/a::::/b",
			exp: SyncPair{
				Source:       "/a",
				Target:       "/b",
				FileExcludes: mapset.NewThreadUnsafeSet[string](),
				DirExcludes:  mapset.NewThreadUnsafeSet[string](),
			},
		},
		{
			name:   "OneField",
			line:   "/a",
			expErr: errors.MissingFieldError{Field: "target"},
		},
		{
			name:   "EmptyFieldsRemoved",
			line:   "::::/a::::",
			expErr: errors.MissingFieldError{Field: "target"},
		},
		{
			name:   "OnlySeparators",
			line:   "::::::::",
			expErr: errors.MissingFieldError{Field: "source"},
		},
		{
			name:   "WrongSeparator",
			line:   "/a::/b",
			expErr: errors.MissingFieldError{Field: "target"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			pair, err := parsePairLine(test.line, EmptyDefaults())
			if test.expErr != nil {
				assert.Equal(t, test.expErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.exp.Source, pair.Source)
			assert.Equal(t, test.exp.Target, pair.Target)
			assert.True(t, test.exp.FileExcludes.Equal(pair.FileExcludes))
			assert.True(t, test.exp.DirExcludes.Equal(pair.DirExcludes))
		})
	}
}
