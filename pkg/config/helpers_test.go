package config

import "testing"

// restoreMocks resets the mocked package variables once the test finishes.
func restoreMocks(t *testing.T) {
	origFs, origHomedirExpand, origAbsPath := fs, homedirExpand, absPath
	t.Cleanup(func() {
		fs, homedirExpand, absPath = origFs, origHomedirExpand, origAbsPath
	})
}
