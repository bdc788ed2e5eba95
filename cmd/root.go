package cmd

import (
	syncCmd "github.com/sidkik/foldersync/cmd/sync"
	"github.com/sidkik/foldersync/cmd/util"
	"github.com/sidkik/foldersync/cmd/version"
)

// Execute runs the main CLI process.
func Execute() {
	rootCmd := syncCmd.New()
	rootCmd.AddCommand(version.New())

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
