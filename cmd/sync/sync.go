package sync

import (
	"fmt"
	"io"
	"os"

	"github.com/buger/goterm"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/foldersync/pkg/checkpoint"
	"github.com/sidkik/foldersync/pkg/config"
	"github.com/sidkik/foldersync/pkg/errors"
	syncer "github.com/sidkik/foldersync/pkg/sync"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "FOLDERSYNC_LOG_VERBOSE"

const usage = "Usage: foldersync <folderListFile> [--preview] [--reset] [--lastsynctime]"

type options struct {
	preview      bool
	reset        bool
	lastSyncTime bool
	verbose      bool
	settingsPath string
}

// Mocked for unit testing.
var (
	clock     = clockwork.NewRealClock()
	logOutput = func(path string) (io.WriteCloser, error) {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	}
)

// New creates the root `foldersync` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "foldersync [folder_list_file]",
		Short: "Archive files changed since the last sync into target folders",
		Long: `Archive every file modified or created since the last sync into zip files,
and copy them into the target folder of each source/target pair.

Each line of the folder list has the form:
  source::::target[::::file_or_dir_patterns[::::dir_patterns]]`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,

		// The call to Execute prints the error, so we silence errors here to
		// avoid double printing.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.preview, "preview", false,
		"Report what would be archived without writing anything.")
	cmd.Flags().BoolVar(&opts.reset, "reset", false,
		"Forget the last sync time so that the next sync includes every file.")
	cmd.Flags().BoolVar(&opts.lastSyncTime, "lastsynctime", false,
		"Print the last sync time.")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Log debug events.")
	cmd.Flags().StringVar(&opts.settingsPath, "config", "",
		"Path to a YAML settings file.")
	return cmd
}

func run(out io.Writer, opts options, args []string) error {
	settings, err := config.ParseSettings(opts.settingsPath)
	if err != nil {
		return errors.WithContext(err, "parse settings")
	}
	store := checkpoint.New(settings.CheckpointPath)

	if opts.reset {
		if err := store.Reset(); err != nil {
			return errors.WithContext(err, "reset")
		}
		fmt.Fprintln(out, "Last sync time has been reset.")
		return nil
	}

	if opts.lastSyncTime {
		if last := store.Get(); last.IsZero() {
			fmt.Fprintln(out, "Last sync time: never")
		} else {
			fmt.Fprintf(out, "Last sync time: %s\n", last.Local().Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	}

	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return nil
	}

	logFile, err := setupLogging(out, settings.LogPath, opts.verbose)
	if err != nil {
		return errors.WithContext(err, "open log file")
	}
	defer func() {
		// Later log events, such as fatal errors, only go to the console.
		log.SetOutput(out)
		logFile.Close()
	}()

	if !opts.preview {
		lock := flock.New(settings.CheckpointPath + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return errors.WithContext(err, "lock")
		}
		if !locked {
			return errors.WithContext(errors.ErrLocked, lock.Path())
		}
		defer lock.Unlock()
	}

	defaults, err := config.LoadDefaults(settings.DefaultsDir)
	if err != nil {
		return errors.WithContext(err, "load default exclusion patterns")
	}

	pairs, err := config.ParsePairList(args[0], defaults)
	if err != nil {
		if notFound, ok := errors.RootCause(err).(errors.FileNotFound); ok {
			fmt.Fprintf(out, "File %q does not exist.\n", notFound.Path)
			return nil
		}
		return errors.WithContext(err, "parse folder list")
	}

	if len(pairs) == 0 {
		fmt.Fprintln(out, "Nothing to do.")
		return nil
	}

	maxVolumeSize, err := settings.MaxVolumeBytes()
	if err != nil {
		return errors.WithContext(err, "max volume size")
	}

	s := syncer.Syncer{
		Checkpoint:    store,
		Clock:         clock,
		Log:           log.StandardLogger(),
		TempDir:       settings.StagingDir(),
		MaxVolumeSize: maxVolumeSize,
		Preview:       opts.preview,
	}
	result, err := s.Run(pairs)
	printSummary(out, result, opts.preview)
	return err
}

func setupLogging(console io.Writer, logPath string, verbose bool) (io.Closer, error) {
	if verbose || os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	log.SetFormatter(&log.TextFormatter{
		// Show the full timestamp so that the run log can be correlated with
		// the delivered archive names.
		FullTimestamp: true,

		// Disable colors since we'll be logging to a file.
		DisableColors: true,
	})

	logFile, err := logOutput(logPath)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(console, logFile))
	return logFile, nil
}

func printSummary(out io.Writer, result syncer.RunResult, preview bool) {
	heading := "Sync summary"
	if preview {
		heading = "Preview summary"
	}

	fmt.Fprintln(out, goterm.Bold(heading))
	for _, pair := range result.Pairs {
		status := goterm.Color("archived", goterm.GREEN)
		switch {
		case pair.Skipped:
			status = goterm.Color("skipped", goterm.RED)
		case !pair.AnySelected:
			status = "nothing to do"
		case preview:
			status = goterm.Color("would archive", goterm.YELLOW)
		}
		fmt.Fprintf(out, "  %s -> %s: %s (%d volumes)\n",
			pair.Pair.Source, pair.Pair.Target, status, len(pair.Delivered))
	}

	totals := result.Totals
	fmt.Fprintf(out, "Files processed: %d (%s)\n", totals.FilesProcessed,
		humanize.IBytes(uint64(totals.BytesSelected)))
	fmt.Fprintf(out, "Files excluded: %d\n", totals.FilesExcluded)
	fmt.Fprintf(out, "Directories excluded: %d\n", totals.DirsExcluded)
	if totals.FilesFailed > 0 {
		fmt.Fprintf(out, "Files failed: %d\n", totals.FilesFailed)
	}

	log.WithFields(log.Fields{
		"processed":    totals.FilesProcessed,
		"excluded":     totals.FilesExcluded,
		"dirsExcluded": totals.DirsExcluded,
		"failed":       totals.FilesFailed,
		"bytes":        totals.BytesSelected,
	}).Info("Sync completed")
}
