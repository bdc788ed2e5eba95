/*
The sync package implements foldersync's incremental archive algorithm.

For every configured pair, the source tree is walked depth first. A file is
selected if it was modified or created strictly after the checkpoint, which is
the time the previous non-preview run finished, and it doesn't match any file
exclusion pattern. File patterns match anywhere in the path while directory
patterns only match the end of the path. Excluded directories aren't descended
into.

Selected files are streamed into zip volumes staged in a temporary directory.
A volume is closed once the uncompressed bytes added to it exceed the volume
cap, and the next file goes into a new volume. Files are never split.

Once the walk finishes, the volumes are copied into the pair's target
directory as `<source>_<timestamp>.zip`, `<source>_<timestamp>_2.zip`, and so
on, and the staged copies are deleted. Nothing is copied if no file was
selected.
*/
package sync
