// Package rotate implements generation-based log file rotation with target
// hardening.
//
// A [Target] binds a live file path to a number of historical generations to
// keep. [Target.Rotate] renames the live file to generation 1, shifting
// existing generations up by one and pruning anything beyond the limit; the
// caller recreates the live file afterwards, so a crash mid-rotation can
// never merge two generations.
//
// Rotated files are suffixed ".1" (newest) through ".N" (oldest):
//
//	app.log    ← live target
//	app.log.1  ← most recent generation
//	app.log.2  ← oldest kept generation
//
// [CheckTarget] rejects symlinks and special files at the target path, and
// symlinked parent directories, with [ErrUnsafeTarget]. Callers are expected
// to re-check before every rotation, since a target can be swapped out from
// under a running process.
package rotate
