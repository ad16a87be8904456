// Package logroute routes log records from a single entry point to a set of
// named output facilities: a colorized console, rotating plain-text log
// files, and self-contained streaming HTML log files.
//
// A [Router] owns the facility registry. The console facility is always
// present under [HandleConsole]; file and HTML facilities are registered by
// handle with [Router.AddLogFile] and [Router.AddHTMLLogFile]. Each log call
// names the facilities it targets, or targets all of them when no handles
// are given:
//
//	router, err := logroute.New(nil)
//	if err != nil {
//	    return err
//	}
//
//	err = router.AddLogFile("audit", logroute.FileConfig{
//	    Path:          "/var/log/app/audit.log",
//	    RotateOnStart: true,
//	})
//
//	router.Warning("disk usage at 91%", "audit")
//	router.Info("started")
//
// Before dispatch every message is normalized against configured limits:
// excess lines are dropped, long lines and long messages are clipped, and
// each clip leaves a visible marker in the output. Per-handle throttling
// drops writes beyond a configured budget per time window; dropped counts
// are reported by [Router.ThrottleStats].
//
// File-backed facilities keep numbered generations (name.1 is the newest)
// and rotate on size. Paths are re-checked on every write and facilities
// that fail the check degrade to dropping writes rather than following
// symlinks or writing through special files.
//
// Configuration follows the [Flags]/[Config] pattern with CLI flag
// integration via [github.com/spf13/pflag] and shell completion support via
// [github.com/spf13/cobra]; see [LoadConfig] for the YAML file form and
// [ConfigSchema] for its schema. A process-wide router is available through
// [Configure] and [Default].
package logroute
