// Package logging is the logging control plane of the package-management client.
// It routes records from the client itself, from the native solver library and
// from the transfer library into rotating files and the two console streams.
//
// Key features
//   - Named streams ("pkg", "pkg.native", "warnings") with thresholds and propagation
//   - Verbosity and error dials (0-10) mapped onto console thresholds
//   - Size-based file rotation that is safe when several client processes share
//     one log directory: rollovers are serialised through a flock'ed lock file
//     and writers follow a file a sibling has already rotated away
//   - Idempotent Presetup/Setup: only the first successful call of each step has
//     any effect; a failed Setup can be retried
//   - A bridge turning native callbacks (and zerolog, zap or logrus output of Go
//     sub-libraries) into records of the native stream
//   - Failures inside logging never reach the caller; they are echoed to standard
//     error during setup and afterwards only counted and passed to an error hook,
//     with the full error chain (outermost -> root) when Station-Manager
//     DetailedErrors are involved
//
// Typical usage
//
//	svc, err := logging.New()
//	if err != nil { panic(err) }
//	svc.Presetup()
//	cfg, err := logging.LoadConfig("/etc/pkg/logging.yaml")
//	if err != nil { panic(err) }
//	if err = svc.SetupFromConfig(cfg); err != nil { panic(err) }
//	defer svc.Close()
//
//	svc.Logger().Info("installing %d packages", n)
//	t := svc.StartTimer("depsolve")
//	defer t.Stop()
package logging
