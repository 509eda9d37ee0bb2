// Package cmdcommon provides exit-status conventions shared by the
// command-line front end.
package cmdcommon

import (
	"errors"
	"syscall"

	"github.com/shellsafe/shq/internal/scan"
)

// Exit codes follow the BSD sysexits convention where one applies.
const (
	ExitOK    = 0
	ExitUsage = 64 // EX_USAGE: bad command line
	ExitIOErr = 74 // EX_IOERR: read or write failure
)

// ErrUsage marks command-line errors so they map to ExitUsage.
var ErrUsage = errors.New("invalid usage")

// ExitCode maps an error from a run to the process exit status. A fatal
// charset decode failure exits with the EILSEQ errno value, so callers can
// tell undecodable input apart from plain I/O trouble.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, scan.ErrDecodeFatal):
		return int(syscall.EILSEQ)
	default:
		return ExitIOErr
	}
}
