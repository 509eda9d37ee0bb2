// Command shq escapes arbitrary bytes as shell tokens that a
// POSIX-compatible shell reads back into exactly the original bytes.
//
// Records come from the non-option arguments (one record each) or, with no
// arguments, from null-delimited stdin. Escaped tokens go to stdout; every
// diagnostic goes to stderr.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shellsafe/shq/internal/classify"
	"github.com/shellsafe/shq/internal/cmdcommon"
	"github.com/shellsafe/shq/internal/config"
	"github.com/shellsafe/shq/internal/escape"
	"github.com/shellsafe/shq/internal/locale"
	"github.com/shellsafe/shq/internal/logging"
	"github.com/shellsafe/shq/internal/scan"
	"github.com/shellsafe/shq/internal/stream"
	"github.com/shellsafe/shq/internal/terminal"
)

const outputBufferSize = 32 * 1024

const usageText = `Usage: shq [OPTION]... [ARGUMENT]...
Escape ARGUMENTs (or null-delimited records on stdin) for shell reuse.

  -e, --escape-more             also escape no-break spaces and other blanks
  -i, --escape-invisible        also escape invisible printable codepoints
  -m, --minimal                 plain single quotes only (strict POSIX output)
  -n, --ignore-null-input       do not split stdin on NUL; drop NUL bytes
  -u, --unicode-escapes         use \uXXXX/\UXXXXXXXX and \E (bash/ksh/zsh)
  -z, --null-terminated-output  delimit output tokens with NUL
  -f, --flush-arguments         flush after every token; implies -z
      --no-auto-flush           never flush per token for a terminal reader
      --config PATH             TOML defaults file (default $SHQ_CONFIG)
      --log-level LEVEL         debug, info, warn, or error (default warn)
      --version                 print version and exit
`

type options struct {
	escapeMore      bool
	escapeInvisible bool
	minimal         bool
	ignoreNull      bool
	unicodeEscapes  bool
	nullTerminated  bool
	flush           bool
	noAutoFlush     bool
	configPath      string
	logLevel        string
	showVersion     bool
}

// boolFlags maps long flag names to their destinations, for registration
// and for merging config-file defaults under explicit flags.
func (o *options) boolFlags() map[string]*bool {
	return map[string]*bool{
		"escape-more":            &o.escapeMore,
		"escape-invisible":       &o.escapeInvisible,
		"minimal":                &o.minimal,
		"ignore-null-input":      &o.ignoreNull,
		"unicode-escapes":        &o.unicodeEscapes,
		"null-terminated-output": &o.nullTerminated,
		"flush-arguments":        &o.flush,
		"no-auto-flush":          &o.noAutoFlush,
	}
}

// shortNames maps each short flag to its long form.
var shortNames = map[string]string{
	"e": "escape-more",
	"i": "escape-invisible",
	"m": "minimal",
	"n": "ignore-null-input",
	"u": "unicode-escapes",
	"z": "null-terminated-output",
	"f": "flush-arguments",
}

func main() {
	runID := logging.GenerateRunID()

	opts, records, err := parseFlags(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(cmdcommon.ExitOK)
		}
		os.Exit(cmdcommon.ExitCode(err))
	}

	logging.Setup(os.Stderr, opts.logLevel, runID)

	if opts.showVersion {
		commit, version := logging.GetBuildInfo()
		fmt.Printf("shq %s (commit %s)\n", version, commit)
		os.Exit(cmdcommon.ExitOK)
	}

	if err := run(opts, records, os.Stdin, os.Stdout); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(cmdcommon.ExitCode(err))
	}
}

// parseFlags parses the command line, then fills every flag the user did not
// set from the config file, when one is named.
func parseFlags(args []string, getenv func(string) string, errOut io.Writer) (*options, []string, error) {
	opts := &options{logLevel: "warn"}

	fs := flag.NewFlagSet("shq", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprint(errOut, usageText) }

	dsts := opts.boolFlags()
	for long, dst := range dsts {
		fs.BoolVar(dst, long, false, "")
	}
	for short, long := range shortNames {
		fs.BoolVar(dsts[long], short, false, "")
	}
	fs.StringVar(&opts.configPath, "config", "", "")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "")
	fs.BoolVar(&opts.showVersion, "version", false, "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", cmdcommon.ErrUsage, err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shortNames[name]; ok {
			name = long
		}
		explicit[name] = true
	})

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath(getenv)
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", cmdcommon.ErrUsage, err)
		}
		for name, v := range cfg.Bools() {
			if v != nil && !explicit[name] {
				*dsts[name] = *v
			}
		}
		if cfg.LogLevel != "" && !explicit["log-level"] {
			opts.logLevel = cfg.LogLevel
		}
	}

	return opts, fs.Args(), nil
}

func run(opts *options, records []string, stdin io.Reader, stdout io.Writer) error {
	det, err := locale.Detect(os.Getenv)
	if err != nil {
		slog.Warn("Unsupported locale charset, treating input as bytes",
			"charset", det.Charset)
	}
	regime := det.Regime
	if opts.minimal && regime == locale.RegimeUTF8 {
		// Minimal mode emits no multi-byte-aware escapes, so decoding UTF-8
		// changes nothing; reading bytes is equivalent and cheaper.
		regime = locale.RegimeByte
	}

	var input io.Reader = stdin
	ignoreNull := opts.ignoreNull
	if len(records) > 0 {
		// Argument records become a NUL-joined, NUL-terminated stream, so
		// the engine sees exactly one shape of input.
		input = strings.NewReader(strings.Join(records, "\x00") + "\x00")
		ignoreNull = false
	}

	var src scan.Source
	switch regime {
	case locale.RegimeUTF8:
		src = scan.NewUTF8Source(input)
	case locale.RegimeWide:
		src = scan.NewWideSource(input, det.Encoding)
	default:
		src = scan.NewByteSource(input)
	}

	mode := escape.ModeStandard
	switch {
	case opts.minimal:
		mode = escape.ModeMinimal
	case opts.unicodeEscapes:
		mode = escape.ModeUnicode
	}

	// An explicit -f forces interactive handling; --no-auto-flush vetoes the
	// terminal heuristic but yields to -f, following the detector's own
	// precedence.
	detector := terminal.NewInteractiveDetector(terminal.DetectorOptions{
		ForceInteractive:    opts.flush,
		ForceNonInteractive: opts.noAutoFlush,
	})
	flush := detector.IsInteractive()

	w := bufio.NewWriterSize(stdout, outputBufferSize)
	eng := escape.New(src, w, escape.Options{
		Mode:  mode,
		ASCII: regime == locale.RegimeByte,
		Classify: classify.Options{
			EscapeMore:      opts.escapeMore && !opts.minimal,
			EscapeInvisible: opts.escapeInvisible && !opts.minimal,
		},
	})
	st := stream.New(src, eng, w, stream.Options{
		IgnoreNullInput:      ignoreNull,
		NullTerminatedOutput: opts.nullTerminated || opts.flush,
		FlushRecords:         flush,
	})

	slog.Debug("Configured",
		"charset", det.Charset,
		"regime", regime,
		"mode", mode,
		"records_from_args", len(records) > 0)

	return st.Run()
}
