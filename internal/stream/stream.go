// Package stream splits input into records and drives the escape engine
// once per record, inserting the configured delimiter and applying the
// trailing-terminator and flush policies.
package stream

import (
	"bufio"
	"io"

	"github.com/shellsafe/shq/internal/escape"
	"github.com/shellsafe/shq/internal/scan"
)

// Options fixes the record-level behavior for a run.
type Options struct {
	// IgnoreNullInput disables splitting on embedded NULs: the whole stream
	// is one record and NUL units are dropped. Only meaningful for streamed
	// input; argument lists never set it.
	IgnoreNullInput bool
	// NullTerminatedOutput delimits output tokens with NUL instead of space
	// and governs the trailing terminator.
	NullTerminatedOutput bool
	// FlushRecords flushes the output between records, for consumers that
	// read the output incrementally.
	FlushRecords bool
}

// Stream iterates records over a code-unit source and emits one shell token
// per record.
type Stream struct {
	src  scan.Source
	eng  *escape.Engine
	w    *bufio.Writer
	opts Options
}

// New returns a record stream over src writing through eng to w.
func New(src scan.Source, eng *escape.Engine, w *bufio.Writer, opts Options) *Stream {
	return &Stream{src: src, eng: eng, w: w, opts: opts}
}

// Run processes the whole input and flushes the output. It returns the
// first read, decode-fatal, or write error.
func (s *Stream) Run() error {
	for {
		u, err := s.src.Next()
		if err != nil {
			// Nothing to read at record start. Only reachable for the very
			// first record: empty input still yields one empty token.
			s.eng.WriteEmpty()
			return s.done(false, ignoreEOF(err))
		}

		var terminated bool
		var recErr error
		if u.IsNUL() {
			s.eng.WriteEmpty()
			terminated = true
		} else {
			terminated, recErr = s.eng.EscapeRecord(u)
		}
		if !terminated {
			return s.done(false, recErr)
		}

		// The record ended with a NUL. Look one unit ahead to decide
		// between a delimiter and the final terminator.
		nxt, err := s.src.Next()
		if err != nil {
			return s.done(true, ignoreEOF(err))
		}
		s.src.Unget(nxt)

		if !s.opts.IgnoreNullInput {
			if s.opts.NullTerminatedOutput {
				s.w.WriteByte(0)
			} else {
				s.w.WriteByte(' ')
			}
			if s.opts.FlushRecords {
				if err := s.w.Flush(); err != nil {
					return err
				}
			}
		}
	}
}

// done writes the trailing terminator when the policy calls for one and
// flushes. The final record is NUL-terminated only if it was NUL-terminated
// in the input, or the whole stream was treated as one record.
func (s *Stream) done(sawFinalNUL bool, err error) error {
	if s.opts.NullTerminatedOutput && (sawFinalNUL || s.opts.IgnoreNullInput) {
		s.w.WriteByte(0)
	}
	if ferr := s.w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
