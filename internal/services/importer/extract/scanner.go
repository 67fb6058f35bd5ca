// Package extract implements the incremental object extractor: it pulls
// whole JSON objects out of an arbitrarily-chunked byte stream while keeping
// a byte-accurate count of the prefix that is safe to resume from.
//
// The stream is assumed to be a JSON array of flat objects, possibly
// pretty-printed across many lines. Object boundaries are found with a
// brace-depth counter over each line, which assumes braces do not occur
// inside string values of the source data. A streaming tokenizer would lift
// that limitation; the line accounting below depends on line granularity, so
// the trade is kept and documented here.
package extract

import (
	"bufio"
	"bytes"
	"encoding/json/v2"
	"io"

	"brazebulk/internal/services/importer/domain"
)

const minBuffer = 64 * 1024

// Scanner streams TrackObjects from a reader positioned at a resume-safe
// offset. It is lazy, finite, and not restartable: once Next returns io.EOF
// or an error the scanner is done.
//
// Byte accounting invariant: bytes counted by SafeBytes always cover whole,
// already-emitted objects or pure structural content (brackets, whitespace).
// Bytes of a partially-assembled object stay pending and are simply dropped
// if the stream ends mid-object; the next invocation re-reads them.
type Scanner struct {
	br    *bufio.Reader
	acc   []byte                // object being assembled across lines
	queue []domain.TrackObject  // parsed but not yet emitted (single-line arrays)
	depth int                   // brace depth of the current line position

	pending int64 // bytes read since the last confirmed point, not yet safe
	held    int64 // bytes parsed but whose objects are still queued
	safe    int64 // confirmed-safe bytes not yet drained by SafeBytes
	objects int   // emitted object count

	err error
}

// NewScanner wraps r with chunked buffering. chunkBytes is the read chunk
// size; values below the floor are raised to it
func NewScanner(r io.Reader, chunkBytes int) *Scanner {
	if chunkBytes < minBuffer {
		chunkBytes = minBuffer
	}
	return &Scanner{br: bufio.NewReaderSize(r, chunkBytes)}
}

// Next returns the next TrackObject in source order, or io.EOF when the
// stream is exhausted. A truncated trailing object is not an error: its
// bytes are left unconfirmed and the scanner reports EOF
func (s *Scanner) Next() (domain.TrackObject, error) {
	for {
		if len(s.queue) > 0 {
			o := s.queue[0]
			s.queue = s.queue[1:]
			if len(s.queue) == 0 {
				// Last element of a parsed group: its source bytes are now
				// fully represented by emitted objects
				s.safe += s.held
				s.held = 0
			}
			s.objects++
			return o, nil
		}
		if s.err != nil {
			return nil, s.err
		}

		raw, err := s.br.ReadBytes('\n')
		if len(raw) > 0 {
			s.consumeLine(raw)
		}
		if err != nil {
			if err != io.EOF {
				s.err = err
				return nil, err
			}
			s.err = io.EOF
		}
	}
}

// SafeBytes drains and returns the confirmed-safe byte count accumulated
// since the previous drain. The caller adds it to the resume offset only
// after the objects those bytes produced have been dispatched
func (s *Scanner) SafeBytes() int64 {
	n := s.safe
	s.safe = 0
	return n
}

// Stats returns the number of objects emitted so far
func (s *Scanner) Stats() (objects int) { return s.objects }

// consumeLine folds one raw line (terminator included) into the accumulator
// state, confirming bytes when they are structural or complete an object
func (s *Scanner) consumeLine(raw []byte) {
	s.pending += int64(len(raw))

	line := bytes.TrimSpace(raw)
	s.depth += bytes.Count(line, []byte{'{'}) - bytes.Count(line, []byte{'}'})

	if len(line) > 0 && s.depth == 0 {
		if line[len(line)-1] == ',' {
			line = line[:len(line)-1]
		}

		// A lone [ or ] is the enclosing array's own delimiter; an array that
		// opens and closes on one line is a real value and kept intact
		singleLineArray := len(line) > 0 && line[0] == '[' && line[len(line)-1] == ']'
		if len(line) > 0 && !singleLineArray && line[0] == '[' {
			line = line[1:]
		}
		if len(line) > 0 && !singleLineArray && line[len(line)-1] == ']' {
			line = line[:len(line)-1]
		}
		line = bytes.TrimSpace(line)
	}

	// Structural-only content (array brackets, blank lines) is immediately
	// safe, but only between objects: whitespace inside a partially-assembled
	// object belongs to that object's byte span and stays pending
	if len(line) == 0 {
		if s.depth == 0 && len(s.acc) == 0 {
			s.safe += s.pending
			s.pending = 0
		}
		return
	}

	s.acc = append(s.acc, line...)

	var v any
	if err := json.Unmarshal(s.acc, &v); err != nil {
		// incomplete object; keep accumulating
		return
	}

	s.held += s.pending
	s.pending = 0
	s.acc = s.acc[:0]

	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				s.queue = append(s.queue, domain.TrackObject(m))
			}
		}
	case map[string]any:
		s.queue = append(s.queue, domain.TrackObject(t))
	}

	// Parsed to a non-object scalar: bytes are consumed, nothing to emit
	if len(s.queue) == 0 {
		s.safe += s.held
		s.held = 0
	}
}
