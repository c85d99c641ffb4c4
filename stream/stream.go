package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
)

// bufSize is the read-ahead buffer handed to the incremental parser.
// Body bytes beyond it are pulled only as the consumer advances.
const bufSize = 4 << 10 // 4KB

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDecode is the sentinel error wrapped by [Error].
var ErrDecode = errors.New("decoding stream element failed")

// Error reports a malformed element and its zero-based position in the
// array. Elements before Index were yielded and remain valid.
type Error struct {
	Index int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at element %d", e.Err, e.Index)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stream is a lazy, forward-only view over a JSON array carried in a
// response body. It is not restartable and not safe for concurrent
// use. The stream owns the body: it is closed on exhaustion, on
// failure, and by [Stream.Close].
type Stream[T any] struct {
	body   io.ReadCloser
	iter   *jsoniter.Iterator
	logger *slog.Logger

	cur  T
	idx  int
	err  error
	done bool
}

// New wraps rc, which must carry a single top-level JSON array of T
// elements. logger receives cleanup failures only; nil falls back to
// [slog.Default].
func New[T any](rc io.ReadCloser, logger *slog.Logger) *Stream[T] {
	if logger == nil {
		logger = slog.Default()
	}

	return &Stream[T]{
		body:   rc,
		iter:   jsoniter.Parse(json, rc, bufSize),
		logger: logger,
	}
}

// Next advances to the next element, reporting whether one is
// available. It returns false at the end of the array, on a malformed
// element, and on every call after either; [Stream.Err] tells the
// cases apart.
func (s *Stream[T]) Next() bool {
	if s.done {
		return false
	}

	if !s.iter.ReadArray() {
		var err error
		if cause := s.iter.Error; cause != nil && !errors.Is(cause, io.EOF) {
			err = s.decodeErr(cause)
		}
		s.finish(err)

		return false
	}

	var v T
	s.iter.ReadVal(&v)
	if cause := s.iter.Error; cause != nil {
		if errors.Is(cause, io.EOF) {
			cause = io.ErrUnexpectedEOF
		}
		s.finish(s.decodeErr(cause))

		return false
	}

	s.cur = v
	s.idx++

	return true
}

// Item returns the element read by the latest successful [Stream.Next].
func (s *Stream[T]) Item() T {
	return s.cur
}

// Err returns the terminal error, or nil after a clean end of the
// array. A cancelled context surfaces as the context error; everything
// else is a *Error wrapping [ErrDecode].
func (s *Stream[T]) Err() error {
	return s.err
}

// Close stops the stream and releases the body so the underlying
// connection can be reclaimed. It is safe to call mid-stream and after
// exhaustion.
func (s *Stream[T]) Close() error {
	if s.done {
		return nil
	}
	s.done = true

	if s.body == nil {
		return nil
	}
	body := s.body
	s.body = nil

	if err := body.Close(); err != nil {
		return fmt.Errorf("closing stream body: %w", err)
	}

	return nil
}

// All adapts the stream to a range-over-func sequence. Elements arrive
// with a nil error; a failure yields once with the zero element and the
// terminal error. Breaking out early closes the stream.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next() {
			if !yield(s.cur, nil) {
				if err := s.Close(); err != nil {
					s.logger.Error("failed to close stream body", "error", err)
				}

				return
			}
		}

		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// decodeErr shapes a terminal cause. Context cancellation propagates
// as-is so callers can match it; anything else is a decode failure at
// the current element.
func (s *Stream[T]) decodeErr(cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return cause
	}

	return &Error{
		Index: s.idx,
		Err:   fmt.Errorf("%w: %w", ErrDecode, cause),
	}
}

// finish records the terminal state and releases the body. Cleanup
// failures are logged, not returned, so a clean end stays clean.
func (s *Stream[T]) finish(err error) {
	s.done = true
	if err != nil {
		s.err = err
	}

	if s.body == nil {
		return
	}
	if cerr := s.body.Close(); cerr != nil {
		s.logger.Error("failed to close stream body", "error", cerr)
	}
	s.body = nil
}
