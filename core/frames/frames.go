// Package frames decodes line-delimited, prefix-tagged streams into frame
// payloads.
//
// A frame is a single line of the stream that starts with the configured
// prefix ("data: " by default). Lines without the prefix are ignored. A line
// is only considered once its terminating newline arrived, except for the
// last line of the stream, which is flushed when the stream ends.
package frames

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Frames returns a lazy sequence of frame payloads read from body.
//
// Every call starts from a fresh buffer; a sequence is not resumable once the
// consumer stops ranging over it. body is closed on every exit path,
// including the consumer breaking out early and ctx being cancelled. A read
// failure is yielded once and ends the sequence.
func Frames(ctx context.Context, body io.ReadCloser, opts ...Option) iter.Seq2[[]byte, error] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	prefix := []byte(o.prefix)

	return func(yield func([]byte, error) bool) {
		var closeOnce sync.Once
		closeBody := func() { closeOnce.Do(func() { body.Close() }) }
		defer closeBody()

		// Reads on arbitrary readers do not observe ctx, closing the body
		// unblocks them.
		done := withContextCancelHook(ctx, closeBody)
		defer close(done)

		// emit returns false when decoding has to stop, stopped is set when the
		// consumer is the one that asked for it.
		stopped := false
		emit := func(line []byte) bool {
			line = bytes.TrimSuffix(line, []byte{'\r'})
			if !bytes.HasPrefix(line, prefix) {
				return true
			}
			if ctx.Err() != nil {
				return false
			}
			if !yield(bytes.Clone(line[len(prefix):]), nil) {
				stopped = true
				return false
			}
			return true
		}

		buffer := make([]byte, 0, o.readSize)
		chunk := make([]byte, o.readSize)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			n, readErr := body.Read(chunk)
			if n > 0 {
				buffer = append(buffer, chunk[:n]...)

				consumed := 0
				for {
					idx := bytes.IndexByte(buffer[consumed:], '\n')
					if idx < 0 {
						break
					}
					line := buffer[consumed : consumed+idx]
					consumed += idx + 1
					if !emit(line) {
						if !stopped {
							yield(nil, ctx.Err())
						}
						return
					}
				}
				buffer = append(buffer[:0], buffer[consumed:]...)
			}

			if readErr != nil {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if errors.Is(readErr, io.EOF) {
					if len(buffer) > 0 {
						emit(buffer)
					}
					return
				}
				yield(nil, fmt.Errorf("error reading frame stream: %w", readErr))
				return
			}
		}
	}
}

// Records returns a lazy sequence of frame payloads decoded as JSON into T.
//
// Payloads that are not valid JSON for T are dropped. Errors from the
// underlying stream are yielded once and end the sequence.
func Records[T any](ctx context.Context, body io.ReadCloser, opts ...Option) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, span := tracer.Start(ctx, "decode frame stream")
		defer span.End()

		decoded, dropped := 0, 0
		defer func() {
			span.SetAttributes(
				attribute.Int("frames.decoded", decoded),
				attribute.Int("frames.dropped", dropped),
			)
		}()

		for payload, err := range Frames(ctx, body, opts...) {
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
				var zero T
				yield(zero, err)
				return
			}

			var record T
			if err := json.Unmarshal(payload, &record); err != nil {
				dropped++
				logger.DebugContext(ctx, "dropped malformed frame", "error", err, "size", len(payload))
				continue
			}
			decoded++
			if !yield(record, nil) {
				return
			}
		}
	}
}

func withContextCancelHook(ctx context.Context, onContextDone func()) chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			onContextDone()
		case <-done:
		}
	}()
	return done
}
