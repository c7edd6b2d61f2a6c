package frames

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

type chunkedBody struct {
	chunks []string
	err    error
	closed atomic.Int32
}

func (b *chunkedBody) Read(p []byte) (int, error) {
	if len(b.chunks) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[0])
	if n < len(b.chunks[0]) {
		b.chunks[0] = b.chunks[0][n:]
	} else {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *chunkedBody) Close() error {
	b.closed.Add(1)
	return nil
}

func collect(t *testing.T, body io.ReadCloser, opts ...Option) []string {
	t.Helper()
	var payloads []string
	for payload, err := range Frames(context.Background(), body, opts...) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		payloads = append(payloads, string(payload))
	}
	return payloads
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const stream = "data: {\"elder_start\":true,\"elder_id\":\"id1\"}\n\n" +
	"data: {\"chunk\":\"Hello\",\"elder_id\":\"id1\"}\n\n" +
	": keep-alive comment\n" +
	"data: {\"chunk\":\" world\",\"elder_id\":\"id1\"}\n\n" +
	"data: {\"elder_done\":true,\"raw\":\"Hello world\"}\n\n"

func TestFramesIgnoresLinesWithoutPrefix(t *testing.T) {
	got := collect(t, &chunkedBody{chunks: []string{stream}})
	want := []string{
		`{"elder_start":true,"elder_id":"id1"}`,
		`{"chunk":"Hello","elder_id":"id1"}`,
		`{"chunk":" world","elder_id":"id1"}`,
		`{"elder_done":true,"raw":"Hello world"}`,
	}
	if !equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFramesAreIndependentOfFragmentation(t *testing.T) {
	whole := collect(t, &chunkedBody{chunks: []string{stream}})

	for offset := 1; offset < len(stream); offset++ {
		split := collect(t, &chunkedBody{chunks: []string{stream[:offset], stream[offset:]}})
		if !equal(whole, split) {
			t.Fatalf("split at %d: expected %q, got %q", offset, whole, split)
		}
	}

	bytewise := make([]string, 0, len(stream))
	for i := range len(stream) {
		bytewise = append(bytewise, stream[i:i+1])
	}
	if got := collect(t, &chunkedBody{chunks: bytewise}); !equal(whole, got) {
		t.Fatalf("byte-by-byte: expected %q, got %q", whole, got)
	}
}

func TestFramesSmallReadSize(t *testing.T) {
	whole := collect(t, &chunkedBody{chunks: []string{stream}})
	got := collect(t, &chunkedBody{chunks: []string{stream}}, WithReadSize(3))
	if !equal(whole, got) {
		t.Fatalf("expected %q, got %q", whole, got)
	}
}

func TestFramesFlushesTrailingLineAtEnd(t *testing.T) {
	got := collect(t, &chunkedBody{chunks: []string{"data: {\"a\":1}\ndata: {\"panel_done\":true}"}})
	want := []string{`{"a":1}`, `{"panel_done":true}`}
	if !equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFramesTrimsCarriageReturn(t *testing.T) {
	got := collect(t, &chunkedBody{chunks: []string{"data: {\"a\":1}\r\n\r\n"}})
	if !equal(got, []string{`{"a":1}`}) {
		t.Fatalf("unexpected payloads %q", got)
	}
}

func TestFramesCustomPrefix(t *testing.T) {
	got := collect(t, &chunkedBody{chunks: []string{"event: x\ndata:{\"a\":1}\n"}}, WithPrefix("data:"))
	if !equal(got, []string{`{"a":1}`}) {
		t.Fatalf("unexpected payloads %q", got)
	}
}

func TestFramesClosesBodyWhenConsumerStops(t *testing.T) {
	body := &chunkedBody{chunks: []string{stream}}
	for range Frames(context.Background(), body) {
		break
	}
	if got := body.closed.Load(); got != 1 {
		t.Fatalf("expected body to be closed once, got %d", got)
	}
}

func TestFramesClosesBodyAtEnd(t *testing.T) {
	body := &chunkedBody{chunks: []string{stream}}
	collect(t, body)
	if got := body.closed.Load(); got != 1 {
		t.Fatalf("expected body to be closed once, got %d", got)
	}
}

func TestFramesYieldsReadErrorOnce(t *testing.T) {
	readErr := errors.New("connection reset")
	body := &chunkedBody{chunks: []string{"data: {\"a\":1}\n"}, err: readErr}

	var payloads, errs int
	for _, err := range Frames(context.Background(), body) {
		if err != nil {
			errs++
			if !errors.Is(err, readErr) {
				t.Fatalf("expected wrapped read error, got %v", err)
			}
			continue
		}
		payloads++
	}

	if payloads != 1 || errs != 1 {
		t.Fatalf("expected 1 payload and 1 error, got %d and %d", payloads, errs)
	}
	if body.closed.Load() != 1 {
		t.Fatalf("expected body to be closed")
	}
}

func TestFramesStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	body := &chunkedBody{chunks: []string{stream}}

	var payloads int
	var lastErr error
	for _, err := range Frames(ctx, body, WithReadSize(8)) {
		if err != nil {
			lastErr = err
			break
		}
		payloads++
		cancel()
	}

	if payloads != 1 {
		t.Fatalf("expected no frames after cancel, got %d", payloads)
	}
	if !errors.Is(lastErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", lastErr)
	}
}

func TestFramesUnblocksReadOnCancel(t *testing.T) {
	reader, writer := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		writer.Write([]byte("data: {\"a\":1}\n"))
	}()

	var lastErr error
	for _, err := range Frames(ctx, reader) {
		if err != nil {
			lastErr = err
			continue
		}
		cancel()
	}

	if !errors.Is(lastErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", lastErr)
	}
}

type record struct {
	Chunk string `json:"chunk"`
	Done  bool   `json:"done"`
}

func TestRecordsDropsMalformedFrames(t *testing.T) {
	body := &chunkedBody{chunks: []string{
		"data: {\"chunk\":\"a\"}\n",
		"data: {not json\n",
		"data: {\"chunk\":\"b\"}\n",
		"data: {\"done\":true}",
	}}

	var got []record
	for r, err := range Records[record](context.Background(), body) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, r)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}
	if got[0].Chunk != "a" || got[1].Chunk != "b" || !got[2].Done {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestRecordsClosesBodyWhenConsumerStops(t *testing.T) {
	body := &chunkedBody{chunks: []string{strings.Repeat("data: {\"chunk\":\"x\"}\n", 10)}}
	for range Records[record](context.Background(), body) {
		break
	}
	if body.closed.Load() != 1 {
		t.Fatalf("expected body to be closed")
	}
}
