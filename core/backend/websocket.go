package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// WebSocketTransport opens discussion streams over a websocket. The request
// body is sent as the first text message; every following text message is
// treated as raw stream bytes, so message boundaries do not have to line up
// with frame boundaries.
type WebSocketTransport struct {
	baseURL string
	dialer  *websocket.Dialer
}

func NewWebSocketTransport(baseURL string) *WebSocketTransport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &WebSocketTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dialer:  websocket.DefaultDialer,
	}
}

func (t *WebSocketTransport) Stream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "open discussion websocket")
	defer span.End()

	streamURL, err := websocketURL(t.baseURL, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("request.url", streamURL))

	conn, resp, err := t.dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("failed to open socket connection: %w", newStatusError(resp))
		} else {
			err = fmt.Errorf("failed to open socket connection: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := conn.WriteJSON(body); err != nil {
		conn.Close()
		err = fmt.Errorf("failed to write request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reader, writer := io.Pipe()
	stream := &websocketStream{PipeReader: reader, conn: conn}
	go stream.pump(ctx, writer)
	return stream, nil
}

type websocketStream struct {
	*io.PipeReader
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (s *websocketStream) Close() error {
	s.closeOnce.Do(func() {
		s.PipeReader.Close()
		s.conn.Close()
	})
	return nil
}

func (s *websocketStream) pump(ctx context.Context, writer *io.PipeWriter) {
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				writer.Close()
				return
			}
			if ctx.Err() != nil {
				writer.CloseWithError(ctx.Err())
				return
			}
			logger.DebugContext(ctx, "websocket stream ended", "error", err)
			writer.CloseWithError(fmt.Errorf("failed to read websocket message: %w", err))
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if _, err := writer.Write(msg); err != nil {
			if !errors.Is(err, io.ErrClosedPipe) {
				logger.DebugContext(ctx, "failed to forward websocket message", "error", err)
			}
			s.conn.Close()
			return
		}
	}
}

func websocketURL(baseURL, endpoint string) (string, error) {
	parsed, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid stream url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported stream url scheme %q", parsed.Scheme)
	}
	return parsed.String(), nil
}
