package backend

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/koscakluka/ema-council/core/frames"
	"github.com/koscakluka/ema-council/core/transcript"
	"go.opentelemetry.io/otel/codes"
)

// AudioProgress reports the state of an audio rendering job.
type AudioProgress struct {
	Current   int
	Total     int
	Remaining time.Duration

	Done        bool
	DownloadURL string
}

type audioFrame struct {
	Progress    bool    `json:"progress"`
	Current     int     `json:"current"`
	Total       int     `json:"total"`
	Remaining   float64 `json:"remaining"`
	Error       string  `json:"error"`
	Done        bool    `json:"done"`
	DownloadURL string  `json:"download_url"`
}

// GenerateAudio requests an audio rendering of segments and streams the
// job's progress. The sequence ends after the completion update, or with an
// error if the job reports one.
func (c *Client) GenerateAudio(ctx context.Context, segments []transcript.Segment, mode string) iter.Seq2[AudioProgress, error] {
	return func(yield func(AudioProgress, error) bool) {
		ctx, span := tracer.Start(ctx, "generate audio")
		defer span.End()

		body, err := c.Stream(ctx, "/api/podcast", struct {
			Segments []transcript.Segment `json:"segments"`
			Mode     string               `json:"mode"`
		}{Segments: segments, Mode: mode})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(AudioProgress{}, err)
			return
		}

		for frame, err := range frames.Records[audioFrame](ctx, body) {
			if err != nil {
				yield(AudioProgress{}, err)
				return
			}

			switch {
			case frame.Error != "":
				err := errors.New(frame.Error)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				yield(AudioProgress{}, err)
				return

			case frame.Done:
				yield(AudioProgress{Done: true, DownloadURL: frame.DownloadURL}, nil)
				return

			case frame.Progress:
				if !yield(AudioProgress{
					Current:   frame.Current,
					Total:     frame.Total,
					Remaining: time.Duration(frame.Remaining * float64(time.Second)),
				}, nil) {
					return
				}
			}
		}
	}
}
