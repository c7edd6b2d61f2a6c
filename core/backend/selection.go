package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/koscakluka/ema-council/core/events"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SelectParticipants asks the backend to pick up to limit participants for
// question.
func (c *Client) SelectParticipants(ctx context.Context, question string, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "select participants")
	defer span.End()

	var response struct {
		ElderIDs []string `json:"elder_ids"`
	}
	err := c.postJSON(ctx, "/api/select-elders", struct {
		Question  string `json:"question"`
		MaxElders int    `json:"max_elders"`
	}{Question: question, MaxElders: limit}, &response)
	if err != nil {
		err = fmt.Errorf("failed to select participants: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.StringSlice("response.participants", response.ElderIDs))
	return response.ElderIDs, nil
}

// SelectMode asks the backend for the discussion format that suits question
// best. An empty mode means the backend had no preference.
func (c *Client) SelectMode(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "select mode")
	defer span.End()

	var response struct {
		Mode string `json:"mode"`
	}
	err := c.postJSON(ctx, "/api/select-mode", struct {
		Question string `json:"question"`
	}{Question: question}, &response)
	if err != nil {
		err = fmt.Errorf("failed to select mode: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("response.mode", response.Mode))
	return response.Mode, nil
}

// StartEnrichment starts the background knowledge enrichment for a nominated
// participant and returns the task id.
func (c *Client) StartEnrichment(ctx context.Context, participantID, name, expertise string) (string, error) {
	var response struct {
		TaskID string `json:"task_id"`
	}
	err := c.postJSON(ctx, "/api/enrich", struct {
		ElderID   string `json:"elder_id"`
		Name      string `json:"name"`
		Expertise string `json:"expertise"`
	}{ElderID: participantID, Name: name, Expertise: expertise}, &response)
	if err != nil {
		return "", fmt.Errorf("failed to start enrichment: %w", err)
	}
	return response.TaskID, nil
}

// SendFeedback reports implicit session feedback.
func (c *Client) SendFeedback(ctx context.Context, feedback Feedback) error {
	if err := c.postJSON(ctx, "/api/session-feedback", feedback, nil); err != nil {
		return fmt.Errorf("failed to send session feedback: %w", err)
	}
	return nil
}

// ListParticipants returns every participant the backend knows.
func (c *Client) ListParticipants(ctx context.Context) ([]events.Identity, error) {
	ctx, span := tracer.Start(ctx, "list participants")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/elders", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to list participants: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("failed to list participants: %w", newStatusError(resp))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var participants []events.Identity
	if err := json.NewDecoder(resp.Body).Decode(&participants); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	span.SetAttributes(attribute.Int("response.participants", len(participants)))
	return participants, nil
}
