package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Event is the audit record of one LLM call.
type Event struct {
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Error        string
	Request      string
	Response     string
}

// EventRecorder persists LLM audit events.
type EventRecorder interface {
	RecordLLMEvent(ctx context.Context, ev Event) error
}

// LoggingProvider logs every call with zap and hands it to an optional
// EventRecorder. Recording failures never fail the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder EventRecorder
	log      *zap.Logger
}

// WithLogging wraps p. recorder may be nil.
func WithLogging(p Provider, provider string, recorder EventRecorder, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: provider, recorder: recorder, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := Event{
		Timestamp: start.UTC(),
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		Request:   describeRequest(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.Response = string(resp.Content)
	}

	fields := []zap.Field{
		zap.String("provider", ev.Provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", ev.LatencyMs),
	}
	if err != nil {
		ev.Error = err.Error()
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Debug("llm request", append(fields,
			zap.Int("input_tokens", ev.InputTokens),
			zap.Int("output_tokens", ev.OutputTokens))...)
	}

	if l.recorder != nil {
		if recErr := l.recorder.RecordLLMEvent(ctx, ev); recErr != nil {
			l.log.Warn("record llm event", zap.Error(recErr))
		}
	}
	if err != nil {
		return resp, &RequestError{Provider: ev.Provider, Model: ev.Model, Purpose: ev.Purpose, Err: err}
	}
	return resp, nil
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

// describeRequest renders a request as readable text for the audit log.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
