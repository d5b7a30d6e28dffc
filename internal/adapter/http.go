package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"muster/internal/backend"
	"muster/internal/errs"
	"muster/internal/promptasm"
	"muster/internal/security"
	"muster/pkg/logging"
)

// ServiceSupervisor is the external collaborator the HTTP adapter asks to
// start a backend that failed its readiness probe and has auto-start
// configured. Satisfied by internal/procmgr-adjacent infrastructure the
// orchestrator wires in; kept as a narrow interface so the adapter never
// needs to know how a backend is actually launched.
type ServiceSupervisor interface {
	Start(ctx context.Context, name string) error
}

// HTTPAdapter serves the NDJSON and SSE streaming dialects from one
// component, selected by descriptor.Dialect. Grounded on
// original_source/oxide/adapters/ollama_http.py.
type HTTPAdapter struct {
	descriptor backend.Descriptor
	client     *http.Client
	prober     func(ctx context.Context) bool
	supervisor ServiceSupervisor
}

// NewHTTPAdapter constructs an HTTPAdapter. prober is the health-check
// function (typically internal/health's cached prober for this backend);
// supervisor may be nil if the descriptor has AutoStart disabled.
func NewHTTPAdapter(descriptor backend.Descriptor, prober func(ctx context.Context) bool, supervisor ServiceSupervisor) *HTTPAdapter {
	return &HTTPAdapter{
		descriptor: descriptor,
		client:     &http.Client{},
		prober:     prober,
		supervisor: supervisor,
	}
}

func (a *HTTPAdapter) Name() string { return a.descriptor.Name }

// Execute ensures the backend is ready (probing, and auto-starting if
// configured), assembles the prompt, and streams the response in whichever
// dialect the descriptor selects. Retries happen inside this call per
// descriptor.MaxRetries/RetryDelaySecs — a retry policy distinct from, and
// composing with, the Orchestrator's outer retry loop (see Design Note 2:
// both loops run to completion independently, so worst-case attempts equal
// MaxRetries x the number of models tried x the orchestrator's outer retry
// count).
func (a *HTTPAdapter) Execute(ctx context.Context, prompt string, files []string) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		if err := a.ensureReady(ctx); err != nil {
			send(ctx, out, Chunk{Err: err})
			return
		}

		fullPrompt := promptasm.Assemble(prompt, security.ValidateFilePaths(files, true))
		model := a.selectModel(ctx)
		if model == "" {
			send(ctx, out, Chunk{Err: errs.NewSemanticAdapterError(a.descriptor.Name, "no model specified and no default_model configured")})
			return
		}

		models := []string{model}
		for _, m := range a.descriptor.PreferredModels {
			if m != model {
				models = append(models, m)
			}
		}

		var lastErr error
		for _, m := range models {
			lastErr = a.executeModel(ctx, m, fullPrompt, out)
			if lastErr == nil {
				return
			}
			if !errs.SkipsToNextCandidate(lastErr) && !errs.Retryable(lastErr) {
				send(ctx, out, Chunk{Err: lastErr})
				return
			}
		}
		if lastErr != nil {
			send(ctx, out, Chunk{Err: lastErr})
		}
	}()

	return out
}

// executeModel runs the retry loop for a single model: up to MaxRetries
// attempts (default 2) with a fixed delay between them, short-circuiting on
// a non-retryable status.
func (a *HTTPAdapter) executeModel(ctx context.Context, model, prompt string, out chan<- Chunk) error {
	maxRetries := a.descriptor.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	delay := time.Duration(a.descriptor.RetryDelaySecs) * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return errs.NewTimeoutError(a.descriptor.Name, 0)
			}
		}

		var err error
		switch a.descriptor.Dialect {
		case backend.DialectSSE:
			err = a.executeSSE(ctx, model, prompt, out)
		default:
			err = a.executeNDJSON(ctx, model, prompt, out)
		}
		if err == nil {
			return nil
		}
		lastErr = err
		if !errs.Retryable(err) {
			return err
		}
	}
	return lastErr
}

// ensureReady probes the backend; if unhealthy and AutoStart is
// configured, asks the supervisor to start it and re-probes once.
func (a *HTTPAdapter) ensureReady(ctx context.Context) error {
	if a.prober == nil || a.prober(ctx) {
		return nil
	}
	if a.descriptor.AutoStart && a.supervisor != nil {
		if err := a.supervisor.Start(ctx, a.descriptor.Name); err != nil {
			return errs.NewServiceUnavailableError(a.descriptor.Name, fmt.Sprintf("auto-start failed: %v", err))
		}
		if a.prober(ctx) {
			return nil
		}
	}
	return errs.NewServiceUnavailableError(a.descriptor.Name, "backend not ready")
}

// selectModel returns the configured default model, or auto-detects one by
// substring-matching (case-insensitive) the preferred-model list against
// the backend's listed models, falling back to the first available model.
func (a *HTTPAdapter) selectModel(ctx context.Context) string {
	if a.descriptor.DefaultModel != "" {
		return a.descriptor.DefaultModel
	}
	if !a.descriptor.AutoDetectModel {
		return ""
	}

	available := a.ListModels(ctx)
	if len(available) == 0 {
		return ""
	}
	for _, preferred := range a.descriptor.PreferredModels {
		for _, candidate := range available {
			if strings.Contains(strings.ToLower(candidate), strings.ToLower(preferred)) {
				return candidate
			}
		}
	}
	return available[0]
}

type ndjsonRecord struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// executeNDJSON POSTs to <base>/api/generate and parses the response as
// newline-delimited JSON records.
func (a *HTTPAdapter) executeNDJSON(ctx context.Context, model, prompt string, out chan<- Chunk) error {
	body, err := json.Marshal(map[string]any{"model": model, "prompt": prompt, "stream": true})
	if err != nil {
		return errs.NewAdapterError(a.descriptor.Name, "request encode error: %v", err)
	}

	resp, err := a.post(ctx, "/api/generate", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := a.statusError(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec ndjsonRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.Warn("adapter", "invalid NDJSON line from %s: %s", a.descriptor.Name, truncate(line, 100))
			continue
		}
		if rec.Response != "" {
			if !send(ctx, out, Chunk{Text: rec.Response}) {
				return nil
			}
		}
		if rec.Done {
			break
		}
	}
	return scanErr(scanner, a.descriptor.Name)
}

type sseChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type sseFrame struct {
	Choices []sseChoice `json:"choices"`
}

// executeSSE POSTs to <base>/v1/chat/completions and parses the response
// as Server-Sent Events.
func (a *HTTPAdapter) executeSSE(ctx context.Context, model, prompt string, out chan<- Chunk) error {
	body, err := json.Marshal(map[string]any{
		"model":    model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
		"stream":   true,
	})
	if err != nil {
		return errs.NewAdapterError(a.descriptor.Name, "request encode error: %v", err)
	}

	resp, err := a.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := a.statusError(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		var frame sseFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			logging.Warn("adapter", "invalid SSE payload from %s: %s", a.descriptor.Name, truncate(payload, 100))
			continue
		}
		if len(frame.Choices) > 0 && frame.Choices[0].Delta.Content != "" {
			if !send(ctx, out, Chunk{Text: frame.Choices[0].Delta.Content}) {
				return nil
			}
		}
	}
	return scanErr(scanner, a.descriptor.Name)
}

func (a *HTTPAdapter) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(a.descriptor.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewAdapterError(a.descriptor.Name, "request build error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.NewTimeoutError(a.descriptor.Name, 0)
		}
		return nil, errs.NewServiceUnavailableError(a.descriptor.Name, fmt.Sprintf("cannot connect to %s: %v", a.descriptor.BaseURL, err))
	}
	return resp, nil
}

// statusError translates the HTTP status policy in §4.6 into the error
// taxonomy.
func (a *HTTPAdapter) statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.NewSemanticAdapterError(a.descriptor.Name, "authentication failed")
	case resp.StatusCode == http.StatusPaymentRequired:
		return errs.NewSemanticAdapterError(a.descriptor.Name, "payment required")
	case resp.StatusCode == http.StatusNotFound:
		return errs.NewSemanticAdapterError(a.descriptor.Name, "model not found")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return errs.NewServiceUnavailableError(a.descriptor.Name, fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return errs.NewAdapterError(a.descriptor.Name, "server error: status %d", resp.StatusCode)
	default:
		return errs.NewAdapterError(a.descriptor.Name, "unexpected status %d", resp.StatusCode)
	}
}

func scanErr(scanner *bufio.Scanner, backendName string) error {
	if err := scanner.Err(); err != nil {
		return errs.NewAdapterError(backendName, "stream read error: %v", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// HealthCheck GETs the dialect-appropriate readiness endpoint with a
// 5-second ceiling; healthy iff status 200.
func (a *HTTPAdapter) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	path := "/api/tags"
	if a.descriptor.Dialect == backend.DialectSSE {
		path = "/v1/models"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(a.descriptor.BaseURL, "/")+path, nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ndjsonModelList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type sseModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels parses the dialect-appropriate model listing endpoint,
// returning an empty list (logged) on any failure rather than an error.
func (a *HTTPAdapter) ListModels(ctx context.Context) []string {
	path := "/api/tags"
	if a.descriptor.Dialect == backend.DialectSSE {
		path = "/v1/models"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(a.descriptor.BaseURL, "/")+path, nil)
	if err != nil {
		logging.Warn("adapter", "list models request build failed for %s: %v", a.descriptor.Name, err)
		return nil
	}
	resp, err := a.client.Do(req)
	if err != nil {
		logging.Warn("adapter", "list models failed for %s: %v", a.descriptor.Name, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logging.Warn("adapter", "list models got status %d from %s", resp.StatusCode, a.descriptor.Name)
		return nil
	}

	if a.descriptor.Dialect == backend.DialectSSE {
		var list sseModelList
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			logging.Warn("adapter", "list models decode failed for %s: %v", a.descriptor.Name, err)
			return nil
		}
		out := make([]string, 0, len(list.Data))
		for _, m := range list.Data {
			out = append(out, m.ID)
		}
		return out
	}

	var list ndjsonModelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		logging.Warn("adapter", "list models decode failed for %s: %v", a.descriptor.Name, err)
		return nil
	}
	out := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, m.Name)
	}
	return out
}
