// Package ollama reaches the model provider for two jobs: transcribing page
// images (recognition) and streaming structured analysis generation.
package ollama

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealsense/sales-intel/internal/infrastructure/resilience"
)

type Client struct {
	baseURL     string
	genModel    string
	visionModel string
	httpClient  *http.Client
	limiter     *rate.Limiter
	executor    *resilience.Executor
}

type Options struct {
	// RecognitionRPS throttles page transcription requests; zero means
	// unthrottled.
	RecognitionRPS     float64
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, genModel, visionModel string) *Client {
	return NewWithOptions(baseURL, genModel, visionModel, Options{})
}

func NewWithOptions(baseURL, genModel, visionModel string, options Options) *Client {
	limit := rate.Inf
	if options.RecognitionRPS > 0 {
		limit = rate.Limit(options.RecognitionRPS)
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		genModel:    genModel,
		visionModel: visionModel,
		httpClient:  &http.Client{Timeout: 300 * time.Second},
		limiter:     rate.NewLimiter(limit, 1),
		executor:    options.ResilienceExecutor,
	}
}

// Recognizer implements ports.RecognitionClient against a vision model.
type Recognizer struct {
	client *Client
}

func NewRecognizer(client *Client) *Recognizer {
	return &Recognizer{client: client}
}

func (r *Recognizer) Recognize(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	if err := r.client.limiter.Wait(ctx); err != nil {
		return "", err
	}

	request := map[string]any{
		"model":  r.client.visionModel,
		"prompt": transcriptionPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(imageBytes)},
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(ctx context.Context) error {
		return r.client.postJSON(ctx, "/api/generate", request, &response, "recognize")
	}

	var err error
	if r.client.executor != nil {
		err = r.client.executor.Execute(ctx, "ollama.recognize", call, classifyModelError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("recognize", err)
	}
	// Empty transcription is a valid answer for a blank page.
	return strings.TrimSpace(response.Response), nil
}

// Streamer implements ports.AnalysisStreamer by reading the provider's
// NDJSON generation stream fragment by fragment.
type Streamer struct {
	client *Client
}

func NewStreamer(client *Client) *Streamer {
	return &Streamer{client: client}
}

func (s *Streamer) StreamAnalysis(ctx context.Context, question, documentContext string, emit func(fragment string)) error {
	request := map[string]any{
		"model":  s.client.genModel,
		"prompt": buildAnalysisPrompt(question, documentContext),
		"stream": true,
		"format": "json",
	}

	body, err := s.client.postStream(ctx, "/api/generate", request, "generate")
	if err != nil {
		return wrapTemporaryIfNeeded("generate", err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var chunk struct {
			Response string `json:"response"`
			Done     bool   `json:"done"`
			Error    string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			// Skip malformed keepalive lines rather than aborting the stream.
			continue
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama generate stream: %s", chunk.Error)
		}
		if chunk.Response != "" {
			emit(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read generate stream: %w", err)
	}
	return nil
}
