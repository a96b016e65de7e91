package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response body is kept for the error message.
const maxErrorBody = 4096

type executeRequest struct {
	Command string `json:"command"`
}

// HTTPRunner posts commands to a notebook server's execution endpoint.
type HTTPRunner struct {
	client *http.Client
	url    string
	token  string
	logger *zap.Logger
}

// NewHTTPRunner creates a runner for baseURL joined with executePath.
func NewHTTPRunner(baseURL, executePath, token string, client *http.Client, logger *zap.Logger) (*HTTPRunner, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", baseURL)
	}
	full := u.JoinPath(strings.TrimPrefix(executePath, "/"))
	return &HTTPRunner{
		client: client,
		url:    full.String(),
		token:  token,
		logger: logger.Named("command"),
	}, nil
}

// URL returns the execution endpoint the runner posts to.
func (r *HTTPRunner) URL() string {
	return r.url
}

// Run posts {"command": ...} and decodes {"exitCode", "stdout", "stderr"} from a 2xx reply.
func (r *HTTPRunner) Run(ctx context.Context, command string) (*Result, error) {
	body, err := json.Marshal(executeRequest{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{URL: r.url, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "token "+r.token)
	}

	r.logger.Debug("executing remote command", zap.String("command", command))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: r.url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ExecutionError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{URL: r.url, Cause: fmt.Errorf("invalid response body: %w", err)}
	}

	r.logger.Debug("remote command finished",
		zap.String("command", command),
		zap.Int("exit_code", result.ExitCode))

	return &result, nil
}
