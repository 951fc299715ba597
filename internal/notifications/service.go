package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bilisum/internal/config"
)

const (
	userAgent      = "bilisum/0.1"
	previewRunes   = 280
	defaultTimeout = 10 * time.Second
)

// Service defines the notification surface exposed to result sinks and the CLI.
type Service interface {
	NotifyJobSucceeded(ctx context.Context, source, jobID, summary string) error
	NotifyJobFailed(ctx context.Context, source, jobID, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc actually sends anything.
func Enabled(svc Service) bool {
	if svc == nil {
		return false
	}
	_, noop := svc.(noopService)
	return !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobSucceeded(ctx context.Context, source, jobID, summary string) error {
	source = displaySource(source, jobID)
	message := fmt.Sprintf("✅ Summary ready: %s", source)
	if preview := previewText(summary); preview != "" {
		message = fmt.Sprintf("%s\n\n%s", message, preview)
	}
	data := payload{
		title:   "bilisum - Done",
		message: message,
		tags:    []string{"bilisum", "job", "succeeded"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, source, jobID, reason string) error {
	source = displaySource(source, jobID)
	var builder strings.Builder
	builder.WriteString("❌ Job failed: ")
	builder.WriteString(source)
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString("\n")
		builder.WriteString(reason)
	}
	data := payload{
		title:    "bilisum - Failed",
		message:  builder.String(),
		tags:     []string{"bilisum", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "bilisum - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"bilisum", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displaySource(source, jobID string) string {
	if source = strings.TrimSpace(source); source != "" {
		return source
	}
	if jobID = strings.TrimSpace(jobID); jobID != "" {
		return "task " + jobID
	}
	return "unknown source"
}

func previewText(summary string) string {
	summary = strings.TrimSpace(summary)
	runes := []rune(summary)
	if len(runes) <= previewRunes {
		return summary
	}
	return strings.TrimSpace(string(runes[:previewRunes])) + "…"
}

type noopService struct{}

func (noopService) NotifyJobSucceeded(context.Context, string, string, string) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string, string) error    { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
