package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultLanguageToolURL is the check endpoint of a locally running
// LanguageTool server.
const DefaultLanguageToolURL = "http://localhost:8081/v2/check"

// ProseChecker sends text to a LanguageTool server and summarizes the
// grammar and spelling matches it reports.
type ProseChecker struct {
	endpoint string
	language string
	client   *http.Client
	logger   *zap.Logger
}

// NewProseChecker creates a checker for the given LanguageTool check endpoint.
func NewProseChecker(endpoint, language string, client *http.Client, logger *zap.Logger) *ProseChecker {
	if language == "" {
		language = "en-US"
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProseChecker{endpoint: endpoint, language: language, client: client, logger: logger}
}

type ltResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text string `json:"text"`
		} `json:"context"`
	} `json:"matches"`
}

// Check implements Checker.
func (c *ProseChecker) Check(ctx context.Context, text string) Result {
	issues, err := c.query(ctx, text)
	if err != nil {
		c.logger.Warn("languagetool unavailable", zap.Error(err))
		return Result{KeyGrammarCheck: "languagetool not available: " + err.Error()}
	}
	return Result{
		KeyIssueCount: len(issues),
		KeyDetails:    issues,
	}
}

func (c *ProseChecker) query(ctx context.Context, text string) ([]GrammarIssue, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("no server configured")
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ltResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	issues := make([]GrammarIssue, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		suggestions := make([]string, 0, len(m.Replacements))
		for _, r := range m.Replacements {
			suggestions = append(suggestions, r.Value)
		}
		issues = append(issues, GrammarIssue{
			Message:     m.Message,
			Suggestions: suggestions,
			Context:     m.Context.Text,
		})
	}
	return issues, nil
}

// Reachable reports whether the LanguageTool server answers at all.
func (c *ProseChecker) Reachable(ctx context.Context) error {
	if c.endpoint == "" {
		return fmt.Errorf("no server configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := c.query(ctx, "ping")
	return err
}
