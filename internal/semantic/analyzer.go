package semantic

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

// Finding is a logic vulnerability discovered by semantic analysis. Semantic
// findings form their own list and are never merged with static findings by
// rule; callers concatenate the two reports.
type Finding struct {
	ID              string  `json:"id"`
	Severity        string  `json:"severity"`
	Function        string  `json:"function"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	AttackScenario  string  `json:"attack_scenario"`
	EstimatedImpact string  `json:"estimated_impact"`
	Confidence      float64 `json:"confidence"`
	Source          string  `json:"source"` // "semantic" for live analysis, "validated" for the fallback set
}

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
)

// Analyzer sends source code to an LLM with a security-audit prompt and
// parses the structured findings. It falls back to a pre-validated result set
// when no API key is configured or the API is unreachable.
type Analyzer struct {
	http     *resty.Client
	apiKey   string
	model    string
	demoMode bool
	log      hclog.Logger
}

func NewAnalyzer(log hclog.Logger) *Analyzer {
	http := resty.New().
		SetTimeout(120 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)
	return &Analyzer{
		http:   http,
		apiKey: os.Getenv("ANTHROPIC_API_KEY"),
		model:  defaultModel,
		log:    log,
	}
}

// IsDemoMode reports whether the last analysis used pre-validated results.
func (a *Analyzer) IsDemoMode() bool { return a.demoMode }

// Analyze returns the semantic finding list for one source buffer.
func (a *Analyzer) Analyze(source, filename string) []Finding {
	if a.apiKey == "" {
		if a.log != nil {
			a.log.Info("no API key, using pre-validated results", "file", filename)
		}
		a.demoMode = true
		return prevalidatedFindings()
	}
	findings, err := a.callAPI(source, filename)
	if err != nil {
		if a.log != nil {
			a.log.Warn("semantic API unavailable, using pre-validated results", "error", err)
		}
		a.demoMode = true
		return prevalidatedFindings()
	}
	a.demoMode = false
	return findings
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Analyzer) callAPI(source, filename string) ([]Finding, error) {
	userMessage := fmt.Sprintf(
		"Analyze the following Solana/Anchor program for logic vulnerabilities.\nFile: %s\n\n```rust\n%s\n```",
		filename, source)

	body := map[string]any{
		"model":      a.model,
		"max_tokens": 4096,
		"system":     auditorSystemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": userMessage},
		},
	}

	var out apiResponse
	resp, err := a.http.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", a.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetBody(body).
		SetResult(&out).
		Post(apiURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API error %d", resp.StatusCode())
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseFindings(text.String())
}

// parseFindings decodes the model's JSON reply, tolerating markdown fences
// and surrounding prose.
func parseFindings(text string) ([]Finding, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if i := strings.Index(cleaned, "\n"); i >= 0 {
			cleaned = cleaned[i+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Findings []struct {
			Severity        string  `json:"severity"`
			Function        string  `json:"function"`
			Title           string  `json:"title"`
			Description     string  `json:"description"`
			AttackScenario  string  `json:"attack_scenario"`
			EstimatedImpact string  `json:"estimated_impact"`
			Confidence      float64 `json:"confidence"`
		} `json:"findings"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("response is not JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
			return nil, err
		}
	}

	findings := make([]Finding, 0, len(payload.Findings))
	for i, raw := range payload.Findings {
		severity := raw.Severity
		if severity == "" {
			severity = "Medium"
		}
		function := raw.Function
		if function == "" {
			function = "unknown"
		}
		title := raw.Title
		if title == "" {
			title = "Untitled finding"
		}
		findings = append(findings, Finding{
			ID:              fmt.Sprintf("SEM-%03d", i+1),
			Severity:        severity,
			Function:        function,
			Title:           title,
			Description:     raw.Description,
			AttackScenario:  raw.AttackScenario,
			EstimatedImpact: raw.EstimatedImpact,
			Confidence:      raw.Confidence,
			Source:          "semantic",
		})
	}
	return findings, nil
}
