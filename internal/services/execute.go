package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"codecollab/internal/config"

	"github.com/google/uuid"
)

// ExecuteService proxies code execution to a Judge0-compatible judge.
// The judge runs and sandboxes the code; this service only submits the
// source, polls for a terminal status, and maps the result.
type ExecuteService struct {
	baseURL string
	apiKey  string
	apiHost string
	client  *http.Client
}

func NewExecuteService(cfg *config.Config) *ExecuteService {
	return &ExecuteService{
		baseURL: strings.TrimRight(cfg.Judge0URL, "/"),
		apiKey:  cfg.Judge0APIKey,
		apiHost: cfg.Judge0Host,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type ExecuteResult struct {
	Output   string `json:"output"`
	Error    string `json:"error"`
	Language string `json:"language"`
}

// judge0Languages maps language names and common file extensions to Judge0
// language ids.
var judge0Languages = map[string]int{
	"c": 50,
	"cpp": 54, "cc": 54, "cxx": 54, "c++": 54,
	"java":   62,
	"python": 71, "py": 71, "pyc": 71, "pyw": 71, "pyo": 71,
	"javascript": 63, "js": 63, "jsx": 63, "mjs": 63, "cjs": 63,
	"typescript": 74, "ts": 74, "tsx": 74,
	"ruby": 72, "rb": 72,
	"go":   60,
	"rust": 73, "rs": 73,
	"php":    68,
	"swift":  83,
	"kotlin": 78, "kt": 78,
	"scala":        81,
	"dart":         84,
	"perl":         85,
	"lua":          64,
	"r":            80,
	"haskell":      61,
	"clojure":      86,
	"erlang":       58,
	"elixir":       57,
	"coffeescript": 55,
	"bash":         46, "sh": 46, "shell": 46, "zsh": 46,
	"sql":        82,
	"pascal":     67,
	"fortran":    59,
	"scheme":     87,
	"commonlisp": 88,
	"prolog":     89,
	"octave":     66, "matlab": 66,
	"objective-c": 79,
	"vb.net":      51,
	"f#":          87, "fs": 87,
	"groovy":  88,
	"tcl":     90,
	"d":       91,
	"nim":     92,
	"julia":   93,
	"crystal": 94,
	"pony":    95,
	"v":       96,
	"zig":     97,
}

type judge0Submission struct {
	SourceCode             string `json:"source_code"`
	LanguageID             int    `json:"language_id"`
	Stdin                  string `json:"stdin"`
	RedirectStderrToStdout bool   `json:"redirect_stderr_to_stdout"`
}

type judge0Result struct {
	Token         string `json:"token"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

var javaClassRe = regexp.MustCompile(`public\s+class\s+(\w+)`)

// Execute submits code to the judge and waits for the verdict around a
// one-second polling loop with a 30-attempt cap, the same discipline the
// judge's own examples use.
func (s *ExecuteService) Execute(ctx context.Context, code, language string) (*ExecuteResult, error) {
	languageID, ok := judge0Languages[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("language %q is not supported", language)
	}

	// Judge0 requires the Java entry class to be named Main
	if strings.EqualFold(language, "java") {
		if m := javaClassRe.FindStringSubmatch(code); m != nil && m[1] != "Main" {
			nameRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(m[1]) + `\b`)
			code = nameRe.ReplaceAllString(code, "Main")
		}
	}

	runID := uuid.New().String()
	log.Printf("[run %s] submitting %s code to judge", runID, language)

	token, err := s.submit(ctx, &judge0Submission{
		SourceCode: code,
		LanguageID: languageID,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.await(ctx, token)
	if err != nil {
		return nil, err
	}

	out := &ExecuteResult{Language: language}
	switch result.Status.ID {
	case 3, 4: // Accepted / Wrong Answer (no expected output configured)
		out.Output = strings.TrimSpace(result.Stdout)
	case 5:
		out.Error = "Time limit exceeded"
	case 6:
		out.Error = firstNonEmpty(result.CompileOutput, result.Stderr, "Compilation error")
	case 7:
		out.Error = firstNonEmpty(result.Stderr, result.Status.Description, "Runtime error")
	case 8:
		out.Error = "Memory limit exceeded"
	case 9:
		out.Error = "Output limit exceeded"
	default:
		out.Error = firstNonEmpty(result.Status.Description, "Unknown error")
	}

	return out, nil
}

func (s *ExecuteService) submit(ctx context.Context, submission *judge0Submission) (string, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("judge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("judge rejected submission: %s", resp.Status)
	}

	var result judge0Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode judge response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("judge returned no submission token")
	}

	return result.Token, nil
}

func (s *ExecuteService) await(ctx context.Context, token string) (*judge0Result, error) {
	for attempt := 0; attempt < 30; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/submissions/"+token, nil)
		if err != nil {
			return nil, err
		}
		s.setHeaders(req)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("judge request failed: %w", err)
		}

		var result judge0Result
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode judge response: %w", err)
		}

		// Status ids 1 and 2 are "in queue" and "processing"
		if result.Status.ID > 2 {
			return &result, nil
		}
	}

	return nil, fmt.Errorf("execution timed out")
}

func (s *ExecuteService) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", s.apiKey)
		req.Header.Set("X-RapidAPI-Host", s.apiHost)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
