package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running quell API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 10 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// CheckHealth reports whether the API answers /health with 200.
func (r *Runner) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// RunSuite executes a complete test suite in a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	sessionID, err := r.createSession(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = sessionID

	for _, item := range suite.Seed {
		if _, _, err := r.addItem(ctx, sessionID, item); err != nil {
			result.Error = fmt.Errorf("failed to seed item %q: %w", item, err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, sessionID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	exp := step.Expectations

	if step.AddItem != "" {
		added, status, err := r.addItem(ctx, sessionID, step.AddItem)
		wantStatus := exp.Status
		if wantStatus == 0 {
			wantStatus = http.StatusOK
		}
		switch {
		case status != wantStatus:
			result.Error = fmt.Errorf("add %q returned status %d, want %d (%v)", step.AddItem, status, wantStatus, err)
		case err != nil && wantStatus == http.StatusOK:
			result.Error = err
		case exp.Added != nil && added != *exp.Added:
			result.Error = fmt.Errorf("add %q reported added=%v, want %v", step.AddItem, added, *exp.Added)
		}
		if result.Error != nil {
			result.Duration = time.Since(start)
			return result
		}
	}

	items, err := r.getInventory(ctx, sessionID)
	if err != nil {
		result.Error = err
	} else {
		result.Error = checkInventory(exp, items)
	}

	result.Success = result.Error == nil
	result.Duration = time.Since(start)
	return result
}

func checkInventory(exp Expectations, items []string) error {
	var failures []string
	if exp.Inventory != nil && !slices.Equal(exp.Inventory, items) {
		failures = append(failures, fmt.Sprintf("inventory: expected %v, got %v", exp.Inventory, items))
	}
	for _, want := range exp.Contains {
		if !slices.Contains(items, want) {
			failures = append(failures, fmt.Sprintf("inventory: missing %q in %v", want, items))
		}
	}
	if exp.Count != nil && len(items) != *exp.Count {
		failures = append(failures, fmt.Sprintf("inventory: expected %d items, got %d", *exp.Count, len(items)))
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}

func (r *Runner) createSession(ctx context.Context) (uuid.UUID, error) {
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	status, err := r.do(ctx, http.MethodPost, "/v1/sessions", nil, &resp)
	if err != nil {
		return uuid.Nil, err
	}
	if status != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("create session returned %d", status)
	}
	return resp.ID, nil
}

func (r *Runner) addItem(ctx context.Context, sessionID uuid.UUID, item string) (bool, int, error) {
	var resp struct {
		Added bool     `json:"added"`
		Items []string `json:"items"`
	}
	status, err := r.do(ctx, http.MethodPost, inventoryPath(sessionID), map[string]string{"item": item}, &resp)
	return resp.Added, status, err
}

func (r *Runner) getInventory(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	var resp struct {
		Items []string `json:"items"`
	}
	status, err := r.do(ctx, http.MethodGet, inventoryPath(sessionID), nil, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get inventory returned %d", status)
	}
	return resp.Items, nil
}

func inventoryPath(sessionID uuid.UUID) string {
	return "/v1/sessions/" + sessionID.String() + "/inventory"
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses return the status with an error carrying the body.
func (r *Runner) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
