package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Seed  []string   `json:"seed_items,omitempty"` // Items added before the first step
	Steps []TestStep `json:"steps,omitempty"`
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep adds AddItem (when set) and then checks expectations
// against the session's inventory.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	AddItem      string       `json:"add_item,omitempty"`
	Expectations Expectations `json:"expect"`
}

type Expectations struct {
	Added     *bool    `json:"added,omitempty"`
	Status    int      `json:"status,omitempty"`    // Expected HTTP status of the add; defaults to 200
	Inventory []string `json:"inventory,omitempty"` // Full inventory contents, in order
	Contains  []string `json:"contains,omitempty"`
	Count     *int     `json:"count,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID
}
