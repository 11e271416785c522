package factory

import (
	"context"
	"time"

	"github.com/inkduel/inkduel-go/internal/dependencies/mocks"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/challenge"
	"github.com/inkduel/inkduel-go/internal/services/review"
	"github.com/inkduel/inkduel-go/internal/storage/memory"
	"github.com/inkduel/inkduel-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// Grader controls the fake grading pipeline outcome
	Grader *FakeGrader
}

// FakeGrader is a grading pipeline that fails on demand
type FakeGrader struct {
	Err error
}

// Grade returns the configured error, if any
func (g *FakeGrader) Grade(_ context.Context, _ model.ProjectCode, _ model.PlayerKey, _ string) error {
	return g.Err
}

var _ review.Grader = (*FakeGrader)(nil)

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	grader := &FakeGrader{}

	app := newWithDependencies(store, mockClock, mockRandom, challenge.DefaultConfig(), grader, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Grader:     grader,
	}
}
