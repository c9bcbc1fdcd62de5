// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method. When a field is nil
// the mock falls back to a small in-memory implementation, so most tests
// only override the behavior they care about:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.CountOpenAssignedFn = func(ctx context.Context, userID uuid.UUID) (int, error) {
//	    return 0, errors.New("boom")
//	}
//
// The in-memory defaults are safe for concurrent use.
package mocks
