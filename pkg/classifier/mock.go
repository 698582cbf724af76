package classifier

import (
	"context"
	"sync/atomic"
)

// Mock implements Classifier for testing.
type Mock struct {
	// ClassifyFunc is called when Classify is invoked.
	ClassifyFunc func(ctx context.Context, jpeg []byte) (Label, error)

	// NameValue overrides Name; defaults to "mock".
	NameValue string

	calls atomic.Int64
}

// NewMock returns a mock that always answers with the given label.
func NewMock(name string, confidence float64) *Mock {
	return &Mock{
		ClassifyFunc: func(context.Context, []byte) (Label, error) {
			return Label{Name: name, Confidence: confidence}, nil
		},
	}
}

// Classify implements Classifier.
func (m *Mock) Classify(ctx context.Context, jpeg []byte) (Label, error) {
	m.calls.Add(1)
	if m.ClassifyFunc == nil {
		return Label{}, ErrEmptyResponse
	}
	return m.ClassifyFunc(ctx, jpeg)
}

// Name implements Classifier.
func (m *Mock) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Calls returns how many times Classify was invoked.
func (m *Mock) Calls() int {
	return int(m.calls.Load())
}
