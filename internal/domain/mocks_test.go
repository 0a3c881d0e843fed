package domain

import (
	"context"
	"sort"
	"sync"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, args ...interface{})  {}
func (m *mockLogger) Error(msg string, args ...interface{}) {}
func (m *mockLogger) Debug(msg string, args ...interface{}) {}
func (m *mockLogger) Warn(msg string, args ...interface{})  {}

// mockTriggerRepo is an in-memory TriggerRepository
type mockTriggerRepo struct {
	mu       sync.Mutex
	triggers map[string]*Trigger
	findErr  error
	calls    int
}

func newMockTriggerRepo(triggers ...*Trigger) *mockTriggerRepo {
	m := &mockTriggerRepo{triggers: make(map[string]*Trigger)}
	for _, t := range triggers {
		m.triggers[t.Key] = t
	}
	return m
}

func (m *mockTriggerRepo) Insert(ctx context.Context, trigger *Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.triggers[trigger.Key]; ok {
		return ErrTriggerExists
	}
	m.triggers[trigger.Key] = trigger
	return nil
}

func (m *mockTriggerRepo) FindByKey(ctx context.Context, key string) (*Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	t, ok := m.triggers[key]
	if !ok {
		return nil, ErrTriggerNotFound
	}
	return t, nil
}

func (m *mockTriggerRepo) FindByCategory(ctx context.Context, category string) ([]*Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Trigger
	for _, t := range m.triggers {
		if t.Category != nil && *t.Category == category {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *mockTriggerRepo) FindByKind(ctx context.Context, kind TriggerKind) ([]*Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Trigger
	for _, t := range m.triggers {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *mockTriggerRepo) Delete(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.triggers[key]; !ok {
		return false, nil
	}
	delete(m.triggers, key)
	return true, nil
}

func (m *mockTriggerRepo) ListAll(ctx context.Context) ([]*Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Trigger, 0, len(m.triggers))
	for _, t := range m.triggers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *mockTriggerRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggers), nil
}

func strPtr(s string) *string { return &s }
