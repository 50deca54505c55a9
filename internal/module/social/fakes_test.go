package social

import (
	"context"
	"errors"
	"sync"
)

// fakeSession serves relationship pages from memory
type fakeSession struct {
	mu        sync.Mutex
	pages     map[string][]string
	pageErrs  map[string]error
	loginErr  error
	buttons   map[string]bool
	toggleErr map[string]error
	toggled   []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		pages:     map[string][]string{},
		pageErrs:  map[string]error{},
		buttons:   map[string]bool{},
		toggleErr: map[string]error{},
	}
}

func (f *fakeSession) ListPage(_ context.Context, pageURL string) ([]string, error) {
	if err := f.pageErrs[pageURL]; err != nil {
		return nil, err
	}
	return f.pages[pageURL], nil
}

func (f *fakeSession) Login(context.Context, string, string) error {
	return f.loginErr
}

func (f *fakeSession) ToggleFollow(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.toggleErr[username]; err != nil {
		return false, err
	}
	if !f.buttons[username] {
		return false, nil
	}
	f.toggled = append(f.toggled, username)
	return true, nil
}

func (f *fakeSession) Close() error { return nil }

// memoryLedger is an in-memory Ledger
type memoryLedger struct {
	exceptions []string
	unfollowed map[string]bool
	failMark   bool
}

func newMemoryLedger(exceptions ...string) *memoryLedger {
	return &memoryLedger{exceptions: exceptions, unfollowed: map[string]bool{}}
}

func (m *memoryLedger) Exceptions(context.Context) ([]string, error) {
	return m.exceptions, nil
}

func (m *memoryLedger) AddExceptions(_ context.Context, names ...string) error {
	m.exceptions = append(m.exceptions, names...)
	return nil
}

func (m *memoryLedger) IsUnfollowed(_ context.Context, name string) (bool, error) {
	return m.unfollowed[name], nil
}

func (m *memoryLedger) MarkUnfollowed(_ context.Context, name string) error {
	if m.failMark {
		return errors.New("ledger unavailable")
	}
	m.unfollowed[name] = true
	return nil
}
