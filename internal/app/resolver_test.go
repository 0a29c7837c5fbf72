package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/app"
	"reviewflow/internal/domain"
)

type fakeCatalog struct {
	subjects map[string]domain.Subject
	calls    atomic.Int32
	gate     chan struct{}
}

func (f *fakeCatalog) FetchSubject(ctx context.Context, kind domain.SubjectKind, id string) (domain.Subject, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	s, ok := f.subjects[string(kind)+":"+id]
	if !ok {
		return domain.Subject{}, domain.ErrNotFound
	}
	return s, nil
}

func TestResolve_Property(t *testing.T) {
	cat := &fakeCatalog{subjects: map[string]domain.Subject{
		// presentation only; identity comes from the entry
		"property:p-1": {Kind: domain.KindService, ID: "other", Name: "Harbour Loft"},
	}}
	r := app.NewSubjectResolver(cat)

	res, err := r.Resolve(context.Background(), app.Entry{PropertyID: " p-1 "})
	require.NoError(t, err)
	require.NotNil(t, res.Subject)
	assert.False(t, res.NeedsChoice)
	assert.Equal(t, domain.Subject{Kind: domain.KindProperty, ID: "p-1", Name: "Harbour Loft"}, *res.Subject)
}

func TestResolve_Errors(t *testing.T) {
	r := app.NewSubjectResolver(&fakeCatalog{})

	_, err := r.Resolve(context.Background(), app.Entry{PropertyID: "p-1", ProviderID: "sp-1"})
	assert.ErrorIs(t, err, domain.ErrConflictingEntry)

	_, err = r.Resolve(context.Background(), app.Entry{ProviderID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_AnyCatalogFailureIsSubjectNotFound(t *testing.T) {
	cat := failingCatalog{err: errors.New("timeout")}
	_, err := app.NewSubjectResolver(cat).Resolve(context.Background(), app.Entry{PropertyID: "p-1"})
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
	assert.ErrorContains(t, err, "timeout")
}

type failingCatalog struct{ err error }

func (f failingCatalog) FetchSubject(context.Context, domain.SubjectKind, string) (domain.Subject, error) {
	return domain.Subject{}, f.err
}

func TestResolve_GenericEntryNeedsChoice(t *testing.T) {
	cat := &fakeCatalog{}
	r := app.NewSubjectResolver(cat)

	res, err := r.Resolve(context.Background(), app.Entry{PropertyID: "  "})
	require.NoError(t, err)
	assert.True(t, res.NeedsChoice)
	assert.Nil(t, res.Subject)
	assert.Zero(t, cat.calls.Load())

	sub, err := r.ChooseKind(domain.KindProperty)
	require.NoError(t, err)
	assert.Equal(t, domain.Subject{Kind: domain.KindProperty}, sub)

	_, err = r.ChooseKind("boat")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestResolve_ConcurrentLookupsShareOneFetch(t *testing.T) {
	cat := &fakeCatalog{
		subjects: map[string]domain.Subject{"service:sp-1": {Name: "Fix-It", Services: []string{"plumbing"}}},
		gate:     make(chan struct{}),
	}
	r := app.NewSubjectResolver(cat)

	var wg sync.WaitGroup
	results := make([]app.Resolution, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), app.Entry{ProviderID: "sp-1"})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	// let both callers reach the in-flight lookup before it completes
	time.Sleep(50 * time.Millisecond)
	close(cat.gate)
	wg.Wait()

	assert.Equal(t, int32(1), cat.calls.Load())
	require.NotNil(t, results[0].Subject)
	require.NotNil(t, results[1].Subject)
	results[0].Subject.Services[0] = "mutated"
	assert.Equal(t, "plumbing", results[1].Subject.Services[0])
}

// slowCatalog blocks until released and records whether its ctx was already done.
type slowCatalog struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (c *slowCatalog) FetchSubject(ctx context.Context, kind domain.SubjectKind, id string) (domain.Subject, error) {
	close(c.started)
	<-c.release
	c.ctxErr <- ctx.Err()
	return domain.Subject{Name: "Fix-It"}, nil
}

func TestResolve_CallerCancelDoesNotCancelSharedFetch(t *testing.T) {
	cat := &slowCatalog{started: make(chan struct{}), release: make(chan struct{}), ctxErr: make(chan error, 1)}
	r := app.NewSubjectResolver(cat)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, app.Entry{ProviderID: "sp-1"})
		done <- err
	}()

	<-cat.started
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrSubjectNotFound)

	close(cat.release)
	assert.NoError(t, <-cat.ctxErr, "shared fetch must not see the caller's cancellation")
}
