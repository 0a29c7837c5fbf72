package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/domain"
)

type stubClient struct {
	props, providers map[string]map[string]any
	calls            int
}

func (c *stubClient) GetProperty(_ context.Context, id string) (map[string]any, error) {
	c.calls++
	p, ok := c.props[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (c *stubClient) GetProvider(_ context.Context, id string) (map[string]any, error) {
	c.calls++
	p, ok := c.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// jsonCache round-trips values through JSON like the Redis adapter does.
type jsonCache map[string][]byte

func (c jsonCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c jsonCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	c[key] = b
	return err
}

func (c jsonCache) Del(_ context.Context, key string) error {
	delete(c, key)
	return nil
}

func TestMapSubject_Property(t *testing.T) {
	s := mapSubject(domain.KindProperty, "p-1", map[string]any{
		"hotel_name": " Harbour Loft ",
		"address":    map[string]any{"city": "Lisbon", "country": "PT"},
		"images":     []any{map[string]any{"url": "https://img/1.jpg"}, "https://img/2.jpg"},
	})
	assert.Equal(t, domain.Subject{
		Kind:   domain.KindProperty,
		ID:     "p-1",
		Name:   "Harbour Loft",
		Image:  "https://img/1.jpg",
		Locale: "Lisbon, PT",
	}, s)
}

func TestMapSubject_Service(t *testing.T) {
	s := mapSubject(domain.KindService, "sp-1", map[string]any{
		"business_name": "Sparkle",
		"category":      map[string]any{"name": "Cleaning"},
		"services":      []any{"Deep Cleaning", "Regular Cleaning", "Deep Cleaning"},
	})
	assert.Equal(t, "Sparkle", s.Name)
	assert.Equal(t, "Cleaning", s.Locale)
	assert.Equal(t, []string{"Deep Cleaning", "Regular Cleaning"}, s.Services)
}

func TestCatalogService_CachesHitsNotMisses(t *testing.T) {
	client := &stubClient{providers: map[string]map[string]any{
		"sp-1": {"name": "Sparkle", "services": []any{"Deep Cleaning"}},
	}}
	cache := jsonCache{}
	svc := NewCatalogService(client, cache, time.Minute)
	ctx := context.Background()

	first, err := svc.FetchSubject(ctx, domain.KindService, "sp-1")
	require.NoError(t, err)
	second, err := svc.FetchSubject(ctx, domain.KindService, "sp-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
	assert.Contains(t, cache, "subject:service:sp-1")

	for i := 0; i < 2; i++ {
		_, err = svc.FetchSubject(ctx, domain.KindProperty, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, 3, client.calls)

	require.NoError(t, svc.Forget(ctx, domain.KindService, "sp-1"))
	_, err = svc.FetchSubject(ctx, domain.KindService, "sp-1")
	require.NoError(t, err)
	assert.Equal(t, 4, client.calls)

	_, err = svc.FetchSubject(ctx, "boat", "x")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}
