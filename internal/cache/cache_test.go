package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var listQuery = domain.Query{
	Collection: "EmployeeDetails",
	Select:     []string{"Id", "Title", "FileLeafRef", "File/Length"},
	Expand:     []string{"File"},
}

type countingRecorder struct {
	results map[string]int
}

func (r *countingRecorder) ObserveCache(result string) {
	if r.results == nil {
		r.results = make(map[string]int)
	}
	r.results[result]++
}

func newSessionCache(t *testing.T, client fetcher, opts Options) *ReadThrough {
	t.Helper()
	c, err := New(client, opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestReadThrough_SecondReadIsServedFromCache(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"value":[{"Id":1,"Title":"A"}]}`)

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return(payload, nil).Once()

	rec := &countingRecorder{}
	c := newSessionCache(t, client, Options{Recorder: rec})

	first, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)
	second, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)

	assert.Equal(t, payload, first)
	assert.Equal(t, first, second)
	client.AssertNumberOfCalls(t, "Get", 1)
	assert.Equal(t, map[string]int{"miss": 1, "hit": 1}, rec.results)
}

func TestReadThrough_ReturnedBytesAreIsolated(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte(`{"value":[]}`), nil).Once()

	c := newSessionCache(t, client, Options{})

	first, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)
	first[0] = 'X'

	second, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)
	assert.Equal(t, `{"value":[]}`, string(second))
}

func TestReadThrough_KeysAreDistinctPerShape(t *testing.T) {
	ctx := context.Background()
	byID := listQuery.ByID(3)
	filtered := listQuery
	filtered.Filter = "Title eq 'A'"

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("all"), nil).Once()
	client.On("Get", ctx, byID).Return([]byte("three"), nil).Once()
	client.On("Get", ctx, filtered).Return([]byte("filtered"), nil).Once()

	c := newSessionCache(t, client, Options{})

	for i := 0; i < 2; i++ {
		all, err := c.Fetch(ctx, listQuery)
		require.NoError(t, err)
		assert.Equal(t, "all", string(all))

		one, err := c.Fetch(ctx, byID)
		require.NoError(t, err)
		assert.Equal(t, "three", string(one))

		f, err := c.Fetch(ctx, filtered)
		require.NoError(t, err)
		assert.Equal(t, "filtered", string(f))
	}

	client.AssertExpectations(t)
	assert.Equal(t, 3, c.Len())
}

func TestReadThrough_FailuresAreNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return(nil, boom).Once()
	client.On("Get", ctx, listQuery).Return([]byte("ok"), nil).Once()

	c := newSessionCache(t, client, Options{})

	_, err := c.Fetch(ctx, listQuery)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	data, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	client.AssertNumberOfCalls(t, "Get", 2)
}

func TestReadThrough_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("v1"), nil).Once()
	client.On("Get", ctx, listQuery).Return([]byte("v2"), nil).Once()

	c := newSessionCache(t, client, Options{
		TTL: 5 * time.Minute,
		Now: func() time.Time { return now },
	})

	data, _ := c.Fetch(ctx, listQuery)
	assert.Equal(t, "v1", string(data))

	now = now.Add(4 * time.Minute)
	data, _ = c.Fetch(ctx, listQuery)
	assert.Equal(t, "v1", string(data))

	now = now.Add(time.Minute)
	data, _ = c.Fetch(ctx, listQuery)
	assert.Equal(t, "v2", string(data))
	client.AssertExpectations(t)
}

func TestReadThrough_Invalidate(t *testing.T) {
	ctx := context.Background()
	other := domain.Query{Collection: "Departments", Select: []string{"Id"}}

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("before"), nil).Once()
	client.On("Get", ctx, listQuery).Return([]byte("after"), nil).Once()
	client.On("Get", ctx, listQuery.ByID(1)).Return([]byte("one"), nil).Once()
	client.On("Get", ctx, other).Return([]byte("dept"), nil).Once()

	c := newSessionCache(t, client, Options{})

	c.Fetch(ctx, listQuery)
	c.Fetch(ctx, listQuery.ByID(1))
	c.Fetch(ctx, other)
	require.Equal(t, 3, c.Len())

	c.Invalidate("employeedetails")
	assert.Equal(t, 1, c.Len())

	data, err := c.Fetch(ctx, listQuery)
	require.NoError(t, err)
	assert.Equal(t, "after", string(data))

	data, err = c.Fetch(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "dept", string(data))
	client.AssertExpectations(t)
}

func TestReadThrough_StoreNoneBypasses(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("x"), nil).Twice()

	rec := &countingRecorder{}
	c := newSessionCache(t, client, Options{Store: StoreNone, Recorder: rec})

	c.Fetch(ctx, listQuery)
	c.Fetch(ctx, listQuery)

	client.AssertNumberOfCalls(t, "Get", 2)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, rec.results["bypass"])
}

func TestReadThrough_CloseEndsSession(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("x"), nil).Once()

	c, err := New(client, Options{})
	require.NoError(t, err)
	c.Fetch(ctx, listQuery)
	require.Equal(t, 1, c.Len())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestReadThrough_LocalStoreSurvivesSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("persisted"), nil).Once()

	first, err := New(client, Options{Store: StoreLocal, Dir: dir, Scope: "https://contoso.example/sites/hr"})
	require.NoError(t, err)
	_, err = first.Fetch(ctx, listQuery)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(client, Options{Store: StoreLocal, Dir: dir, Scope: "https://contoso.example/sites/hr/"})
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Fetch(ctx, listQuery)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(data))
	client.AssertNumberOfCalls(t, "Get", 1)
}

func TestReadThrough_LocalStoreIsPartitionedBySite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, listQuery).Return([]byte("x"), nil).Twice()

	a, err := New(client, Options{Store: StoreLocal, Dir: dir, Scope: "https://a.example"})
	require.NoError(t, err)
	a.Fetch(ctx, listQuery)
	require.NoError(t, a.Close())

	b, err := New(client, Options{Store: StoreLocal, Dir: dir, Scope: "https://b.example"})
	require.NoError(t, err)
	defer b.Close()
	b.Fetch(ctx, listQuery)

	client.AssertNumberOfCalls(t, "Get", 2)
}

func TestReadThrough_LocalInvalidateAndClear(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockCollectionClient)
	client.On("Get", ctx, mock.Anything).Return([]byte("x"), nil)

	c := newSessionCache(t, client, Options{Store: StoreLocal, Dir: t.TempDir()})

	c.Fetch(ctx, listQuery)
	c.Fetch(ctx, listQuery.ByID(1))
	c.Fetch(ctx, listQuery.ByID(2))
	c.Fetch(ctx, domain.Query{Collection: "Departments"})
	require.Equal(t, 4, c.Len())

	c.Invalidate("EmployeeDetails")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)

	_, err = New(new(mocks.MockCollectionClient), Options{Store: StoreLocal})
	assert.Error(t, err)

	_, err = New(new(mocks.MockCollectionClient), Options{Store: "redis"})
	assert.Error(t, err)
}

func TestParseStore(t *testing.T) {
	for in, want := range map[string]Store{"": StoreSession, "session": StoreSession, "local": StoreLocal, "none": StoreNone} {
		got, err := ParseStore(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStore("disk")
	assert.Error(t, err)
}
