package viewmodel

import (
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []domain.Record {
	return []domain.Record{
		{ID: 1, Title: "Ada", Name: "ada.docx", Size: 10},
		{ID: 2, Title: "Grace"},
		{ID: 3, Title: "Linus"},
	}
}

func TestStore_StartsEmpty(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 0, s.Len())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	in := sample()
	s.Replace(in)

	in[0].Title = "changed by caller"
	snap := s.Snapshot()
	snap[1].Title = "changed by reader"

	assert.Equal(t, sample(), s.Snapshot())
}

func TestStore_Append(t *testing.T) {
	s := NewStore()
	s.Replace(sample())
	s.Append(domain.Record{ID: 9, Title: "New"})

	snap := s.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, domain.Record{ID: 9, Title: "New"}, snap[3])
}

func TestStore_SetTitle(t *testing.T) {
	s := NewStore()
	s.Replace(append(sample(), domain.Record{ID: 2, Title: "Duplicate"}))

	assert.True(t, s.SetTitle(2, "Hopper"))

	snap := s.Snapshot()
	assert.Equal(t, []domain.Record{
		{ID: 1, Title: "Ada", Name: "ada.docx", Size: 10},
		{ID: 2, Title: "Hopper"},
		{ID: 3, Title: "Linus"},
		{ID: 2, Title: "Duplicate"},
	}, snap)

	assert.False(t, s.SetTitle(42, "Nobody"))
}

func TestStore_SetTitleDoesNotAliasEarlierSnapshots(t *testing.T) {
	s := NewStore()
	s.Replace(sample())

	var seen [][]domain.Record
	s.Subscribe(domain.ObserverFunc(func(r []domain.Record) { seen = append(seen, r) }))

	s.SetTitle(1, "first")
	s.SetTitle(1, "second")

	require.Len(t, seen, 2)
	assert.Equal(t, "first", seen[0][0].Title)
	assert.Equal(t, "second", seen[1][0].Title)
}

func TestStore_RemoveDropsEveryMatch(t *testing.T) {
	s := NewStore()
	s.Replace(append(sample(), domain.Record{ID: 2, Title: "Duplicate"}))

	assert.Equal(t, 2, s.Remove(2))
	assert.Equal(t, []domain.Record{
		{ID: 1, Title: "Ada", Name: "ada.docx", Size: 10},
		{ID: 3, Title: "Linus"},
	}, s.Snapshot())

	assert.Equal(t, 0, s.Remove(2))
}

func TestStore_ObserversSeeEveryMutationInOrder(t *testing.T) {
	s := NewStore()

	var lens []int
	unsubscribe := s.Subscribe(domain.ObserverFunc(func(r []domain.Record) {
		lens = append(lens, len(r))
	}))

	s.Replace(sample())
	s.Append(domain.Record{ID: 4, Title: "D"})
	s.SetTitle(4, "E")
	s.Remove(1)
	// No-ops do not notify
	s.SetTitle(99, "x")
	s.Remove(99)

	assert.Equal(t, []int{3, 4, 4, 3}, lens)

	unsubscribe()
	unsubscribe()
	s.Append(domain.Record{ID: 5})
	assert.Len(t, lens, 4)
}

func TestStore_ObserverCanReadStore(t *testing.T) {
	s := NewStore()
	var inner int
	s.Subscribe(domain.ObserverFunc(func([]domain.Record) {
		inner = s.Len()
	}))

	s.Replace(sample())
	assert.Equal(t, 3, inner)
}

func TestStore_ObserverReadsWhileAnotherMutationWaits(t *testing.T) {
	s := NewStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var seen []int
	s.Subscribe(domain.ObserverFunc(func([]domain.Record) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
		}
		seen = append(seen, len(s.Snapshot()))
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Append(domain.Record{ID: 1})
	}()
	<-entered

	second := make(chan struct{})
	go func() {
		defer close(second)
		s.Append(domain.Record{ID: 2})
	}()
	time.Sleep(50 * time.Millisecond) // let the second mutation block on the store
	close(release)

	for _, ch := range []chan struct{}{done, second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("mutation did not complete while its observer read the store")
		}
	}
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(domain.ObserverFunc(func([]domain.Record) { calls++ }))
	s.Replace(sample())

	s.Reset()
	assert.Empty(t, s.Snapshot())

	s.Append(domain.Record{ID: 1})
	assert.Equal(t, 1, calls)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := NewStore()

	var mu sync.Mutex
	var last []domain.Record
	s.Subscribe(domain.ObserverFunc(func(r []domain.Record) {
		mu.Lock()
		last = r
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Append(domain.Record{ID: id, Title: "t"})
			s.SetTitle(id, "u")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s.Snapshot(), last)
}
