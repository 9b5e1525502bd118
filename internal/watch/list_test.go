package watch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_InitiallyEmpty(t *testing.T) {
	l := New()
	assert.Empty(t, l.Snapshot())
	assert.Equal(t, 0, l.Len())
}

func TestList_ReplaceDropsDuplicatesAndEmpty(t *testing.T) {
	l := New()
	l.Replace([]string{"nginx", "", "sshd", "nginx"})

	assert.Equal(t, []string{"nginx", "sshd"}, l.Snapshot())
	assert.Equal(t, 2, l.Len())
}

func TestList_ReplaceIsWholesale(t *testing.T) {
	l := New()
	l.Replace([]string{"a", "b"})
	l.Replace([]string{"c"})
	assert.Equal(t, []string{"c"}, l.Snapshot())

	l.Replace(nil)
	assert.Empty(t, l.Snapshot())
}

func TestList_SnapshotIsCopy(t *testing.T) {
	l := New()
	input := []string{"nginx"}
	l.Replace(input)
	input[0] = "mutated"

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	snap[0] = "changed"

	assert.Equal(t, []string{"nginx"}, l.Snapshot())
}

func TestList_ConcurrentReplaceAndSnapshot(t *testing.T) {
	l := New()
	lists := [][]string{{"a", "b"}, {"c", "d", "e"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				l.Replace(lists[(i+j)%2])
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := l.Snapshot()
				// Readers only ever see one of the complete lists.
				if len(snap) != 0 && len(snap) != 2 && len(snap) != 3 {
					t.Errorf("partial snapshot: %v", snap)
				}
			}
		}()
	}
	wg.Wait()
}
