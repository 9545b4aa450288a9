package match

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bindnseq/umi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(t *testing.T, refs References, start, end int) *Matcher {
	m, err := NewMatcher(refs, start, end)
	require.NoError(t, err)
	return m
}

func TestMatchExact(t *testing.T) {
	m := newMatcher(t, References{{"L1", "AAAA"}, {"L2", "AAAT"}}, 0, 4)
	r, err := m.Match("AAAT")
	require.NoError(t, err)
	assert.Equal(t, "L2", r.RefID)
	assert.Equal(t, 0, r.NumMismatches())
	assert.Empty(t, r.Mismatches)
}

func TestMatchTieBreak(t *testing.T) {
	refs := References{{"L1", "AATT"}, {"L2", "ATAT"}}
	for i := 0; i < 10; i++ {
		r, err := newMatcher(t, refs, 0, 4).Match("AAAA")
		require.NoError(t, err)
		assert.Equal(t, "L1", r.RefID)
		assert.Equal(t, []int{2, 3}, r.Mismatches)
	}
	// Reversing the reference order reverses the winner.
	r, err := newMatcher(t, References{refs[1], refs[0]}, 0, 4).Match("AAAA")
	require.NoError(t, err)
	assert.Equal(t, "L2", r.RefID)
	assert.Equal(t, []int{1, 3}, r.Mismatches)
}

func TestMatchWindow(t *testing.T) {
	// Only [2, 6) of each reference is compared.
	m := newMatcher(t, References{{"L1", "GGACGTGG"}, {"L2", "TTACCTTT"}}, 2, 6)
	assert.Equal(t, 4, m.Width())
	r, err := m.Match("ACCA")
	require.NoError(t, err)
	assert.Equal(t, "L2", r.RefID)
	assert.Equal(t, []int{3}, r.Mismatches)
}

// singleMismatches is a direct single-reference comparison.
func singleMismatches(ref, key string) []int {
	var mm []int
	for i := 0; i < len(ref); i++ {
		if ref[i] != key[i] {
			mm = append(mm, i)
		}
	}
	return mm
}

func TestMatchSingleReference(t *testing.T) {
	const ref = "NNNNNNGAGTGGCAGATATAGCCTGGTGGTTCAGGCAGATCGGAAGAGCAC"
	m := newMatcher(t, References{{"ref", ref}}, 12, 36)
	rnd := rand.New(rand.NewSource(1))
	const bases = "ACGTN"
	for i := 0; i < 200; i++ {
		key := []byte(ref[12:36])
		for j := rnd.Intn(6); j > 0; j-- {
			key[rnd.Intn(len(key))] = bases[rnd.Intn(len(bases))]
		}
		r, err := m.Match(string(key))
		require.NoError(t, err)
		assert.Equal(t, "ref", r.RefID)
		assert.Equal(t, singleMismatches(ref[12:36], string(key)), r.Mismatches)
	}
}

func TestMatchShortKey(t *testing.T) {
	m := newMatcher(t, References{{"L1", "AAAA"}, {"L2", "CCAA"}}, 0, 4)
	r, err := m.Match("CC")
	require.NoError(t, err)
	assert.Equal(t, "L2", r.RefID)
	assert.Equal(t, []int{2, 3}, r.Mismatches)

	r, err = m.Match("")
	require.NoError(t, err)
	assert.Equal(t, "L1", r.RefID)
	assert.Equal(t, []int{0, 1, 2, 3}, r.Mismatches)

	_, err = m.Match("AAAAA")
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestNewMatcherErrors(t *testing.T) {
	tests := []struct {
		refs       References
		start, end int
	}{
		{nil, 0, 4},
		{References{}, 0, 4},
		{References{{"L1", "AAAA"}}, 2, 2},
		{References{{"L1", "AAAA"}}, -1, 2},
		{References{{"L1", "AAAA"}}, 0, 5},
		{References{{"L1", "AAAA"}, {"L2", "AAA"}}, 0, 4},
		{References{{"", "AAAA"}}, 0, 4},
		{References{{"L1", "AAAA"}, {"L1", "CCCC"}}, 0, 4},
	}
	for _, test := range tests {
		_, err := NewMatcher(test.refs, test.start, test.end)
		require.Error(t, err, "%+v", test)
		assert.True(t, errors.Is(errors.Invalid, err), "%+v: %v", test, err)
	}
}

func TestMatchAll(t *testing.T) {
	m := newMatcher(t, References{{"L1", "AAAA"}, {"L2", "AAAT"}}, 0, 4)
	tally := umi.NewTally()
	for _, k := range []string{"AAAT", "CAAA", "AAAT", "AAAA"} {
		tally.Add(k)
	}
	results, err := m.MatchAll(context.Background(), tally, 1)
	require.NoError(t, err)
	assert.Equal(t, []Result{
		{Key: "AAAT", Count: 2, RefID: "L2"},
		{Key: "CAAA", Count: 1, RefID: "L1", Mismatches: []int{0}},
		{Key: "AAAA", Count: 1, RefID: "L1"},
	}, results)
}

func TestMatchAllEmpty(t *testing.T) {
	m := newMatcher(t, References{{"L1", "AAAA"}}, 0, 4)
	results, err := m.MatchAll(context.Background(), umi.NewTally(), 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatchAllParallelismInvariant(t *testing.T) {
	refs := References{{"L1", "ACGTACGTAC"}, {"L2", "TTGTACGTAA"}, {"L3", "ACGTTTTTAC"}}
	m := newMatcher(t, refs, 0, 10)
	rnd := rand.New(rand.NewSource(2))
	tally := umi.NewTally()
	for i := 0; i < 5000; i++ {
		b := make([]byte, 10)
		for j := range b {
			b[j] = "ACGT"[rnd.Intn(4)]
		}
		tally.Add(string(b))
	}
	want, err := m.MatchAll(context.Background(), tally, 1)
	require.NoError(t, err)
	for _, p := range []int{0, 2, 3, 16} {
		got, err := m.MatchAll(context.Background(), tally, p)
		require.NoError(t, err)
		assert.Equal(t, want, got, fmt.Sprintf("parallelism %d", p))
	}
	for i, k := range tally.Keys() {
		assert.Equal(t, k, want[i].Key)
		assert.Equal(t, tally.Count(k), want[i].Count)
	}
}

func TestMatchAllCanceled(t *testing.T) {
	m := newMatcher(t, References{{"L1", "AAAA"}}, 0, 4)
	tally := umi.NewTally()
	tally.Add("AAAA")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.MatchAll(ctx, tally, 1)
	assert.Error(t, err)
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []string{"L4", "L3"}, References{{"L4", "A"}, {"L3", "C"}}.IDs())
}
