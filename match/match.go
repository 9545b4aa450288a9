// Package match scores observed target sequences against a set of named
// reference sequences by Hamming distance over a fixed window.
package match

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bindnseq/umi"
	"github.com/grailbio/bindnseq/util"
)

// Reference is a named reference sequence.
type Reference struct {
	ID  string
	Seq string
}

// References is an ordered reference set. The order is significant: when
// several references are equally close to a sequence, the first one wins.
type References []Reference

// IDs returns the reference ids in order.
func (refs References) IDs() []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// Result is the best reference match of one distinct target sequence.
type Result struct {
	// Key is the observed target sequence.
	Key string
	// Count is the number of non-duplicate reads carrying Key.
	Count int
	// RefID is the id of the closest reference.
	RefID string
	// Mismatches lists the 0-based window offsets at which Key differs from
	// the closest reference, in increasing order.
	Mismatches []int
}

// NumMismatches returns the Hamming distance to the closest reference.
func (r Result) NumMismatches() int { return len(r.Mismatches) }

// Matcher compares sequences against the [start, end) window of every
// reference.
type Matcher struct {
	ids     []string
	targets []string
	width   int
}

// NewMatcher creates a Matcher over the [start, end) window of refs. It
// fails with an errors.Invalid error if refs is empty, if a reference id is
// empty or repeated, or if a reference does not cover the window.
func NewMatcher(refs References, start, end int) (*Matcher, error) {
	if len(refs) == 0 {
		return nil, errors.E(errors.Invalid, "match: empty reference set")
	}
	if start < 0 || end <= start {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("match: invalid window [%d, %d)", start, end))
	}
	m := &Matcher{width: end - start}
	seen := map[string]bool{}
	for _, r := range refs {
		if r.ID == "" {
			return nil, errors.E(errors.Invalid, "match: empty reference id")
		}
		if seen[r.ID] {
			return nil, errors.E(errors.Invalid, "match: duplicate reference id", r.ID)
		}
		seen[r.ID] = true
		if len(r.Seq) < end {
			return nil, errors.E(errors.Invalid, fmt.Sprintf(
				"match: reference %s has length %d, shorter than the read window [%d, %d)",
				r.ID, len(r.Seq), start, end))
		}
		m.ids = append(m.ids, r.ID)
		m.targets = append(m.targets, r.Seq[start:end])
	}
	return m, nil
}

// Width returns the window length.
func (m *Matcher) Width() int { return m.width }

// Match finds the reference closest to key. A key longer than the window
// means the read window and the reference window disagree, and is an
// errors.Invalid error. A shorter key comes from a truncated read; the
// window positions it does not cover count as mismatches.
func (m *Matcher) Match(key string) (Result, error) {
	if len(key) > m.width {
		return Result{}, errors.E(errors.Invalid, fmt.Sprintf(
			"match: sequence %q has length %d, reference window has length %d", key, len(key), m.width))
	}
	var best Result
	for i, target := range m.targets {
		mm := util.Mismatches(target[:len(key)], key)
		for p := len(key); p < m.width; p++ {
			mm = append(mm, p)
		}
		if i == 0 || len(mm) < len(best.Mismatches) {
			best.RefID, best.Mismatches = m.ids[i], mm
		}
	}
	best.Key = key
	return best, nil
}

// shardSize is the minimum number of keys scored by one traverse job.
const shardSize = 1024

// MatchAll scores every distinct key of the tally. Results are in the
// tally's key order. Keys are scored in up to parallelism concurrent shards;
// parallelism <= 0 means runtime.NumCPU(). The result does not depend on
// parallelism.
func (m *Matcher) MatchAll(ctx context.Context, tally *umi.Tally, parallelism int) ([]Result, error) {
	keys := tally.Keys()
	results := make([]Result, len(keys))
	if len(keys) == 0 {
		return results, nil
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	nShards := (len(keys) + shardSize - 1) / shardSize
	if nShards > parallelism {
		nShards = parallelism
	}
	perShard := (len(keys) + nShards - 1) / nShards
	err := traverse.Each(nShards, func(shard int) error {
		start, end := shard*perShard, (shard+1)*perShard
		if end > len(keys) {
			end = len(keys)
		}
		for i := start; i < end; i++ {
			if (i-start)%shardSize == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			r, err := m.Match(keys[i])
			if err != nil {
				return err
			}
			r.Count = tally.Count(keys[i])
			results[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
