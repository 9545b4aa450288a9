package umi

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bindnseq/encoding/fastq"
)

// progressInterval is the number of reads between progress log messages.
const progressInterval = 1024 * 1024

// ReadScanner is a stream of FASTQ reads, such as *fastq.Scanner.
type ReadScanner interface {
	Scan(r *fastq.Read) bool
	Err() error
}

// Counter deduplicates a stream of reads by UMI. It maintains two tallies:
// every UMI observed, and the target sequence of every read that was the
// first to carry its UMI. A Counter is not threadsafe.
type Counter struct {
	ex   Extractor
	seen map[string]struct{}
	umis *Tally
	seqs *Tally

	records, duplicates int
}

// NewCounter creates a Counter that extracts keys with ex.
func NewCounter(ex Extractor) *Counter {
	return &Counter{
		ex:   ex,
		seen: map[string]struct{}{},
		umis: NewTally(),
		seqs: NewTally(),
	}
}

// First reports whether umi is being observed for the first time, and marks
// it as seen.
func (c *Counter) First(umi string) bool {
	if _, ok := c.seen[umi]; ok {
		return false
	}
	c.seen[umi] = struct{}{}
	return true
}

// Observe processes one read. It returns true if the read was the first with
// its UMI, in which case its target sequence was counted.
func (c *Counter) Observe(r *fastq.Read) (bool, error) {
	umi, err := c.ex.UMI(r.ID)
	if err != nil {
		return false, errors.E(err, fmt.Sprintf("read %d", c.records+1))
	}
	c.records++
	first := c.First(umi)
	c.umis.Add(umi)
	if !first {
		c.duplicates++
		return false, nil
	}
	seq, err := c.ex.Seq(r.Seq)
	if err != nil {
		return false, errors.E(err, fmt.Sprintf("read %d", c.records))
	}
	c.seqs.Add(seq)
	return true, nil
}

// Count drains s, observing every read. It stops at the first error, or when
// ctx is canceled. The tallies are incomplete after an error and should be
// discarded.
func (c *Counter) Count(ctx context.Context, s ReadScanner) error {
	var r fastq.Read
	for s.Scan(&r) {
		if _, err := c.Observe(&r); err != nil {
			return err
		}
		if c.records%progressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.E(err, "umi: counting canceled")
			}
			log.Printf("umi: %s reads, %s distinct UMIs, %s duplicates",
				humanize.Comma(int64(c.records)), humanize.Comma(int64(c.umis.Len())), humanize.Comma(int64(c.duplicates)))
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

// UMIs returns the tally of UMI keys. Its total equals Records().
func (c *Counter) UMIs() *Tally { return c.umis }

// Sequences returns the tally of target sequences of non-duplicate reads.
func (c *Counter) Sequences() *Tally { return c.seqs }

// Records returns the number of reads observed.
func (c *Counter) Records() int { return c.records }

// Duplicates returns the number of reads whose UMI had already been seen.
func (c *Counter) Duplicates() int { return c.duplicates }
