package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bindnseq/umi"
)

// TallyEntry is one row of a UMI tally file.
type TallyEntry struct {
	Key   string
	Count int
}

// WriteTally writes tally to path, one row per key in the tally's key order.
// It returns the checksum of the uncompressed content.
func WriteTally(ctx context.Context, path string, tally *umi.Tally) (uint64, error) {
	return create(ctx, path, func(w io.Writer) error {
		tw := tsv.NewWriter(w)
		tw.WriteString(tallyHeader)
		if err := tw.EndLine(); err != nil {
			return err
		}
		for _, k := range tally.Keys() {
			tw.WriteString(k)
			tw.WriteInt64(int64(tally.Count(k)))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

// ReadTally reads a file written by WriteTally.
func ReadTally(ctx context.Context, path string) ([]TallyEntry, error) {
	var entries []TallyEntry
	err := open(ctx, path, func(r io.Reader) error {
		br := bufio.NewReader(r)
		if err := expectHeader(br, tallyHeader); err != nil {
			return err
		}
		return readRows(br, 2, func(fields []string) error {
			n, err := parseCount(fields[1])
			if err != nil {
				return err
			}
			entries = append(entries, TallyEntry{Key: fields[0], Count: n})
			return nil
		})
	})
	return entries, err
}

// readRows calls fn with the fields of each remaining line of r. Lines are
// split on tabs only; fields are taken verbatim, without csv quoting rules.
// Every line must have exactly n fields.
func readRows(r *bufio.Reader, n int, fn func(fields []string) error) error {
	for lineno := 2; ; lineno++ {
		line, readErr := r.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if line == "" && readErr == io.EOF {
			return nil
		}
		fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(fields) != n {
			return errors.E(errors.Integrity, fmt.Sprintf("report: line %d has %d fields, want %d", lineno, len(fields), n))
		}
		if err := fn(fields); err != nil {
			return errors.E(err, fmt.Sprintf("report: line %d", lineno))
		}
		if readErr == io.EOF {
			return nil
		}
	}
}

func parseCount(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.E(errors.Integrity, "report: bad count", s)
	}
	return int(n), nil
}

func readHeader(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", errors.E(errors.Integrity, "report: missing header line")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func expectHeader(r *bufio.Reader, want string) error {
	got, err := readHeader(r)
	if err != nil {
		return err
	}
	if got != want {
		return errors.E(errors.Integrity, "report: unexpected header", got)
	}
	return nil
}
