package report

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bindnseq/match"
)

// WriteMatches writes results to path in the given layout, one row per
// result in order. It returns the checksum of the uncompressed content.
func WriteMatches(ctx context.Context, path string, results []match.Result, layout Layout) (uint64, error) {
	return create(ctx, path, func(w io.Writer) error {
		tw := tsv.NewWriter(w)
		if layout == Single {
			tw.WriteString(singleMatchHeader)
		} else {
			tw.WriteString(multiMatchHeader)
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
		var buf []byte
		for _, r := range results {
			tw.WriteString(r.Key)
			tw.WriteInt64(int64(r.Count))
			if layout == Multi {
				tw.WriteString(r.RefID)
			}
			tw.WriteInt64(int64(r.NumMismatches()))
			buf = buf[:0]
			for i, p := range r.Mismatches {
				if i > 0 {
					buf = append(buf, ',')
				}
				buf = strconv.AppendInt(buf, int64(p), 10)
			}
			tw.WriteString(string(buf))
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

// ReadMatches reads a file written by WriteMatches. The layout is detected
// from the header line. Results read from a single-layout file have an empty
// RefID.
func ReadMatches(ctx context.Context, path string) (results []match.Result, layout Layout, err error) {
	err = open(ctx, path, func(r io.Reader) error {
		br := bufio.NewReader(r)
		header, err := readHeader(br)
		if err != nil {
			return err
		}
		switch header {
		case singleMatchHeader:
			layout = Single
		case multiMatchHeader:
			layout = Multi
		default:
			return errors.E(errors.Integrity, "report: unexpected header", header)
		}
		ncols := 5
		if layout == Single {
			ncols = 4
		}
		return readRows(br, ncols, func(fields []string) error {
			res := match.Result{Key: fields[0]}
			if layout == Multi {
				res.RefID, fields = fields[2], append(fields[:2:2], fields[3:]...)
			}
			var err error
			if res.Count, err = parseCount(fields[1]); err != nil {
				return err
			}
			num, err := parseCount(fields[2])
			if err != nil {
				return err
			}
			if res.Mismatches, err = parsePositions(fields[3]); err != nil {
				return err
			}
			if res.NumMismatches() != num {
				return errors.E(errors.Integrity, "report: num_mismatches disagrees with mismatches for", res.Key)
			}
			results = append(results, res)
			return nil
		})
	})
	return
}

func parsePositions(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	pos := make([]int, len(fields))
	for i, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.E(errors.Integrity, "report: bad mismatch position", s)
		}
		pos[i] = p
	}
	return pos, nil
}
