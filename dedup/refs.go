package dedup

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bindnseq/encoding/fasta"
	"github.com/grailbio/bindnseq/match"
)

type refRow struct {
	ID  string
	Seq string
}

// LoadReferences reads a reference set from path. A file whose first
// non-blank line starts with '>' is parsed as FASTA; anything else as a
// two-column "id<TAB>sequence" table, where lines starting with '#' are
// comments and every other line must have exactly two columns. References keep the order of the file. Parse failures are
// errors.Invalid errors.
func LoadReferences(ctx context.Context, path string) (refs match.References, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open references", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r := bufio.NewReader(in.Reader(ctx))
	isFASTA, err := peekFASTA(r)
	if err != nil {
		return nil, errors.E(err, "read references", path)
	}
	if isFASTA {
		seqs, err := fasta.Read(r)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "references", path)
		}
		for _, s := range seqs {
			refs = append(refs, match.Reference{ID: s.Name, Seq: s.Seq})
		}
		return refs, nil
	}
	tr := tsv.NewReader(r)
	tr.Comment = '#'
	tr.FieldsPerRecord = 2
	for {
		var row refRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err, "references", path)
		}
		ref := match.Reference{ID: strings.TrimSpace(row.ID), Seq: strings.TrimSpace(row.Seq)}
		if ref.ID == "" || ref.Seq == "" {
			return nil, errors.E(errors.Invalid, "empty reference id or sequence in", path)
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, errors.E(errors.Invalid, "no references in", path)
	}
	return refs, nil
}

func peekFASTA(r *bufio.Reader) (bool, error) {
	for n := 1; ; n++ {
		b, err := r.Peek(n)
		if len(b) == n {
			switch b[n-1] {
			case ' ', '\t', '\r', '\n':
				continue
			case '>':
				return true, nil
			default:
				return false, nil
			}
		}
		if err == io.EOF || err == bufio.ErrBufferFull {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}
