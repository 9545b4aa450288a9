package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bindnseq/batch"
	"github.com/grailbio/bindnseq/dedup"
	"github.com/grailbio/bindnseq/report"
	"github.com/grailbio/bindnseq/umi"
	"v.io/x/lib/cmdline"
)

// optsFlags are the pipeline flags shared by the dedup and batch commands.
// Window and compression flags override the preset only when given.
type optsFlags struct {
	preset     *string
	references *string
	layout     *string
	policy     *string
	decoder    *string
	umiStart   *int
	umiEnd     *int
	readStart  *int
	readEnd    *int
	compress   *bool
	parallel   *int
}

func registerOptsFlags(fs *flag.FlagSet, defaultPreset string) optsFlags {
	return optsFlags{
		preset: fs.String("preset", defaultPreset, `Default windows and references. "single" uses UMI [0,13),
read [12,36) and the single Bind-n-Seq target. "multi" uses UMI [0,13), read [9,35),
the L4 and L3 guide libraries, and compressed outputs.`),
		references: fs.String("references", "", `FASTA or two-column TSV (id<TAB>sequence) file of references.
The order of the file breaks ties between equally close references. Overrides the preset's references.`),
		layout: fs.String("layout", "", `Match report layout, "single" or "multi". By default "single" for one reference.`),
		policy: fs.String("policy", "lenient", `Handling of malformed records. "lenient" extracts best-effort keys,
"strict" fails the run on a header without a ':'-separated UMI field or a read shorter than the window.`),
		decoder:   fs.String("decoder", "gzip", `Input decoder: "gzip" (in-process), "pgzip" (in-process, parallel) or "zcat" (external process).`),
		umiStart:  fs.Int("umi-start", 0, "Start of the UMI window in the header's UMI field (0-based)"),
		umiEnd:    fs.Int("umi-end", 0, "End of the UMI window, exclusive"),
		readStart: fs.Int("read-start", 0, "Start of the target window in the read sequence (0-based)"),
		readEnd:   fs.Int("read-end", 0, "End of the target window, exclusive"),
		compress:  fs.Bool("compress", false, "Write gzip-compressed outputs"),
		parallel:  fs.Int("parallelism", 0, "Number of concurrent matching shards. 0 means the number of CPUs"),
	}
}

// opts builds pipeline options from the preset and the flags that were set.
func (f optsFlags) opts(fs *flag.FlagSet) (dedup.Opts, error) {
	var opts dedup.Opts
	switch *f.preset {
	case "single":
		opts = dedup.SingleTargetOpts
	case "multi":
		opts = dedup.MultiTargetOpts
	default:
		return opts, fmt.Errorf("unknown preset %q, must be single or multi", *f.preset)
	}
	opts.References = append(opts.References[:0:0], opts.References...)
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if set["umi-start"] {
		opts.UMIStart = *f.umiStart
	}
	if set["umi-end"] {
		opts.UMIEnd = *f.umiEnd
	}
	if set["read-start"] {
		opts.ReadStart = *f.readStart
	}
	if set["read-end"] {
		opts.ReadEnd = *f.readEnd
	}
	if set["compress"] {
		opts.Compress = *f.compress
	}
	if *f.references != "" {
		refs, err := dedup.LoadReferences(vcontext.Background(), *f.references)
		if err != nil {
			return opts, err
		}
		opts.References = refs
	}
	if *f.layout != "" {
		layout, err := report.ParseLayout(*f.layout)
		if err != nil {
			return opts, err
		}
		opts.Layout = &layout
	}
	policy, err := umi.ParsePolicy(*f.policy)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy
	opts.Decoder = *f.decoder
	opts.Parallelism = *f.parallel
	return opts, nil
}

func newCmdDedup() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "dedup",
		Short: "Deduplicate reads by UMI and match target sequences to references",
		Long: `Dedup reads the given gzipped FASTQ files as one stream, keeps the first
read of every UMI, and tallies the target sequences of the kept reads. It writes
umi_counts.txt (reads per UMI) and read_counts.txt (UMI-deduplicated count per
target sequence, with the best matching reference and the mismatch positions) to
the output directory.`,
	}
	readsFlag := cmd.Flags.String("reads", "", "Comma-separated list of gzipped FASTQ files")
	outputFlag := cmd.Flags.String("output-dir", "", "Output directory")
	flags := registerOptsFlags(&cmd.Flags, "single")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("dedup takes no arguments, but got %v", argv)
		}
		opts, err := flags.opts(&cmd.Flags)
		if err != nil {
			return err
		}
		if *readsFlag != "" {
			opts.Inputs = strings.Split(*readsFlag, ",")
		}
		opts.OutputDir = *outputFlag
		res, err := dedup.Run(vcontext.Background(), &opts)
		if err != nil {
			return err
		}
		log.Printf("wrote %s (%x) and %s (%x)",
			res.UMICountsPath, res.UMICountsChecksum, res.ReadCountsPath, res.ReadCountsChecksum)
		return nil
	})
	return cmd
}

func newCmdBatch() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "batch",
		Short:    "Run dedup on every pair of FASTQ files in a directory",
		ArgsName: "dir outdir",
		Long: `Batch pairs the *.fastq.gz files of dir whose names share the text before the
first '_', and runs dedup on each pair with outdir/sample_<prefix> as the output
directory.`,
	}
	flags := registerOptsFlags(&cmd.Flags, "multi")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("batch takes dir outdir, but got %v", argv)
		}
		opts, err := flags.opts(&cmd.Flags)
		if err != nil {
			return err
		}
		results, err := batch.Run(vcontext.Background(), argv[0], argv[1], opts)
		log.Printf("batch: %d samples done", len(results))
		return err
	})
	return cmd
}

func Run() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-bindnseq",
			Short:    "Bind-n-Seq UMI deduplication",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdDedup(),
				newCmdBatch(),
			},
		})
}
