// bio-bindnseq deduplicates Bind-n-Seq reads by UMI and scores the surviving
// target sequences against a reference set.
//
// Usage:
//
//	bio-bindnseq dedup --reads=S1_R1.fastq.gz,S1_R2.fastq.gz --output-dir=out
//	bio-bindnseq batch --preset=multi raw_data/ out/
package main

import (
	"github.com/grailbio/base/grail"
	"github.com/grailbio/bindnseq/cmd/bio-bindnseq/cmd"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()
	cmd.Run()
}
