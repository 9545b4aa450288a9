// Package umi deduplicates FASTQ reads by the Unique Molecular Identifier
// (UMI) carried in each read's header.
//
// The UMI is taken from the last ':'-separated field of the first
// space-separated token of the header, windowed to [UMIStart, UMIEnd). The
// target sequence is the [ReadStart, ReadEnd) window of the sequence line.
// For example, with UMIStart=0 and UMIEnd=3, the header
//
//	@NB500956:89:HW2FHBGX2:1:11101:25648:1069:ACGTTT 1:N:0:ATCACG
//
// yields the UMI "ACG".
//
// A Counter consumes reads in stream order and counts a read's target
// sequence only when the read is the first one bearing its UMI. Every other
// read with the same UMI is a PCR or optical duplicate and only bumps the
// UMI tally.
package umi
