//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jyesselm/rna-map-nextflow/lib/bitvec"
	"github.com/jyesselm/rna-map-nextflow/lib/esam"
	"github.com/jyesselm/rna-map-nextflow/lib/histo"
	"github.com/jyesselm/rna-map-nextflow/lib/phred"
	"github.com/jyesselm/rna-map-nextflow/lib/refseq"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	log "github.com/sirupsen/logrus"

	"golang.org/x/sync/errgroup"

	"gopkg.in/fatih/set.v0"
)

const sPairLength = 10

// Pair groups the record(s) of one sequencing template: a single read,
// or two verified mates with read 1 first.
type Pair struct {
	Reads []*sam.Record
}

// Rejected couples a bit vector with its skip reason.
type Rejected struct {
	BV     *bitvec.BitVector
	Reason string
}

// Result carries one batch of classified bit vectors from a worker to
// the output goroutine.
type Result struct {
	Accepted []*bitvec.BitVector
	Rejected []Rejected
}

// AddCommas adds commas after every 3 characters.
func AddCommas(s string) string {
	if len(s) <= 3 {
		return s
	} else {
		return AddCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
	}
}

func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func OpenSAM(pathSAM esam.PathSAM, cmd []string, nWorker1 int) (f *os.File, pp io.ReadCloser, rr sam.RecordReader, err error) {
	if pathSAM.Binary {
		f, err = os.Open(pathSAM.Path)
		if err != nil {
			return f, pp, rr, err
		}
		rr, err = bam.NewReader(f, nWorker1)
	} else {
		if len(cmd) == 0 {
			f, err = os.Open(pathSAM.Path)
			if err != nil {
				return f, pp, rr, err
			}
			rr, err = sam.NewReader(f)
		} else {
			cmd = append(cmd, pathSAM.Path)
			p := exec.Command(cmd[0], cmd[1:]...)
			if pp, err = p.StdoutPipe(); err != nil {
				return f, pp, rr, err
			}
			if err = p.Start(); err != nil {
				return f, pp, rr, err
			}
			rr, err = sam.NewReader(pp)
		}
	}
	return f, pp, rr, err
}

// Pipeline holds everything one bit vector generation run needs. All
// fields are read-only once Run starts.
type Pipeline struct {
	PathSAMs     []esam.PathSAM
	SAMCmdIn     []string
	Paired       bool
	Refs         *refseq.Set
	QScores      phred.Table
	Constraints  bitvec.Constraints
	DataType     string
	DirOut       string
	Formats      []string
	PathRejected string
	PathReport   string
	NWorker      int
	TimeStart    time.Time
	VerboseLevel int
}

func newHistoMap(refs *refseq.Set, dataType string) map[string]*histo.MutationHistogram {
	histos := make(map[string]*histo.MutationHistogram, refs.Len())
	for _, rs := range refs.All() {
		mh := histo.New(rs.Name, rs.Sequence, dataType)
		mh.Structure = rs.Structure
		histos[rs.Name] = mh
	}
	return histos
}

// Run converts every alignment into a bit vector, filters it, streams
// accepted vectors into the storage writers and aggregates everything
// into per-reference histograms. It returns the number of templates
// read from the SAM input.
func (p *Pipeline) Run() (nAlign uint64, err error) {
	// Workers
	nWorker1 := Max(1, int(p.NWorker/2.))
	nWorker2 := Max(1, p.NWorker-nWorker1)

	// Init. storage writers
	var textSets []map[string]*bitvec.TextWriter
	var jsonWriters []*bitvec.JSONWriter
	for _, format := range p.Formats {
		baseFormat, zip := bitvec.SplitFormat(format)
		switch baseFormat {
		case bitvec.FormatText:
			ws := make(map[string]*bitvec.TextWriter, p.Refs.Len())
			for _, rs := range p.Refs.All() {
				tw, err := bitvec.NewTextWriter(p.DirOut, rs.Name, rs.Sequence, p.DataType, 1, len(rs.Sequence), zip)
				if err != nil {
					return nAlign, err
				}
				ws[rs.Name] = tw
			}
			textSets = append(textSets, ws)
		case bitvec.FormatJSON:
			jw, err := bitvec.NewJSONWriter(p.DirOut, zip)
			if err != nil {
				return nAlign, err
			}
			jsonWriters = append(jsonWriters, jw)
		default:
			return nAlign, fmt.Errorf("unknown bit vector format %q", format)
		}
	}
	var rejWriter *bitvec.RejectedWriter
	if p.PathRejected != "" {
		if rejWriter, err = bitvec.NewRejectedWriter(p.PathRejected); err != nil {
			return nAlign, err
		}
	}

	// Init. unique read counter
	readSet := set.New(set.ThreadSafe)

	// Init context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Start sync errgroup
	g, gctx := errgroup.WithContext(ctx)

	// Start receiving channel
	chFinal := make(chan *Result, p.NWorker*10)
	// Start per-worker histogram channel
	chHistos := make(chan map[string]*histo.MutationHistogram, nWorker2)
	// Start alignment channel
	chAln := make(chan []*Pair, p.NWorker*10)

	g.Go(func() error {
		defer close(chAln)
		timeLog := time.Now()
		for _, pathSAM := range p.PathSAMs {
			var f *os.File
			var pp io.ReadCloser
			var rr sam.RecordReader
			var err error
			var iPair int
			sPair := make([]*Pair, sPairLength)
			if p.VerboseLevel > 0 {
				timeNow := time.Now()
				fmt.Printf("%.1fmin - Opening %s\n", timeNow.Sub(p.TimeStart).Minutes(), pathSAM.Path)
			}
			// Open SAM
			f, pp, rr, err = OpenSAM(pathSAM, p.SAMCmdIn, nWorker1)
			if err != nil {
				return err
			}
			defer f.Close()
			if pp != nil {
				defer pp.Close()
			}

			// Loop over reads
			var isRead1First, read1Mapped, mateMapped bool
			for {
				// Next read
				var pair Pair
				var aread, areadM *sam.Record
				aread, err = rr.Read()
				if err == io.EOF {
					break
				} else if err != nil {
					return err
				}
				read1Mapped = aread.Flags&sam.Unmapped == 0
				// Get mate
				if p.Paired {
					mateMapped = aread.Flags&sam.MateUnmapped == 0
					if mateMapped {
						for {
							areadM, err = rr.Read()
							if err == io.EOF {
								areadM = nil
								break
							} else if err != nil {
								return err
							}
							// If alignment is not supplementary, let's keep it
							if areadM.Flags&sam.Supplementary == 0 {
								break
							}
						}
						if areadM == nil {
							return fmt.Errorf("missing mate for read %s", aread.Name)
						}
						// Check read1 and read2 names are the same
						if aread.Name != areadM.Name {
							return fmt.Errorf("different names for read 1 %s and read 2 %s", aread.Name, areadM.Name)
						}
					}
					// Combine read(s) into pair
					isRead1First = aread.Flags&sam.Read1 != 0
					if read1Mapped && mateMapped {
						if isRead1First {
							pair.Reads = append(pair.Reads, aread, areadM)
						} else {
							pair.Reads = append(pair.Reads, areadM, aread)
						}
						if !esam.VerifyPair(pair.Reads[0], pair.Reads[1]) {
							log.Warnf("mate 2 is inconsistent with mate 1 for read %s, skipping", aread.Name)
							continue
						}
					} else if read1Mapped {
						pair.Reads = append(pair.Reads, aread)
					} else if mateMapped {
						pair.Reads = append(pair.Reads, areadM)
					} else {
						continue
					}
				} else {
					// Ignore unmapped read and supplementary alignment
					if aread.Flags&sam.Unmapped != 0 || aread.Flags&sam.Supplementary != 0 {
						continue
					}
					pair.Reads = append(pair.Reads, aread)
				}
				sPair[iPair] = &pair
				if iPair == sPairLength-1 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case chAln <- sPair:
					}
					sPair = make([]*Pair, sPairLength)
					iPair = -1
				}
				iPair++
				nAlign++

				if p.VerboseLevel > 0 {
					timeNow := time.Now()
					if timeNow.Sub(timeLog).Minutes() > 1. {
						fmt.Printf("%.1fmin - %s align. - %.2f Ma/hr\n", timeNow.Sub(p.TimeStart).Minutes(), AddCommas(strconv.FormatUint(nAlign, 10)), (float64(nAlign)/timeNow.Sub(p.TimeStart).Hours())/1000000.)
						timeLog = timeNow
					}
				}
			}
			// Send last packet
			if iPair > 0 {
				sPair = sPair[:iPair]
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chAln <- sPair:
				}
			}
		}
		return nil
	})

	// Spawn worker goroutine(s)
	g.Go(func() error {
		defer close(chFinal)
		defer close(chHistos)
		// Start worker(s)
		wg, wgctx := errgroup.WithContext(gctx)
		for i := 0; i < nWorker2; i++ {
			wg.Go(func() error {
				conv := bitvec.NewConverter(p.QScores, p.Constraints)
				localHistos := newHistoMap(p.Refs, p.DataType)
				// Loop over data
				for sPair := range chAln {
					res := &Result{}
					for _, pair := range sPair {
						reads := make([]*esam.AlignedRead, len(pair.Reads))
						for i, aread := range pair.Reads {
							reads[i] = esam.FromRecord(aread)
						}
						readSet.Add(reads[0].QName)

						rs, err := p.Refs.Get(reads[0].RName)
						if err != nil {
							return fmt.Errorf("read %s: %w", reads[0].QName, err)
						}
						mh := localHistos[rs.Name]

						var bv *bitvec.BitVector
						if len(reads) == 2 {
							bv = conv.Paired(reads[0], reads[1], rs.Sequence)
						} else {
							bv = conv.Single(reads[0], rs.Sequence)
						}

						var reason string
						if len(bv.Data) == 0 {
							reason = bitvec.SkipMalformedCigar
						} else {
							reason = p.Constraints.Filter(bv, len(rs.Sequence), mh.Start, mh.End)
						}
						if reason == "" {
							mh.Record(bv.Data)
							res.Accepted = append(res.Accepted, bv)
						} else {
							mh.RecordSkip(reason)
							res.Rejected = append(res.Rejected, Rejected{BV: bv, Reason: reason})
						}
					}
					select {
					case <-wgctx.Done():
						return wgctx.Err()
					case chFinal <- res:
					}
				}
				chHistos <- localHistos
				return nil
			})
		}
		// Wait for the workers to finish
		return wg.Wait()
	})

	// Stream classified bit vectors into the storage writers. On a write
	// error keep draining the channels so the workers never block.
	var outErr error
	writeBV := func(bv *bitvec.BitVector) error {
		for _, ws := range textSets {
			if err := ws[bv.Reads[0].RName].Write(bv); err != nil {
				return err
			}
		}
		for _, jw := range jsonWriters {
			if err := jw.Write(bv); err != nil {
				return err
			}
		}
		return nil
	}
	writeRejected := func(rej Rejected) error {
		rs, err := p.Refs.Get(rej.BV.Reads[0].RName)
		if err != nil {
			return err
		}
		return rejWriter.Write(rej.BV, rej.Reason, 1, len(rs.Sequence))
	}
	for res := range chFinal {
		if outErr != nil {
			continue
		}
		for _, bv := range res.Accepted {
			if outErr = writeBV(bv); outErr != nil {
				break
			}
		}
		if rejWriter != nil {
			for _, rej := range res.Rejected {
				if outErr != nil {
					break
				}
				outErr = writeRejected(rej)
			}
		}
	}

	// Combine worker histograms
	histos := newHistoMap(p.Refs, p.DataType)
	for localHistos := range chHistos {
		if err := histo.MergeMaps(histos, localHistos); err != nil {
			return nAlign, err
		}
	}

	err = g.Wait()
	if err != nil {
		return nAlign, err
	}
	if outErr != nil {
		return nAlign, outErr
	}

	// Flush storage
	for _, ws := range textSets {
		for _, tw := range ws {
			if err := tw.Close(); err != nil {
				return nAlign, err
			}
		}
	}
	for _, jw := range jsonWriters {
		if err := jw.Close(); err != nil {
			return nAlign, err
		}
	}
	if rejWriter != nil {
		if err := rejWriter.Close(); err != nil {
			return nAlign, err
		}
	}

	// Output: Histograms
	if p.VerboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Writing histograms in %s\n", timeNow.Sub(p.TimeStart).Minutes(), p.DirOut)
	}
	err = histo.WriteFile(histos, filepath.Join(p.DirOut, "mutation_histos.json"))
	if err != nil {
		return nAlign, err
	}
	// Output: Summary
	err = histo.WriteSummary(histos, filepath.Join(p.DirOut, "summary.csv"))
	if err != nil {
		return nAlign, err
	}
	// Output: Report
	if p.PathReport != "" {
		err = WriteReport(p.PathReport, readSet, histos)
		if err != nil {
			return nAlign, err
		}
	}

	if p.VerboseLevel > 0 {
		var nReads, nAligned int
		skips := make(map[string]int)
		for _, mh := range histos {
			nReads += mh.NumReads
			nAligned += mh.NumAligned
			for reason, n := range mh.Skips {
				skips[reason] += n
			}
		}
		timeNow := time.Now()
		if nReads > 0 {
			fmt.Printf("%.1fmin - %s bit vectors - %.2f%% accepted\n", timeNow.Sub(p.TimeStart).Minutes(), AddCommas(strconv.Itoa(nReads)), float64(nAligned)/float64(nReads)*100.)
			for _, reason := range bitvec.SkipReasons {
				fmt.Printf("%.1fmin - %.2f%% skipped: %s\n", timeNow.Sub(p.TimeStart).Minutes(), float64(skips[reason])/float64(nReads)*100., reason)
			}
		}
	}

	return nAlign, nil
}
