//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jyesselm/rna-map-nextflow/lib/bitvec"
	"github.com/jyesselm/rna-map-nextflow/lib/esam"
	"github.com/jyesselm/rna-map-nextflow/lib/histo"
	"github.com/jyesselm/rna-map-nextflow/lib/phred"
	"github.com/jyesselm/rna-map-nextflow/lib/refseq"

	log "github.com/sirupsen/logrus"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var overwrite, verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&overwrite, "overwrite", false, "Overwrite existing histogram output (default stop)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathSAMsRaw, pathBAMsRaw, rawSAMCmdIn, pathFasta, pathDotBracket, pathPhred string
	var paired bool
	flag.StringVar(&pathSAMsRaw, "path_sam", "", "Path to SAM file(s) (comma separated)")
	flag.StringVar(&pathBAMsRaw, "path_bam", "", "Path to BAM file(s) (comma separated)")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	flag.StringVar(&pathFasta, "path_fasta", "", "Path to reference FASTA file")
	flag.StringVar(&pathDotBracket, "path_dot_bracket", "", "Path to dot-bracket structure CSV file with name,sequence,structure columns")
	flag.StringVar(&pathPhred, "path_phred", "", "Path to Phred score table (default built-in Sanger encoding)")
	flag.BoolVar(&paired, "paired", false, "Pair-end sequencing")
	// Arguments: Bit vector
	var qscoreCutoff, numSurBases, mapScoreCutoff, minMutDistance, mutationCountCutoff int
	var percentLengthCutoff float64
	var stricterConstraints bool
	var dataType string
	flag.IntVar(&qscoreCutoff, "qscore_cutoff", 25, "Phred score strictly above this calls a base, at or below is ambiguous")
	flag.IntVar(&numSurBases, "num_surbases", 10, "Surrounding bases compared to detect ambiguous deletions")
	flag.IntVar(&mapScoreCutoff, "map_score_cutoff", 15, "Minimum read mapping quality")
	flag.BoolVar(&stricterConstraints, "stricter_constraints", false, "Enable the stricter bit vector constraints")
	flag.IntVar(&minMutDistance, "min_mut_distance", 5, "Minimum distance between mutations (stricter constraint)")
	flag.Float64Var(&percentLengthCutoff, "percent_length_cutoff", 0.10, "Minimum read to reference length ratio (stricter constraint)")
	flag.IntVar(&mutationCountCutoff, "mutation_count_cutoff", 5, "Maximum mutations per bit vector (stricter constraint)")
	flag.StringVar(&dataType, "data_type", "DMS", "Chemical probing data type recorded in the output")
	// Arguments: Output
	var dirOut, bvFormatsRaw, pathRejected, mergeHistosRaw string
	flag.StringVar(&dirOut, "dir_out", "output", "Path to output directory")
	flag.StringVar(&bvFormatsRaw, "bv_formats", "txt", "Bit vector output format(s): 'txt' or 'json' with optional '+gz', '+lz4' or '+lz4hc' (comma separated, empty for histograms only)")
	flag.StringVar(&pathRejected, "path_rejected", "rejected_bvs.csv", "Rejected bit vector log, relative to dir_out ('none' to disable)")
	flag.StringVar(&mergeHistosRaw, "merge_histos", "", "Merge mutation histogram file(s) (comma separated) instead of processing alignments")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Max CPU
	runtime.GOMAXPROCS(nWorker * 2)

	// Time start
	var timeStart time.Time
	if verboseLevel > 0 {
		timeStart = time.Now()
	}

	// Output directory
	if err := os.MkdirAll(dirOut, 0755); err != nil {
		log.Fatal(err)
	}
	pathHistos := filepath.Join(dirOut, "mutation_histos.json")
	if _, err := os.Stat(pathHistos); err == nil && !overwrite {
		log.Fatalln(pathHistos, "already exists (use -overwrite)")
	}

	// Merge previous runs
	if len(mergeHistosRaw) > 0 {
		var pathMerges []string
		for _, p := range strings.Split(mergeHistosRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			} else {
				pathMerges = append(pathMerges, p)
			}
		}
		histos, err := histo.MergeFiles(pathMerges)
		if err != nil {
			log.Fatal(err)
		}
		if err := histo.WriteFile(histos, pathHistos); err != nil {
			log.Fatal(err)
		}
		if err := histo.WriteSummary(histos, filepath.Join(dirOut, "summary.csv")); err != nil {
			log.Fatal(err)
		}
		if verboseLevel > 0 {
			timeEnd := time.Now()
			fmt.Printf("%.1fmin - Done merging %d file(s)\n", timeEnd.Sub(timeStart).Minutes(), len(pathMerges))
		}
		return
	}

	// Check arguments
	if len(pathFasta) == 0 {
		log.Fatal("No FASTA input")
	} else if _, err := os.Stat(pathFasta); os.IsNotExist(err) {
		log.Fatalln(pathFasta, "not found")
	}

	// Parse raw arguments
	// pathSAMs
	var pathSAMs []esam.PathSAM
	var SAMCmdIn []string
	if len(pathSAMsRaw) > 0 {
		for _, p := range strings.Split(pathSAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			} else {
				pathSAMs = append(pathSAMs, esam.PathSAM{Path: p, Binary: false})
			}
		}
		if len(rawSAMCmdIn) > 0 {
			SAMCmdIn = strings.Split(rawSAMCmdIn, ",")
		}
	}
	if len(pathBAMsRaw) > 0 {
		for _, p := range strings.Split(pathBAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			} else {
				pathSAMs = append(pathSAMs, esam.PathSAM{Path: p, Binary: true})
			}
		}
	}
	if len(pathSAMs) == 0 {
		log.Fatal("No SAM/BAM input")
	}
	// bvFormats
	var bvFormats []string
	if len(bvFormatsRaw) > 0 {
		for _, format := range strings.Split(bvFormatsRaw, ",") {
			baseFormat, zip := bitvec.SplitFormat(format)
			if baseFormat != bitvec.FormatText && baseFormat != bitvec.FormatJSON {
				log.Fatalln("Unknown bit vector format", format)
			}
			switch zip {
			case "", "gz", "lz4", "lz4hc":
			default:
				log.Fatalln("Unknown compression", zip)
			}
			bvFormats = append(bvFormats, format)
		}
	}
	// pathRejected
	if pathRejected == "none" {
		pathRejected = ""
	} else if !filepath.IsAbs(pathRejected) {
		pathRejected = filepath.Join(dirOut, pathRejected)
	}

	// Open references
	refs, err := refseq.OpenFASTA(pathFasta)
	if err != nil {
		log.Fatal(err)
	}
	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Printf("%.1fmin - Found %d reference(s) in %s\n", timeNow.Sub(timeStart).Minutes(), refs.Len(), pathFasta)
	}
	if len(pathDotBracket) > 0 {
		if _, err := os.Stat(pathDotBracket); os.IsNotExist(err) {
			log.Fatalln(pathDotBracket, "not found")
		}
		if err := refs.LoadStructures(pathDotBracket); err != nil {
			log.Fatal(err)
		}
	}

	// Open Phred table
	qscores := phred.Sanger()
	if len(pathPhred) > 0 {
		if _, err := os.Stat(pathPhred); os.IsNotExist(err) {
			log.Fatalln(pathPhred, "not found")
		}
		if qscores, err = phred.Open(pathPhred); err != nil {
			log.Fatal(err)
		}
	}

	// Constraints
	cons := bitvec.Constraints{
		QScoreCutoff:        qscoreCutoff,
		NumSurBases:         numSurBases,
		MapScoreCutoff:      mapScoreCutoff,
		Stricter:            stricterConstraints,
		MinMutDistance:      minMutDistance,
		PercentLengthCutoff: percentLengthCutoff,
		MutationCountCutoff: mutationCountCutoff,
	}

	// Generate bit vectors from alignments
	p := &Pipeline{
		PathSAMs:     pathSAMs,
		SAMCmdIn:     SAMCmdIn,
		Paired:       paired,
		Refs:         refs,
		QScores:      qscores,
		Constraints:  cons,
		DataType:     dataType,
		DirOut:       dirOut,
		Formats:      bvFormats,
		PathRejected: pathRejected,
		PathReport:   pathReport,
		NWorker:      nWorker,
		TimeStart:    timeStart,
		VerboseLevel: verboseLevel,
	}
	nAlign, err := p.Run()
	if err != nil {
		log.Fatal(err)
	}

	// Verbose
	if verboseLevel > 0 {
		timeEnd := time.Now()
		fmt.Printf("%.1fmin - Done %d align.\n", timeEnd.Sub(timeStart).Minutes(), nAlign)
	}
}
