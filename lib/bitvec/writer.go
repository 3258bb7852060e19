//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// Formats understood by the storage writers.
const (
	FormatText = "txt"
	FormatJSON = "json"
)

// GenericWriter is an interface for compressed and uncompressed output.
type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

// SplitFormat splits a format argument such as "txt+gz" into the base
// format and the compression suffix.
func SplitFormat(format string) (string, string) {
	if strings.Contains(format, "+") {
		doubleFormat := strings.Split(format, "+")
		return doubleFormat[0], doubleFormat[1]
	}
	return format, ""
}

// ZipExt returns the file-name extension appended for a compression
// suffix.
func ZipExt(zip string) string {
	switch zip {
	case "gz":
		return ".gz"
	case "lz4", "lz4hc":
		return ".lz4"
	}
	return ""
}

// zipFile is an output file with an optional compression layer on top.
type zipFile struct {
	f  *os.File
	zw GenericWriter
	w  io.Writer
}

func createZipFile(path, zip string) (*zipFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	zf := &zipFile{f: f, w: f}
	switch zip {
	case "gz":
		writer := gzip.NewWriter(f)
		zf.zw = writer
		zf.w = writer
	case "lz4":
		writer := lz4.NewWriter(f)
		zf.zw = writer
		zf.w = writer
	case "lz4hc":
		writer := lz4.NewWriter(f)
		writer.Header = lz4.Header{CompressionLevel: 9}
		zf.zw = writer
		zf.w = writer
	case "":
	default:
		f.Close()
		return nil, fmt.Errorf("unknown compression %q", zip)
	}
	return zf, nil
}

func (zf *zipFile) Close() error {
	if zf.zw != nil {
		if err := zf.zw.Close(); err != nil {
			zf.f.Close()
			return err
		}
	}
	return zf.f.Close()
}

// Render draws the window [start, end] as a fixed-width string: '.' for
// positions absent from the map, the symbol otherwise. The second return
// is the number of mutation calls in the window.
func Render(data map[int]Symbol, start, end int) (string, int) {
	var b strings.Builder
	if end >= start {
		b.Grow(end - start + 1)
	}
	nMut := 0
	for pos := start; pos <= end; pos++ {
		s, ok := data[pos]
		if !ok {
			b.WriteByte('.')
			continue
		}
		if s.IsMutation() {
			nMut++
		}
		b.WriteByte(byte(s))
	}
	return b.String(), nMut
}

// TextWriter writes one reference's accepted bit vectors in the tabular
// text format: a "@ref" line, a "@coordinates" line, a column header,
// then one row per vector.
type TextWriter struct {
	zf    *zipFile
	start int
	end   int
}

// NewTextWriter creates <dirOut>/<name>_bitvectors.txt, plus the
// extension matching the compression suffix, and writes the header.
func NewTextWriter(dirOut, name, sequence, dataType string, start, end int, zip string) (*TextWriter, error) {
	zf, err := createZipFile(filepath.Join(dirOut, name+"_bitvectors.txt"+ZipExt(zip)), zip)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(zf.w, "@ref\t%s\t%s\t%s\n", name, sequence, dataType)
	fmt.Fprintf(zf.w, "@coordinates:\t%d,%d:%d\n", start, end, len(sequence))
	fmt.Fprintf(zf.w, "Query_name\tBit_vector\tN_Mutations\n")
	return &TextWriter{zf: zf, start: start, end: end}, nil
}

// Write renders one accepted bit vector as a row.
func (tw *TextWriter) Write(bv *BitVector) error {
	row, nMut := Render(bv.Data, tw.start, tw.end)
	_, err := fmt.Fprintf(tw.zf.w, "%s\t%s\t%d\n", bv.QName(), row, nMut)
	return err
}

func (tw *TextWriter) Close() error {
	return tw.zf.Close()
}

// JSONWriter streams every accepted bit vector, all references mixed,
// into a single JSON array. Each element is
// [name, mapq1, mapq2, len1, len2, muts, dels, ambigs] with the three
// category maps keyed by position.
type JSONWriter struct {
	zf    *zipFile
	first bool
}

// NewJSONWriter creates <dirOut>/muts.json, plus the extension matching
// the compression suffix.
func NewJSONWriter(dirOut, zip string) (*JSONWriter, error) {
	zf, err := createZipFile(filepath.Join(dirOut, "muts.json"+ZipExt(zip)), zip)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(zf.w, "["); err != nil {
		zf.Close()
		return nil, err
	}
	return &JSONWriter{zf: zf, first: true}, nil
}

func (jw *JSONWriter) Write(bv *BitVector) error {
	muts := make(map[string]string)
	dels := make(map[string]string)
	ambigs := make(map[string]string)
	for pos, s := range bv.Data {
		switch {
		case s.IsMutation():
			muts[strconv.Itoa(pos)] = s.String()
		case s == Deletion:
			dels[strconv.Itoa(pos)] = s.String()
		case s == Ambiguous:
			ambigs[strconv.Itoa(pos)] = s.String()
		}
	}
	read1 := bv.Reads[0]
	mapq2 := 0
	len2 := 0
	if len(bv.Reads) > 1 {
		mapq2 = int(bv.Reads[1].MapQ)
		len2 = len(bv.Reads[1].Seq)
	}
	buf, err := json.Marshal([]interface{}{read1.RName, int(read1.MapQ), mapq2, len(read1.Seq), len2, muts, dels, ambigs})
	if err != nil {
		return err
	}
	if !jw.first {
		if _, err := io.WriteString(jw.zf.w, ","); err != nil {
			return err
		}
	}
	jw.first = false
	_, err = jw.zf.w.Write(buf)
	return err
}

func (jw *JSONWriter) Close() error {
	if _, err := io.WriteString(jw.zf.w, "]"); err != nil {
		jw.zf.Close()
		return err
	}
	return jw.zf.Close()
}
