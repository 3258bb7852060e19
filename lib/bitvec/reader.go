//
// Copyright (C) 2023-2026 Joe Yesselman
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package bitvec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// zipReader reads a file written through a zipFile, unwrapping the
// compression layer matching the file extension.
type zipReader struct {
	f  *os.File
	r  io.Reader
	gz *gzip.Reader
}

func openZipReader(path string) (*zipReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	zr := &zipReader{f: f, r: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		zr.gz = gz
		zr.r = gz
	case strings.HasSuffix(path, ".lz4"):
		zr.r = lz4.NewReader(f)
	}
	return zr, nil
}

func (zr *zipReader) Read(buf []byte) (int, error) {
	return zr.r.Read(buf)
}

func (zr *zipReader) Close() error {
	if zr.gz != nil {
		zr.gz.Close()
	}
	return zr.f.Close()
}

// TextFile is the parsed content of one bit-vector text file.
type TextFile struct {
	Name     string
	Sequence string
	DataType string
	Start    int
	End      int
	Rows     []TextRow
}

// TextRow is one rendered bit vector.
type TextRow struct {
	QName      string
	BitString  string
	NMutations int
}

// Symbols rebuilds the position to symbol map from the rendered window
// starting at the given 1-based position.
func (tr TextRow) Symbols(start int) map[int]Symbol {
	data := make(map[int]Symbol)
	for i := 0; i < len(tr.BitString); i++ {
		if tr.BitString[i] != '.' {
			data[start+i] = Symbol(tr.BitString[i])
		}
	}
	return data
}

// ReadTextFile parses a file written by TextWriter.
func ReadTextFile(path string) (*TextFile, error) {
	zr, err := openZipReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	tf := &TextFile{}
	tscanner := bufio.NewScanner(zr)
	iLine := 0
	for tscanner.Scan() {
		iLine++
		line := tscanner.Text()
		switch iLine {
		case 1:
			fields := strings.Split(line, "\t")
			if len(fields) != 4 || fields[0] != "@ref" {
				return nil, fmt.Errorf("%s: malformed @ref line", path)
			}
			tf.Name = fields[1]
			tf.Sequence = fields[2]
			tf.DataType = fields[3]
		case 2:
			coords, ok := splitCoordinates(line)
			if !ok {
				return nil, fmt.Errorf("%s: malformed @coordinates line", path)
			}
			tf.Start = coords[0]
			tf.End = coords[1]
		case 3:
			if !strings.HasPrefix(line, "Query_name") {
				return nil, fmt.Errorf("%s: malformed column header", path)
			}
		default:
			fields := strings.Split(line, "\t")
			if len(fields) != 3 {
				return nil, fmt.Errorf("%s: malformed row on line %d", path, iLine)
			}
			nMut, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %v", path, iLine, err)
			}
			tf.Rows = append(tf.Rows, TextRow{QName: fields[0], BitString: fields[1], NMutations: nMut})
		}
	}
	if err := tscanner.Err(); err != nil {
		return nil, err
	}
	if iLine < 3 {
		return nil, fmt.Errorf("%s: truncated header", path)
	}
	return tf, nil
}

// splitCoordinates parses "@coordinates:\t<start>,<end>:<length>".
func splitCoordinates(line string) ([3]int, bool) {
	var coords [3]int
	if !strings.HasPrefix(line, "@coordinates:") {
		return coords, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "@coordinates:"))
	comma := strings.IndexByte(rest, ',')
	colon := strings.IndexByte(rest, ':')
	if comma == -1 || colon < comma {
		return coords, false
	}
	for i, part := range []string{rest[:comma], rest[comma+1 : colon], rest[colon+1:]} {
		n, err := strconv.Atoi(part)
		if err != nil {
			return coords, false
		}
		coords[i] = n
	}
	return coords, true
}

// JSONRecord is one element of a muts.json array.
type JSONRecord struct {
	RName  string
	MapQ1  int
	MapQ2  int
	Len1   int
	Len2   int
	Muts   map[int]Symbol
	Dels   map[int]Symbol
	Ambigs map[int]Symbol
}

// UnmarshalJSON decodes the positional 8-element array layout.
func (jr *JSONRecord) UnmarshalJSON(buf []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(buf, &parts); err != nil {
		return err
	}
	if len(parts) != 8 {
		return fmt.Errorf("expected 8 elements, found %d", len(parts))
	}
	for i, dst := range []interface{}{&jr.RName, &jr.MapQ1, &jr.MapQ2, &jr.Len1, &jr.Len2} {
		if err := json.Unmarshal(parts[i], dst); err != nil {
			return err
		}
	}
	var err error
	if jr.Muts, err = unmarshalSymbolMap(parts[5]); err != nil {
		return err
	}
	if jr.Dels, err = unmarshalSymbolMap(parts[6]); err != nil {
		return err
	}
	jr.Ambigs, err = unmarshalSymbolMap(parts[7])
	return err
}

func unmarshalSymbolMap(buf json.RawMessage) (map[int]Symbol, error) {
	var raw map[string]string
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}
	m := make(map[int]Symbol, len(raw))
	for k, v := range raw {
		pos, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		if len(v) != 1 {
			return nil, fmt.Errorf("symbol %q is not a single character", v)
		}
		m[pos] = Symbol(v[0])
	}
	return m, nil
}

// Data merges the three category maps back into one symbol map. NoMut
// and Missing positions are not stored in muts.json and stay absent.
func (jr *JSONRecord) Data() map[int]Symbol {
	data := make(map[int]Symbol, len(jr.Muts)+len(jr.Dels)+len(jr.Ambigs))
	for _, m := range []map[int]Symbol{jr.Muts, jr.Dels, jr.Ambigs} {
		for pos, s := range m {
			data[pos] = s
		}
	}
	return data
}

// ReadJSONFile parses a muts.json file written by JSONWriter.
func ReadJSONFile(path string) ([]JSONRecord, error) {
	zr, err := openZipReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var records []JSONRecord
	if err := json.NewDecoder(zr).Decode(&records); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return records, nil
}
