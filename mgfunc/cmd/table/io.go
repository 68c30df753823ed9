// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package table

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/xopen"
)

// ErrEmptyFile means no header line is found.
var ErrEmptyFile = errors.New("table: empty file")

// DefaultChunkSize is the number of lines parsed by a thread at a time.
var DefaultChunkSize = 500

type record struct {
	fields []string
	values []float64
	header bool
	err    error
}

// parseRecord parses a line whose first nIndex columns are IDs
// and the others are numbers.
func parseRecord(line string, nIndex int) (interface{}, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, false, nil
	}

	if line[0] == '#' {
		// "# Constructed from biom file"
		if strings.IndexByte(line, '\t') < 0 {
			return nil, false, nil
		}
		// "#OTU ID<tab>sample1..."
		return &record{fields: strings.Split(line[1:], "\t"), header: true}, true, nil
	}

	fields := strings.Split(line, "\t")
	r := &record{fields: fields}
	if len(fields) < nIndex {
		r.err = errors.Wrapf(ErrColumnNumberMismatch, "row %s", fields[0])
		return r, true, nil
	}
	r.values = make([]float64, len(fields)-nIndex)
	var err error
	for i, s := range fields[nIndex:] {
		r.values[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			r.err = fmt.Errorf("row %s: invalid number at column %d: %q",
				strings.Join(fields[:nIndex], " "), i+nIndex+1, s)
			break
		}
	}
	return r, true, nil
}

func parseLine(line string) (interface{}, bool, error) {
	return parseRecord(line, 1)
}

func parseStratLine(line string) (interface{}, bool, error) {
	return parseRecord(line, 2)
}

func drain(reader *breader.BufferedReader) {
	for range reader.Ch {
	}
}

// ReadTSV reads a tab-delimited table with a header line, the first column
// is the index column. If indexName is not empty, the header of the
// first column must equal to it. Comment lines starting with "#" and
// without any tab are skipped, and a leading "#" of the header line
// is removed, so tables converted from BIOM files are supported.
//
// Lines are parsed with `threads` goroutines.
func ReadTSV(file string, indexName string, threads int) (*Table, error) {
	if threads < 1 {
		threads = 1
	}
	reader, err := breader.NewBufferedReader(file, threads, DefaultChunkSize, parseLine)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	var t *Table
	var r *record
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			drain(reader)
			return nil, errors.Wrap(chunk.Err, file)
		}

		for _, data := range chunk.Data {
			r = data.(*record)

			if t == nil { // the first line
				if len(r.fields) < 2 {
					drain(reader)
					return nil, fmt.Errorf("%s: at least two columns needed in header line", file)
				}
				if indexName != "" && r.fields[0] != indexName {
					drain(reader)
					return nil, fmt.Errorf("%s: the first column should be %q, %q given", file, indexName, r.fields[0])
				}
				t, err = New(r.fields[0], r.fields[1:])
				if err != nil {
					drain(reader)
					return nil, errors.Wrap(err, file)
				}
				continue
			}

			if r.header {
				drain(reader)
				return nil, fmt.Errorf("%s: unexpected header line after data: #%s", file, strings.Join(r.fields, "\t"))
			}
			if r.err != nil {
				drain(reader)
				return nil, errors.Wrap(r.err, file)
			}
			if err = t.AddRow(r.fields[0], r.values); err != nil {
				drain(reader)
				return nil, errors.Wrap(err, file)
			}
		}
	}

	if t == nil {
		return nil, errors.Wrap(ErrEmptyFile, file)
	}
	return t, nil
}

// headerFields returns fields of the first non-empty line.
func headerFields(file string, n int) ([]string, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer fh.Close()

	var line string
	for {
		line, err = fh.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			break
		}
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, errors.Wrap(err, file)
		}
	}

	return strings.SplitN(line, "\t", n), nil
}

// IsMothurShared checks whether the file is in mothur shared format,
// whose header line starts with "label", "Group", and "numOtus".
func IsMothurShared(file string) (bool, error) {
	items, err := headerFields(file, 4)
	if err != nil {
		return false, err
	}
	return len(items) >= 3 && items[0] == "label" && items[1] == "Group" && items[2] == "numOtus", nil
}

// IsStratified checks whether the file is a stratified table,
// whose header line starts with "function" and "sequence".
func IsStratified(file string) (bool, error) {
	items, err := headerFields(file, 3)
	if err != nil {
		return false, err
	}
	return len(items) >= 2 && items[0] == "function" && items[1] == SequenceIndex, nil
}

// ReadMothurShared reads a mothur shared file, where rows are samples,
// and returns a table whose rows are OTUs and columns are samples.
// Only one distance label is allowed.
func ReadMothurShared(file string) (*Table, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer fh.Close()

	var t *Table
	var label string
	var line string
	var items []string
	var values []float64
	var n int
	var eof bool
	for !eof {
		line, err = fh.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, errors.Wrap(err, file)
			}
			eof = true
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		items = strings.Split(line, "\t")
		if t == nil {
			if len(items) < 4 || items[0] != "label" || items[1] != "Group" || items[2] != "numOtus" {
				return nil, fmt.Errorf("%s: invalid mothur shared header", file)
			}
			t, err = New("Group", items[3:])
			if err != nil {
				return nil, errors.Wrap(err, file)
			}
			continue
		}

		if len(items) < 3 {
			return nil, fmt.Errorf("%s: invalid mothur shared line: %s", file, line)
		}
		if label == "" {
			label = items[0]
		} else if items[0] != label {
			return nil, fmt.Errorf("%s: multiple labels found: %s, %s", file, label, items[0])
		}

		n, err = strconv.Atoi(items[2])
		if err != nil || n != len(items)-3 {
			return nil, fmt.Errorf("%s: sample %s: numOtus (%s) does not match number of values (%d)", file, items[1], items[2], len(items)-3)
		}

		values = make([]float64, len(items)-3)
		for i, s := range items[3:] {
			values[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: sample %s: invalid number: %q", file, items[1], s)
			}
		}
		if err = t.AddRow(items[1], values); err != nil {
			return nil, errors.Wrap(err, file)
		}
	}

	if t == nil {
		return nil, errors.Wrap(ErrEmptyFile, file)
	}

	return t.Transpose(SequenceIndex)
}

// ReadAbundance reads a sequence abundance table in TSV or mothur shared format.
func ReadAbundance(file string, threads int) (*Table, error) {
	mothur, err := IsMothurShared(file)
	if err != nil {
		return nil, err
	}
	if mothur {
		return ReadMothurShared(file)
	}
	return ReadTSV(file, "", threads)
}

// ReadStratTSV reads a stratified table in the format of (*StratTable).Write.
func ReadStratTSV(file string, threads int) (*StratTable, error) {
	if threads < 1 {
		threads = 1
	}
	reader, err := breader.NewBufferedReader(file, threads, DefaultChunkSize, parseStratLine)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	var t *StratTable
	var keys map[StratKey]struct{}
	var key StratKey
	var r *record
	var ok bool
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			drain(reader)
			return nil, errors.Wrap(chunk.Err, file)
		}

		for _, data := range chunk.Data {
			r = data.(*record)

			if t == nil { // the first line
				if r.header || len(r.fields) < 3 || r.fields[0] != "function" || r.fields[1] != SequenceIndex {
					drain(reader)
					return nil, fmt.Errorf("%s: the header line should start with \"function\" and \"sequence\", followed by samples", file)
				}
				samples := make(map[string]struct{}, len(r.fields)-2)
				for _, c := range r.fields[2:] {
					if _, ok = samples[c]; ok {
						drain(reader)
						return nil, errors.Wrap(errors.Wrap(ErrDuplicatedColumn, c), file)
					}
					samples[c] = struct{}{}
				}
				t = &StratTable{
					Keys:    make([]StratKey, 0, 1024),
					Samples: r.fields[2:],
					Data:    make([][]float64, 0, 1024),
				}
				keys = make(map[StratKey]struct{}, 1024)
				continue
			}

			if r.header {
				drain(reader)
				return nil, fmt.Errorf("%s: unexpected header line after data: #%s", file, strings.Join(r.fields, "\t"))
			}
			if r.err != nil {
				drain(reader)
				return nil, errors.Wrap(r.err, file)
			}

			key = StratKey{Function: r.fields[0], Sequence: r.fields[1]}
			if len(r.values) != len(t.Samples) {
				drain(reader)
				return nil, errors.Wrap(errors.Wrapf(ErrColumnNumberMismatch, "row %s %s: %d != %d",
					key.Function, key.Sequence, len(r.values), len(t.Samples)), file)
			}
			if _, ok = keys[key]; ok {
				drain(reader)
				return nil, errors.Wrap(errors.Wrapf(ErrDuplicatedRow, "%s %s", key.Function, key.Sequence), file)
			}
			if err = checkValues(key.Function+" "+key.Sequence, t.Samples, r.values); err != nil {
				drain(reader)
				return nil, errors.Wrap(err, file)
			}
			keys[key] = struct{}{}
			t.Keys = append(t.Keys, key)
			t.Data = append(t.Data, r.values)
		}
	}

	if t == nil {
		return nil, errors.Wrap(ErrEmptyFile, file)
	}
	return t, nil
}

// Writable is a table that can be written.
type Writable interface {
	Write(w io.Writer) error
}

func writeValues(bw *bufio.Writer, buf []byte, values []float64) []byte {
	for _, v := range values {
		bw.WriteByte('\t')
		buf = strconv.AppendFloat(buf[:0], v, 'f', -1, 64)
		bw.Write(buf)
	}
	bw.WriteByte('\n')
	return buf
}

// Write writes the table in tab-delimited format.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 65536)

	bw.WriteString(t.IndexName)
	for _, c := range t.ColIDs {
		bw.WriteByte('\t')
		bw.WriteString(c)
	}
	bw.WriteByte('\n')

	buf := make([]byte, 0, 32)
	for i, id := range t.RowIDs {
		bw.WriteString(id)
		buf = writeValues(bw, buf, t.Data[i])
	}

	return bw.Flush()
}

// Write writes the stratified table in tab-delimited format,
// with the first two columns being "function" and "sequence".
func (t *StratTable) Write(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 65536)

	bw.WriteString("function\tsequence")
	for _, c := range t.Samples {
		bw.WriteByte('\t')
		bw.WriteString(c)
	}
	bw.WriteByte('\n')

	buf := make([]byte, 0, 32)
	for i, k := range t.Keys {
		bw.WriteString(k.Function)
		bw.WriteByte('\t')
		bw.WriteString(k.Sequence)
		buf = writeValues(bw, buf, t.Data[i])
	}

	return bw.Flush()
}
