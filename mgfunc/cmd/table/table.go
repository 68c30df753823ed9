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

// Package table implements the dense, named tables passed between the
// stages of the metagenome pipeline, together with their readers and
// writers.
package table

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrDuplicatedRow means a row ID appears more than once.
var ErrDuplicatedRow = errors.New("table: duplicated row ID")

// ErrDuplicatedColumn means a column name appears more than once.
var ErrDuplicatedColumn = errors.New("table: duplicated column name")

// ErrColumnNumberMismatch means a row has a different number of values from the header.
var ErrColumnNumberMismatch = errors.New("table: number of values does not match number of columns")

// ErrInvalidValue means a value is negative, NaN or infinite.
var ErrInvalidValue = errors.New("table: invalid value")

// SequenceIndex is the index name of tables with sequences in rows.
const SequenceIndex = "sequence"

// Table is a dense matrix of non-negative numbers with named rows and columns.
// Rows are sequences (or functions, samples), columns are samples
// (or functions, marker genes).
type Table struct {
	// IndexName is the header of the first column, e.g., "sequence".
	IndexName string

	RowIDs []string
	ColIDs []string

	// Data[i][j] is the value of row i and column j.
	Data [][]float64

	rowIdx map[string]int
	colIdx map[string]int
}

// New creates an empty table with given columns.
func New(indexName string, colIDs []string) (*Table, error) {
	colIdx := make(map[string]int, len(colIDs))
	for j, c := range colIDs {
		if _, ok := colIdx[c]; ok {
			return nil, errors.Wrap(ErrDuplicatedColumn, c)
		}
		colIdx[c] = j
	}

	cols := make([]string, len(colIDs))
	copy(cols, colIDs)

	return &Table{
		IndexName: indexName,
		RowIDs:    make([]string, 0, 1024),
		ColIDs:    cols,
		Data:      make([][]float64, 0, 1024),
		rowIdx:    make(map[string]int, 1024),
		colIdx:    colIdx,
	}, nil
}

// AddRow appends a row. The slice of values is owned by the table afterwards.
func (t *Table) AddRow(id string, values []float64) error {
	if len(values) != len(t.ColIDs) {
		return errors.Wrapf(ErrColumnNumberMismatch, "row %s: %d != %d", id, len(values), len(t.ColIDs))
	}
	if _, ok := t.rowIdx[id]; ok {
		return errors.Wrap(ErrDuplicatedRow, id)
	}
	if err := checkValues(id, t.ColIDs, values); err != nil {
		return err
	}

	t.rowIdx[id] = len(t.RowIDs)
	t.RowIDs = append(t.RowIDs, id)
	t.Data = append(t.Data, values)
	return nil
}

func checkValues(id string, colIDs []string, values []float64) error {
	for j, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidValue, "row %s, column %s: %v", id, colIDs[j], v)
		}
	}
	return nil
}

// NRows returns the number of rows.
func (t *Table) NRows() int { return len(t.RowIDs) }

// NCols returns the number of columns.
func (t *Table) NCols() int { return len(t.ColIDs) }

// RowIndex returns the position of a row.
func (t *Table) RowIndex(id string) (int, bool) {
	i, ok := t.rowIdx[id]
	return i, ok
}

// ColIndex returns the position of a column.
func (t *Table) ColIndex(name string) (int, bool) {
	j, ok := t.colIdx[name]
	return j, ok
}

// HasRow tells whether the table contains the row.
func (t *Table) HasRow(id string) bool {
	_, ok := t.rowIdx[id]
	return ok
}

// HasCol tells whether the table contains the column.
func (t *Table) HasCol(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// Row returns the values of a row, which should not be modified.
func (t *Table) Row(id string) ([]float64, bool) {
	i, ok := t.rowIdx[id]
	if !ok {
		return nil, false
	}
	return t.Data[i], true
}

// Col returns a copy of values in the j-th column.
func (t *Table) Col(j int) []float64 {
	col := make([]float64, len(t.Data))
	for i, row := range t.Data {
		col[i] = row[j]
	}
	return col
}

// RowSums returns the sum of every row.
func (t *Table) RowSums() []float64 {
	sums := make([]float64, len(t.Data))
	for i, row := range t.Data {
		sums[i] = floats.Sum(row)
	}
	return sums
}

// ColSums returns the sum of every column.
func (t *Table) ColSums() []float64 {
	sums := make([]float64, len(t.ColIDs))
	for _, row := range t.Data {
		floats.Add(sums, row)
	}
	return sums
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	t2, _ := New(t.IndexName, t.ColIDs)
	for i, id := range t.RowIDs {
		row := make([]float64, len(t.Data[i]))
		copy(row, t.Data[i])
		t2.rowIdx[id] = i
		t2.RowIDs = append(t2.RowIDs, id)
		t2.Data = append(t2.Data, row)
	}
	return t2
}

// Subset returns a new table containing given rows in the given order.
func (t *Table) Subset(ids []string) (*Table, error) {
	t2, _ := New(t.IndexName, t.ColIDs)
	t2.RowIDs = make([]string, 0, len(ids))
	t2.Data = make([][]float64, 0, len(ids))
	for _, id := range ids {
		i, ok := t.rowIdx[id]
		if !ok {
			return nil, fmt.Errorf("table: row not found: %s", id)
		}
		if _, ok = t2.rowIdx[id]; ok {
			return nil, errors.Wrap(ErrDuplicatedRow, id)
		}
		row := make([]float64, len(t.Data[i]))
		copy(row, t.Data[i])
		t2.rowIdx[id] = len(t2.RowIDs)
		t2.RowIDs = append(t2.RowIDs, id)
		t2.Data = append(t2.Data, row)
	}
	return t2, nil
}

// Filter returns a new table with rows passing the filter function.
func (t *Table) Filter(keep func(id string, values []float64) bool) *Table {
	ids := make([]string, 0, len(t.RowIDs))
	for i, id := range t.RowIDs {
		if keep(id, t.Data[i]) {
			ids = append(ids, id)
		}
	}
	t2, _ := t.Subset(ids)
	return t2
}

// DropCol returns a new table without the given column.
func (t *Table) DropCol(name string) (*Table, error) {
	k, ok := t.colIdx[name]
	if !ok {
		return nil, fmt.Errorf("table: column not found: %s", name)
	}

	cols := make([]string, 0, len(t.ColIDs)-1)
	cols = append(cols, t.ColIDs[:k]...)
	cols = append(cols, t.ColIDs[k+1:]...)

	t2, _ := New(t.IndexName, cols)
	for i, id := range t.RowIDs {
		row := make([]float64, 0, len(cols))
		row = append(row, t.Data[i][:k]...)
		row = append(row, t.Data[i][k+1:]...)
		t2.rowIdx[id] = i
		t2.RowIDs = append(t2.RowIDs, id)
		t2.Data = append(t2.Data, row)
	}
	return t2, nil
}

// Transpose swaps rows and columns. indexName is the new header of
// the first column.
func (t *Table) Transpose(indexName string) (*Table, error) {
	t2, err := New(indexName, t.RowIDs)
	if err != nil {
		return nil, err
	}
	for j, c := range t.ColIDs {
		if err = t2.AddRow(c, t.Col(j)); err != nil {
			return nil, err
		}
	}
	return t2, nil
}

// Equal tells whether two tables have the same rows, columns and values,
// in the same order.
func (t *Table) Equal(t2 *Table) bool {
	if len(t.RowIDs) != len(t2.RowIDs) || len(t.ColIDs) != len(t2.ColIDs) {
		return false
	}
	for j, c := range t.ColIDs {
		if t2.ColIDs[j] != c {
			return false
		}
	}
	for i, id := range t.RowIDs {
		if t2.RowIDs[i] != id {
			return false
		}
		if !floats.Equal(t.Data[i], t2.Data[i]) {
			return false
		}
	}
	return true
}
