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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	tbl, err := New("sequence", []string{"s1", "s2", "s3"})
	require.NoError(t, err)
	require.NoError(t, tbl.AddRow("seqA", []float64{1, 0, 2}))
	require.NoError(t, tbl.AddRow("seqB", []float64{0, 5, 0}))
	require.NoError(t, tbl.AddRow("seqC", []float64{3, 3, 3}))
	return tbl
}

func TestAddRow(t *testing.T) {
	tbl := newTestTable(t)

	err := tbl.AddRow("seqA", []float64{1, 1, 1})
	require.True(t, errors.Is(err, ErrDuplicatedRow))

	err = tbl.AddRow("seqD", []float64{1, 1})
	require.True(t, errors.Is(err, ErrColumnNumberMismatch))

	err = tbl.AddRow("seqD", []float64{1, -1, 1})
	require.True(t, errors.Is(err, ErrInvalidValue))

	require.Equal(t, 3, tbl.NRows())
	require.Equal(t, 3, tbl.NCols())

	_, err = New("sequence", []string{"s1", "s1"})
	require.True(t, errors.Is(err, ErrDuplicatedColumn))
}

func TestSums(t *testing.T) {
	tbl := newTestTable(t)
	require.Equal(t, []float64{3, 5, 9}, tbl.RowSums())
	require.Equal(t, []float64{4, 8, 5}, tbl.ColSums())
	require.Equal(t, []float64{0, 5, 3}, tbl.Col(1))
}

func TestSubsetAndDropCol(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := tbl.Subset([]string{"seqC", "seqA"})
	require.NoError(t, err)
	require.Equal(t, []string{"seqC", "seqA"}, sub.RowIDs)
	row, ok := sub.Row("seqA")
	require.True(t, ok)
	require.Equal(t, []float64{1, 0, 2}, row)

	// the subset is a copy
	sub.Data[0][0] = 100
	require.Equal(t, 3.0, tbl.Data[2][0])

	_, err = tbl.Subset([]string{"seqX"})
	require.Error(t, err)

	dropped, err := tbl.DropCol("s2")
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s3"}, dropped.ColIDs)
	require.Equal(t, []float64{0, 0}, dropped.Data[1])
	require.False(t, dropped.HasCol("s2"))
	j, ok := dropped.ColIndex("s3")
	require.True(t, ok)
	require.Equal(t, 1, j)

	_, err = tbl.DropCol("s4")
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	tbl := newTestTable(t)
	f := tbl.Filter(func(id string, values []float64) bool { return values[0] > 0 })
	require.Equal(t, []string{"seqA", "seqC"}, f.RowIDs)
	require.False(t, f.HasRow("seqB"))
}

func TestTranspose(t *testing.T) {
	tbl := newTestTable(t)
	tt, err := tbl.Transpose("sample")
	require.NoError(t, err)
	require.Equal(t, "sample", tt.IndexName)
	require.Equal(t, []string{"s1", "s2", "s3"}, tt.RowIDs)
	require.Equal(t, []string{"seqA", "seqB", "seqC"}, tt.ColIDs)
	require.Equal(t, []float64{0, 5, 3}, tt.Data[1])

	back, err := tt.Transpose("sequence")
	require.NoError(t, err)
	require.True(t, back.Equal(tbl))
}

func TestClone(t *testing.T) {
	tbl := newTestTable(t)
	c := tbl.Clone()
	require.True(t, c.Equal(tbl))
	c.Data[0][0] = 10
	require.False(t, c.Equal(tbl))
	i, ok := c.RowIndex("seqB")
	require.True(t, ok)
	require.Equal(t, 1, i)
}
