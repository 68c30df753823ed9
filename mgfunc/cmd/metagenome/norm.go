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

package metagenome

import (
	"fmt"
	"math"

	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultRoundDecimals is the number of decimal places kept in normalized abundances.
const DefaultRoundDecimals = 2

// NormByMarker divides abundances of every sequence by its predicted
// copy number of the marker gene, i.e., the first column of the marker table,
// and rounds values to the given decimal places (half to even).
// A negative decimals disables rounding. The index of the returned table
// is always named "sequence", whatever the header of the input is.
//
// Sequences with zero marker copy number are reported in a *ZeroMarkerError.
func NormByMarker(abund, marker *table.Table, decimals int) (*table.Table, error) {
	if marker.NCols() == 0 {
		return nil, ErrNoMarker
	}

	copies := make([]float64, abund.NRows())
	zeros := make([]string, 0, 8)
	var i, j int
	var ok bool
	var c float64
	for i = range abund.RowIDs {
		j, ok = marker.RowIndex(abund.RowIDs[i])
		if !ok {
			return nil, fmt.Errorf("metagenome: sequence missing in marker table: %s", abund.RowIDs[i])
		}
		c = marker.Data[j][0]
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			zeros = append(zeros, abund.RowIDs[i])
			continue
		}
		copies[i] = c
	}
	if len(zeros) > 0 {
		return nil, &ZeroMarkerError{Seqs: zeros}
	}

	norm := abund.Clone()
	norm.IndexName = table.SequenceIndex
	var v float64
	for i, row := range norm.Data {
		c = copies[i]
		for j, v = range row {
			v /= c
			if decimals >= 0 {
				v = scalar.RoundEven(v, decimals)
			}
			row[j] = v
		}
	}
	return norm, nil
}
