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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormByMarker(t *testing.T) {
	abund, _, marker := exampleTables(t)

	norm, err := NormByMarker(abund, marker, DefaultRoundDecimals)
	require.NoError(t, err)
	require.Equal(t, []string{"seqA", "seqB"}, norm.RowIDs)
	require.Equal(t, []float64{5, 0}, norm.Data[0])
	require.Equal(t, []float64{0, 5}, norm.Data[1])

	// input is untouched
	require.Equal(t, []float64{10, 0}, abund.Data[0])
}

func TestNormByMarkerIndexName(t *testing.T) {
	abund := mustTable(t, "OTU ID", []string{"s1", "s2"},
		row{"seqA", []float64{10, 0}},
		row{"seqB", []float64{0, 5}},
	)
	_, _, marker := exampleTables(t)

	norm, err := NormByMarker(abund, marker, DefaultRoundDecimals)
	require.NoError(t, err)
	require.Equal(t, "sequence", norm.IndexName)
	require.Equal(t, "OTU ID", abund.IndexName)
}

func TestNormByMarkerRounding(t *testing.T) {
	abund := mustTable(t, "sequence", []string{"s1", "s2", "s3"},
		row{"seqA", []float64{10, 1, 2}},
	)
	marker := mustTable(t, "sequence", []string{"16S"},
		row{"seqA", []float64{3}},
	)

	norm, err := NormByMarker(abund, marker, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{3.33, 0.33, 0.67}, norm.Data[0])

	norm, err = NormByMarker(abund, marker, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 0, 1}, norm.Data[0])

	norm, err = NormByMarker(abund, marker, -1)
	require.NoError(t, err)
	require.InDelta(t, 10.0/3, norm.Data[0][0], 1e-15)
}

func TestNormByMarkerLinearity(t *testing.T) {
	abund, _, marker := richTables(t)
	abund, _, marker, err := Align(abund, abund, marker)
	require.NoError(t, err)

	norm, err := NormByMarker(abund, marker, DefaultRoundDecimals)
	require.NoError(t, err)

	for _, k := range []float64{2, 3, 7.5} {
		scaled := abund.Clone()
		for _, r := range scaled.Data {
			for j := range r {
				r[j] *= k
			}
		}
		norm2, err := NormByMarker(scaled, marker, DefaultRoundDecimals)
		require.NoError(t, err)

		for i := range norm.Data {
			for j := range norm.Data[i] {
				// rounding errors are scaled too
				require.InDelta(t, k*norm.Data[i][j], norm2.Data[i][j], 0.005*(k+1))
			}
		}
	}
}

func TestNormByMarkerZero(t *testing.T) {
	abund := mustTable(t, "sequence", []string{"s1"},
		row{"seqA", []float64{1}},
		row{"seqB", []float64{1}},
		row{"seqC", []float64{1}},
	)
	marker := mustTable(t, "sequence", []string{"16S"},
		row{"seqA", []float64{0}},
		row{"seqB", []float64{1}},
		row{"seqC", []float64{0}},
	)

	_, err := NormByMarker(abund, marker, 2)
	require.Error(t, err)
	e, ok := err.(*ZeroMarkerError)
	require.True(t, ok)
	require.Equal(t, []string{"seqA", "seqC"}, e.Seqs)

	noCol := mustTable(t, "sequence", []string{})
	_, err = NormByMarker(abund, noCol, 2)
	require.Equal(t, ErrNoMarker, err)
}
