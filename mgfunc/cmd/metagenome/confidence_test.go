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

func TestFilterByConfidence(t *testing.T) {
	funcs := mustTable(t, "sequence", []string{"f1", NSTIColumn, "f2"},
		row{"seqA", []float64{1, 0.5, 0}},
		row{"seqB", []float64{2, 1.0, 1}},
		row{"seqC", []float64{3, 2.5, 2}},
	)

	filtered, conf, ok, err := FilterByConfidence(funcs, NSTIColumn, 2.0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"seqA", "seqB"}, filtered.RowIDs)
	require.Equal(t, []string{"f1", "f2"}, filtered.ColIDs)
	require.Equal(t, []float64{2, 1}, filtered.Data[1])
	require.Equal(t, Confidence{"seqA": 0.5, "seqB": 1.0}, conf)

	// inclusive
	filtered, _, _, err = FilterByConfidence(funcs, NSTIColumn, 2.5)
	require.NoError(t, err)
	require.Equal(t, 3, filtered.NRows())

	// the filtered sequence is absent from all downstream tables
	abund := mustTable(t, "sequence", []string{"s1"},
		row{"seqA", []float64{1}},
		row{"seqB", []float64{1}},
		row{"seqC", []float64{1}},
	)
	marker := mustTable(t, "sequence", []string{"16S"},
		row{"seqA", []float64{1}},
		row{"seqB", []float64{1}},
		row{"seqC", []float64{1}},
	)
	opt := DefaultOptions()
	opt.StratOut = true
	res, err := Run(abund, funcs, marker, opt)
	require.NoError(t, err)
	require.False(t, res.Norm.HasRow("seqC"))
	for _, k := range res.Strat.Keys {
		require.NotEqual(t, "seqC", k.Sequence)
	}
	require.NotNil(t, res.WeightedNSTI)
	require.InDelta(t, 0.75, res.WeightedNSTI.Data[0][0], 1e-12)
}

func TestFilterByConfidenceNoColumn(t *testing.T) {
	_, funcs, _ := exampleTables(t)
	filtered, conf, ok, err := FilterByConfidence(funcs, NSTIColumn, 2.0)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, conf)
	require.True(t, filtered.Equal(funcs))
}

func TestWeightedConfidence(t *testing.T) {
	abund := mustTable(t, "sequence", []string{"s1", "s2"},
		row{"seqA", []float64{1, 0}},
		row{"seqB", []float64{3, 2}},
	)
	conf := Confidence{"seqA": 0.2, "seqB": 1.0}

	w, err := WeightedConfidence(abund, conf)
	require.NoError(t, err)
	require.Equal(t, "sample", w.IndexName)
	require.Equal(t, []string{WeightedNSTIColumn}, w.ColIDs)
	require.Equal(t, []string{"s1", "s2"}, w.RowIDs)
	require.InDelta(t, (0.2+3.0)/4, w.Data[0][0], 1e-12)
	require.InDelta(t, 1.0, w.Data[1][0], 1e-12)

	_, err = WeightedConfidence(abund, Confidence{"seqA": 0.2})
	require.Error(t, err)
}

func TestWeightedConfidenceZeroSample(t *testing.T) {
	abund := mustTable(t, "sequence", []string{"s1", "s2", "s3"},
		row{"seqA", []float64{1, 0, 0}},
		row{"seqB", []float64{3, 0, 1}},
	)
	_, err := WeightedConfidence(abund, Confidence{"seqA": 0.2, "seqB": 1.0})
	require.Error(t, err)

	e, ok := err.(*ZeroAbundanceError)
	require.True(t, ok)
	require.Equal(t, []string{"s2"}, e.Samples)
	require.Contains(t, e.Error(), "s2")
}
