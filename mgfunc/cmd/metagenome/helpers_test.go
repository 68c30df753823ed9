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

	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/stretchr/testify/require"
)

type row struct {
	id     string
	values []float64
}

func mustTable(t *testing.T, indexName string, cols []string, rows ...row) *table.Table {
	tbl, err := table.New(indexName, cols)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, tbl.AddRow(r.id, r.values))
	}
	return tbl
}

// the example in the documentation:
//
//	abundance: seqA: s1=10, s2=0; seqB: s1=0, s2=5
//	marker:    seqA: 2, seqB: 1
//	function:  seqA: f1=1; seqB: f1=2
func exampleTables(t *testing.T) (abund, funcs, marker *table.Table) {
	abund = mustTable(t, "sequence", []string{"s1", "s2"},
		row{"seqA", []float64{10, 0}},
		row{"seqB", []float64{0, 5}},
	)
	funcs = mustTable(t, "sequence", []string{"f1"},
		row{"seqA", []float64{1}},
		row{"seqB", []float64{2}},
	)
	marker = mustTable(t, "sequence", []string{"16S_rRNA_Count"},
		row{"seqA", []float64{2}},
		row{"seqB", []float64{1}},
	)
	return
}

// a bigger data set with rare sequences, an all-zero function,
// and NSTI values in the marker table.
func richTables(t *testing.T) (abund, funcs, marker *table.Table) {
	abund = mustTable(t, "sequence", []string{"s1", "s2", "s3", "s4"},
		row{"seq1", []float64{100, 20, 0, 7}},
		row{"seq2", []float64{3, 0, 0, 0}},
		row{"seq3", []float64{0, 50, 40, 1}},
		row{"seq4", []float64{1, 1, 0, 0}},
		row{"seq5", []float64{12, 8, 9, 30}},
		row{"seq6", []float64{5, 5, 5, 5}}, // not in function table
	)
	funcs = mustTable(t, "sequence", []string{"K01", "K02", "K03", "K04"},
		row{"seq5", []float64{1, 0, 3, 0}},
		row{"seq1", []float64{2, 1, 0, 0}},
		row{"seq2", []float64{0, 4, 1, 0}},
		row{"seq3", []float64{1, 1, 1, 0}},
		row{"seq4", []float64{5, 0, 2, 0}},
		row{"seq7", []float64{1, 1, 1, 1}}, // not in abundance table
	)
	marker = mustTable(t, "sequence", []string{"16S_rRNA_Count", NSTIColumn},
		row{"seq1", []float64{2, 0.1}},
		row{"seq2", []float64{1, 0.5}},
		row{"seq3", []float64{3, 1.5}},
		row{"seq4", []float64{1, 0.05}},
		row{"seq5", []float64{4, 0.2}},
		row{"seq6", []float64{1, 0.3}},
		row{"seq7", []float64{1, 0.3}},
	)
	return
}
