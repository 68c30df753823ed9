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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuncsBySampleExample(t *testing.T) {
	abund, funcs, marker := exampleTables(t)
	norm, err := NormByMarker(abund, marker, DefaultRoundDecimals)
	require.NoError(t, err)

	agg, err := FuncsBySample(norm, funcs, RareSet{}, AggregateOptions{Threads: 1})
	require.NoError(t, err)
	require.Nil(t, agg.Strat)
	require.Equal(t, "function", agg.Unstrat.IndexName)
	require.Equal(t, []string{"s1", "s2"}, agg.Unstrat.ColIDs)
	require.Equal(t, []string{"f1"}, agg.Unstrat.RowIDs)
	require.Equal(t, []float64{5, 10}, agg.Unstrat.Data[0])

	agg, err = FuncsBySample(norm, funcs, RareSet{}, AggregateOptions{Threads: 1, StratOut: true})
	require.NoError(t, err)
	require.Equal(t, []float64{5, 10}, agg.Unstrat.Data[0])
	require.Equal(t, 2, agg.Strat.NRows())
	v, ok := agg.Strat.Get("f1", "seqA", 0)
	require.True(t, ok)
	require.Equal(t, 5.0, v)
	v, ok = agg.Strat.Get("f1", "seqB", 1)
	require.True(t, ok)
	require.Equal(t, 10.0, v)
}

func TestFuncsBySampleZeroRows(t *testing.T) {
	abund, funcs, marker := richTables(t)
	res, err := Run(abund, funcs, marker, Options{
		MaxNSTI:       2,
		MinReads:      1,
		MinSamples:    1,
		StratOut:      true,
		Threads:       2,
		RoundDecimals: 2,
	})
	require.NoError(t, err)

	// K04 is zero for all sequences
	require.False(t, res.Unstrat.HasRow("K04"))
	for _, k := range res.Strat.Keys {
		require.NotEqual(t, "K04", k.Function)
	}
	require.Equal(t, []string{"K01", "K02", "K03"}, res.Unstrat.RowIDs)

	// no all-zero rows
	for i := range res.Strat.Data {
		nonZero := false
		for _, v := range res.Strat.Data[i] {
			if v != 0 {
				nonZero = true
			}
		}
		require.True(t, nonZero, "%v", res.Strat.Keys[i])
	}

	// K02 of seq5 is zero
	_, ok := res.Strat.Get("K02", "seq5", 0)
	require.False(t, ok)
}

func checkConsistency(t *testing.T, agg *Aggregation) {
	sums := make(map[string][]float64)
	for i, k := range agg.Strat.Keys {
		if _, ok := sums[k.Function]; !ok {
			sums[k.Function] = make([]float64, len(agg.Strat.Samples))
		}
		for j, v := range agg.Strat.Data[i] {
			sums[k.Function][j] += v
		}
	}
	require.Equal(t, len(sums), agg.Unstrat.NRows())
	for f, s := range sums {
		row, ok := agg.Unstrat.Row(f)
		require.True(t, ok, f)
		require.Equal(t, s, row, f) // exactly
	}
}

func TestFuncsBySampleRare(t *testing.T) {
	abund, funcs, marker := richTables(t)
	opt := DefaultOptions()
	opt.StratOut = true
	opt.MinReads = 5
	opt.MinSamples = 2

	res, err := Run(abund, funcs, marker, opt)
	require.NoError(t, err)

	// normalized: seq1 {50, 10, 0, 3.5}, seq2 {3, 0, 0, 0}, seq3 {0, 16.67, 13.33, 0.33},
	// seq4 {1, 1, 0, 0}, seq5 {3, 2, 2.25, 7.5}
	require.Equal(t, []string{"seq2", "seq4"}, res.Rare.IDs())

	for _, k := range res.Strat.Keys {
		require.NotEqual(t, "seq2", k.Sequence)
		require.NotEqual(t, "seq4", k.Sequence)
	}

	// K01: seq2 has 0 copies, seq4 5 copies
	v, ok := res.Strat.Get("K01", RareLabel, 0)
	require.True(t, ok)
	require.Equal(t, 5.0, v)
	// K02: seq2 4 copies
	v, ok = res.Strat.Get("K02", RareLabel, 0)
	require.True(t, ok)
	require.Equal(t, 12.0, v)
	// K03: 3*1 + 1*2
	v, ok = res.Strat.Get("K03", RareLabel, 0)
	require.True(t, ok)
	require.Equal(t, 5.0, v)
	v, ok = res.Strat.Get("K03", RareLabel, 1)
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	// RARE is the last stratum of each function
	require.Equal(t, "seq1", res.Strat.Keys[0].Sequence)
	for i, k := range res.Strat.Keys {
		if k.Sequence == RareLabel && i+1 < len(res.Strat.Keys) {
			require.NotEqual(t, k.Function, res.Strat.Keys[i+1].Function)
		}
	}

	checkConsistency(t, &Aggregation{Unstrat: res.Unstrat, Strat: res.Strat})

	// the same unstratified values, up to floating-point rounding
	opt.StratOut = false
	res2, err := Run(abund, funcs, marker, opt)
	require.NoError(t, err)
	require.Nil(t, res2.Strat)
	require.Empty(t, res2.Rare)
	require.Equal(t, res.Unstrat.RowIDs, res2.Unstrat.RowIDs)
	for i := range res.Unstrat.Data {
		require.InDeltaSlice(t, res.Unstrat.Data[i], res2.Unstrat.Data[i], 1e-9)
	}
}

func TestFuncsBySampleThreads(t *testing.T) {
	// a larger random-like data set
	n, m, s := 200, 30, 17
	cols := make([]string, s)
	for j := range cols {
		cols[j] = fmt.Sprintf("sample%d", j)
	}
	fcols := make([]string, m)
	for j := range fcols {
		fcols[j] = fmt.Sprintf("K%05d", j)
	}
	abund := mustTable(t, "sequence", cols)
	funcs := mustTable(t, "sequence", fcols)
	var x uint32 = 2463534242
	next := func() uint32 { // xorshift
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		return x
	}
	for i := 0; i < n; i++ {
		a := make([]float64, s)
		for j := range a {
			if next()%3 == 0 {
				a[j] = float64(next()%1000) / 7
			}
		}
		require.NoError(t, abund.AddRow(fmt.Sprintf("asv%d", i), a))

		f := make([]float64, m)
		for j := range f {
			if next()%4 == 0 {
				f[j] = float64(next() % 5)
			}
		}
		require.NoError(t, funcs.AddRow(fmt.Sprintf("asv%d", i), f))
	}

	rare, err := RareSeqs(abund, 500, 3)
	require.NoError(t, err)
	require.NotEmpty(t, rare)

	for _, strat := range []bool{false, true} {
		agg1, err := FuncsBySample(abund, funcs, rare, AggregateOptions{StratOut: strat, Threads: 1})
		require.NoError(t, err)

		for _, threads := range []int{2, 4, 16} {
			var done int32
			agg, err := FuncsBySample(abund, funcs, rare, AggregateOptions{
				StratOut: strat,
				Threads:  threads,
				Progress: func(string) { atomic.AddInt32(&done, 1) },
			})
			require.NoError(t, err)
			require.Equal(t, int32(s), done)

			require.True(t, agg1.Unstrat.Equal(agg.Unstrat))
			if strat {
				require.Equal(t, agg1.Strat.Keys, agg.Strat.Keys)
				require.Equal(t, agg1.Strat.Data, agg.Strat.Data)
				checkConsistency(t, agg)
			}
		}
	}
}

func TestFuncsBySampleErrors(t *testing.T) {
	abund, funcs, _ := exampleTables(t)

	noFunc := mustTable(t, "sequence", []string{}, row{"seqA", []float64{}}, row{"seqB", []float64{}})
	_, err := FuncsBySample(abund, noFunc, nil, AggregateOptions{Threads: 1})
	require.Equal(t, ErrNoFunction, err)

	partial := mustTable(t, "sequence", []string{"f1"}, row{"seqA", []float64{1}})
	_, err = FuncsBySample(abund, partial, nil, AggregateOptions{Threads: 1})
	require.Error(t, err)

	withRare := mustTable(t, "sequence", []string{"s1", "s2"},
		row{"seqA", []float64{1, 0}},
		row{RareLabel, []float64{1, 1}},
	)
	_, err = FuncsBySample(withRare, funcs, RareSet{"seqA": struct{}{}}, AggregateOptions{Threads: 1, StratOut: true})
	_, ok := err.(*ReservedLabelError)
	require.True(t, ok)
}

func TestForEach(t *testing.T) {
	var n int32
	err := forEach(100, 8, func(j int) error {
		atomic.AddInt32(&n, 1)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int32(100), n)

	err = forEach(100, 4, func(j int) error {
		if j == 10 {
			return fmt.Errorf("sample %d failed", j)
		}
		return nil
	})
	require.EqualError(t, err, "sample 10 failed")

	err = forEach(10, 0, func(j int) error {
		if j == 3 {
			panic("boom")
		}
		return nil
	})
	require.Error(t, err)
}
