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
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/twotwotwo/sorts"
	"gonum.org/v1/gonum/mat"
)

// AggregateOptions contains options of FuncsBySample.
type AggregateOptions struct {
	// output abundances stratified by contributing sequences
	StratOut bool

	// number of samples computed in parallel
	Threads int

	// called after each sample is finished, it must be safe for concurrent use.
	Progress func(sample string)
}

// Aggregation is the predicted functional profile.
type Aggregation struct {
	// rows are functions and columns are samples
	Unstrat *table.Table

	// nil if stratified output is not requested
	Strat *table.StratTable
}

// strata of the stratified output: every non-rare sequence forms a stratum,
// and all rare sequences are merged into the last one, labeled RareLabel.
type strata struct {
	labels  []string
	members [][]int // row indexes in the abundance table
}

func newStrata(abund *table.Table, rare RareSet) *strata {
	s := &strata{
		labels:  make([]string, 0, abund.NRows()+1),
		members: make([][]int, 0, abund.NRows()+1),
	}
	rares := make([]int, 0, len(rare))
	for i, id := range abund.RowIDs {
		if rare.Has(id) {
			rares = append(rares, i)
			continue
		}
		s.labels = append(s.labels, id)
		s.members = append(s.members, []int{i})
	}
	if len(rares) > 0 {
		s.labels = append(s.labels, RareLabel)
		s.members = append(s.members, rares)
	}
	return s
}

// non-zero values of the long-form stratified result of a sample.
// Index k refers to the function k/nStrata and the stratum k%nStrata.
type sparseVec struct {
	idx []int
	val []float64
}

// FuncsBySample computes functional abundances of every sample by multiplying
// abundances of sequences (rows of abund) with their function copy numbers
// (rows of funcs), and summing over sequences.
//
// In stratified output, rare sequences are merged into a row labeled RareLabel.
// Rows with all zeros are removed, and the unstratified table is computed
// from the stratified one, so the two tables are always consistent.
//
// Samples are computed independently with opt.Threads goroutines,
// and the result does not depend on the number of threads.
func FuncsBySample(abund, funcs *table.Table, rare RareSet, opt AggregateOptions) (*Aggregation, error) {
	if funcs.NCols() == 0 {
		return nil, ErrNoFunction
	}
	if abund.NRows() == 0 {
		return nil, ErrNoOverlap
	}
	if len(rare) > 0 {
		if err := CheckReservedLabel(abund); err != nil {
			return nil, err
		}
	}

	// function copy numbers in the order of rows of the abundance table.
	// The matrix is shared by all workers and only read.
	nSeqs, nFuncs := abund.NRows(), funcs.NCols()
	copies := mat.NewDense(nSeqs, nFuncs, nil)
	for i, id := range abund.RowIDs {
		row, ok := funcs.Row(id)
		if !ok {
			return nil, fmt.Errorf("metagenome: sequence missing in function table: %s", id)
		}
		copies.SetRow(i, row)
	}

	if opt.StratOut {
		return funcsBySampleStrat(abund, funcs, copies, newStrata(abund, rare), opt)
	}
	return funcsBySampleUnstrat(abund, funcs, copies, opt)
}

func checkFinite(sample string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("metagenome: sample %s: invalid functional abundance: %v", sample, v)
		}
	}
	return nil
}

func funcsBySampleUnstrat(abund, funcs *table.Table, copies *mat.Dense, opt AggregateOptions) (*Aggregation, error) {
	nSeqs, nFuncs := copies.Dims()
	nSamples := abund.NCols()

	results := make([][]float64, nSamples)
	err := forEach(nSamples, opt.Threads, func(j int) error {
		sample := abund.ColIDs[j]

		out := make([]float64, nFuncs)
		y := mat.NewVecDense(nFuncs, out)
		y.MulVec(copies.T(), mat.NewVecDense(nSeqs, abund.Col(j)))

		if err := checkFinite(sample, out); err != nil {
			return err
		}
		results[j] = out

		if opt.Progress != nil {
			opt.Progress(sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	unstrat, err := table.New("function", abund.ColIDs)
	if err != nil {
		return nil, err
	}
	var allZero bool
	for f, function := range funcs.ColIDs {
		allZero = true
		row := make([]float64, nSamples)
		for j := range results {
			row[j] = results[j][f]
			if row[j] != 0 {
				allZero = false
			}
		}
		if allZero {
			continue
		}
		if err = unstrat.AddRow(function, row); err != nil {
			return nil, errors.Wrap(err, "metagenome: unstratified table")
		}
	}

	return &Aggregation{Unstrat: unstrat}, nil
}

func funcsBySampleStrat(abund, funcs *table.Table, copies *mat.Dense, s *strata, opt AggregateOptions) (*Aggregation, error) {
	_, nFuncs := copies.Dims()
	nSamples := abund.NCols()
	nStrata := len(s.labels)

	results := make([]*sparseVec, nSamples)
	err := forEach(nSamples, opt.Threads, func(j int) error {
		sample := abund.ColIDs[j]
		col := abund.Col(j)

		vec := &sparseVec{idx: make([]int, 0, 1024), val: make([]float64, 0, 1024)}
		var f, r, i int
		var v float64
		for f = 0; f < nFuncs; f++ {
			for r = 0; r < nStrata; r++ {
				v = 0
				for _, i = range s.members[r] {
					v += col[i] * copies.At(i, f)
				}
				if v == 0 {
					continue
				}
				vec.idx = append(vec.idx, f*nStrata+r)
				vec.val = append(vec.val, v)
			}
		}

		if err := checkFinite(sample, vec.val); err != nil {
			return err
		}
		results[j] = vec

		if opt.Progress != nil {
			opt.Progress(sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// rows with at least one non-zero value, in the order of (function, stratum).
	n := 0
	for _, vec := range results {
		n += len(vec.idx)
	}
	keys := make([]int, 0, n)
	for _, vec := range results {
		keys = append(keys, vec.idx...)
	}
	sorts.Quicksort(sort.IntSlice(keys))
	keys = uniqInts(keys)

	strat := &table.StratTable{
		Keys:    make([]table.StratKey, len(keys)),
		Samples: make([]string, nSamples),
		Data:    make([][]float64, len(keys)),
	}
	copy(strat.Samples, abund.ColIDs)
	for k, key := range keys {
		strat.Keys[k] = table.StratKey{Function: funcs.ColIDs[key/nStrata], Sequence: s.labels[key%nStrata]}
		strat.Data[k] = make([]float64, nSamples)
	}

	var row int
	for j, vec := range results {
		for k, key := range vec.idx {
			row = sort.SearchInts(keys, key)
			strat.Data[row][j] = vec.val[k]
		}
	}

	unstrat, err := unstratFromStrat(strat)
	if err != nil {
		return nil, err
	}

	return &Aggregation{Unstrat: unstrat, Strat: strat}, nil
}

// unstratFromStrat sums rows of the same function. Rows of a function
// should be adjacent.
func unstratFromStrat(strat *table.StratTable) (*table.Table, error) {
	unstrat, err := table.New("function", strat.Samples)
	if err != nil {
		return nil, err
	}

	var function string
	var sums []float64
	var j int
	var v float64
	for k, key := range strat.Keys {
		if k == 0 || key.Function != function {
			if sums != nil {
				if err = unstrat.AddRow(function, sums); err != nil {
					return nil, errors.Wrap(err, "metagenome: unstratified table")
				}
			}
			function = key.Function
			sums = make([]float64, len(strat.Samples))
		}
		for j, v = range strat.Data[k] {
			sums[j] += v
		}
	}
	if sums != nil {
		if err = unstrat.AddRow(function, sums); err != nil {
			return nil, errors.Wrap(err, "metagenome: unstratified table")
		}
	}
	return unstrat, nil
}

func uniqInts(s []int) []int {
	if len(s) < 2 {
		return s
	}
	n := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[n-1] {
			s[n] = s[i]
			n++
		}
	}
	return s[:n]
}
