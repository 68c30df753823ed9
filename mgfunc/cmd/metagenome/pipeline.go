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

	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
)

// DefaultMaxNSTI is the default maximum NSTI value of sequences to keep.
const DefaultMaxNSTI = 2.0

// Options contains parameters of the metagenome pipeline.
type Options struct {
	MaxNSTI float64

	// thresholds of rare sequences in stratified output
	MinReads   int
	MinSamples int

	StratOut bool

	// number of samples computed in parallel
	Threads int

	// decimal places of normalized abundances, negative values for no rounding
	RoundDecimals int

	// called after each sample is aggregated, it must be safe for concurrent use.
	Progress func(sample string)
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MaxNSTI:       DefaultMaxNSTI,
		MinReads:      DefaultMinReads,
		MinSamples:    DefaultMinSamples,
		Threads:       1,
		RoundDecimals: DefaultRoundDecimals,
	}
}

// Validate checks values of options.
func (o Options) Validate() error {
	if o.MinReads < 0 {
		return fmt.Errorf("metagenome: minimum reads should be non-negative: %d", o.MinReads)
	}
	if o.MinSamples < 0 {
		return fmt.Errorf("metagenome: minimum samples should be non-negative: %d", o.MinSamples)
	}
	if o.Threads < 1 {
		return fmt.Errorf("metagenome: number of threads should be positive: %d", o.Threads)
	}
	return nil
}

// Stats records table sizes at each stage.
type Stats struct {
	InputSeqs     int  `yaml:"input-sequences"`
	Samples       int  `yaml:"samples"`
	FunctionSeqs  int  `yaml:"function-table-sequences"`
	MarkerSeqs    int  `yaml:"marker-table-sequences"`
	Functions     int  `yaml:"functions"`
	FilteredSeqs  int  `yaml:"sequences-after-nsti-filtering"`
	AlignedSeqs   int  `yaml:"sequences-after-alignment"`
	RareSeqs      int  `yaml:"rare-sequences"`
	UnstratRows   int  `yaml:"unstratified-rows"`
	StratRows     int  `yaml:"stratified-rows"`
	NSTIAvailable bool `yaml:"nsti-available"`
}

// Result is the output of Run.
type Result struct {
	// normalized abundance table of aligned sequences
	Norm *table.Table

	// weighted NSTI of every sample, nil if no NSTI column is given
	WeightedNSTI *table.Table

	Unstrat *table.Table
	Strat   *table.StratTable // nil if not requested

	Rare RareSet

	Stats Stats
}

// Run runs the whole pipeline:
//
//  1. remove sequences with NSTI > opt.MaxNSTI in function and marker tables,
//  2. keep sequences shared by all three tables,
//  3. normalize sequence abundances by marker gene copy numbers,
//  4. compute weighted NSTI of every sample, if NSTI values are given,
//  5. identify rare sequences, if stratified output with non-default thresholds,
//  6. compute function abundances of every sample.
//
// If NSTI values are given in both tables, values in the marker table are used
// for weighted NSTI.
func Run(abund, funcs, marker *table.Table, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	res.Stats.InputSeqs = abund.NRows()
	res.Stats.Samples = abund.NCols()
	res.Stats.FunctionSeqs = funcs.NRows()
	res.Stats.MarkerSeqs = marker.NRows()

	// 1. NSTI
	var conf Confidence
	funcs, conf1, ok1, err := FilterByConfidence(funcs, NSTIColumn, opt.MaxNSTI)
	if err != nil {
		return nil, errors.Wrap(err, "function table")
	}
	marker, conf2, ok2, err := FilterByConfidence(marker, NSTIColumn, opt.MaxNSTI)
	if err != nil {
		return nil, errors.Wrap(err, "marker table")
	}
	if ok2 {
		conf = conf2
	} else if ok1 {
		conf = conf1
	}
	res.Stats.NSTIAvailable = ok1 || ok2
	res.Stats.Functions = funcs.NCols()
	res.Stats.FilteredSeqs = minInt(funcs.NRows(), marker.NRows())

	// 2. align
	abund, funcs, marker, err = Align(abund, funcs, marker)
	if err != nil {
		return nil, err
	}
	res.Stats.AlignedSeqs = abund.NRows()

	// 3. normalize
	res.Norm, err = NormByMarker(abund, marker, opt.RoundDecimals)
	if err != nil {
		return nil, err
	}

	// 4. weighted NSTI
	if res.Stats.NSTIAvailable {
		res.WeightedNSTI, err = WeightedConfidence(res.Norm, conf)
		if err != nil {
			return nil, err
		}
	}

	// 5. rare sequences
	if NeedRareSeqs(opt.StratOut, opt.MinReads, opt.MinSamples) {
		res.Rare, err = RareSeqs(res.Norm, opt.MinReads, opt.MinSamples)
		if err != nil {
			return nil, err
		}
	} else {
		res.Rare = RareSet{}
	}
	res.Stats.RareSeqs = len(res.Rare)

	// 6. aggregate
	agg, err := FuncsBySample(res.Norm, funcs, res.Rare, AggregateOptions{
		StratOut: opt.StratOut,
		Threads:  opt.Threads,
		Progress: opt.Progress,
	})
	if err != nil {
		return nil, err
	}
	res.Unstrat = agg.Unstrat
	res.Strat = agg.Strat
	res.Stats.UnstratRows = agg.Unstrat.NRows()
	if agg.Strat != nil {
		res.Stats.StratRows = agg.Strat.NRows()
	}

	return res, nil
}

func minInt(a int, vals ...int) int {
	min := a
	for _, v := range vals {
		if v < min {
			min = v
		}
	}
	return min
}
