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
	"sort"

	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/twotwotwo/sorts"
)

// RareLabel is the sequence ID of the bucket merging all rare sequences
// in stratified output. No real sequence is allowed to have this name.
const RareLabel = "RARE"

// Default thresholds of rare sequences, with which no sequence is rare.
const (
	DefaultMinReads   = 1
	DefaultMinSamples = 1
)

// RareSet is a set of rare sequences.
type RareSet map[string]struct{}

// Has tells whether a sequence is rare.
func (s RareSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns sorted IDs of rare sequences.
func (s RareSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sorts.Quicksort(sort.StringSlice(ids))
	return ids
}

// NeedRareSeqs tells whether rare sequences need to be identified.
// With the default thresholds every sequence passes.
func NeedRareSeqs(stratOut bool, minReads, minSamples int) bool {
	return stratOut && (minReads != DefaultMinReads || minSamples != DefaultMinSamples)
}

// CheckReservedLabel returns a *ReservedLabelError if any row is named RareLabel.
func CheckReservedLabel(abund *table.Table) error {
	if abund.HasRow(RareLabel) {
		return &ReservedLabelError{Label: RareLabel}
	}
	return nil
}

// RareSeqs returns sequences with total abundance across all samples
// less than minReads, or present (non-zero) in less than minSamples samples.
func RareSeqs(abund *table.Table, minReads, minSamples int) (RareSet, error) {
	if err := CheckReservedLabel(abund); err != nil {
		return nil, err
	}

	rare := make(RareSet, 1024)
	sums := abund.RowSums()
	var n int
	for i, row := range abund.Data {
		n = 0
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
		if sums[i] < float64(minReads) || n < minSamples {
			rare[abund.RowIDs[i]] = struct{}{}
		}
	}
	return rare, nil
}
