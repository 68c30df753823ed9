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

// NSTIColumn is the column of Nearest Sequenced Taxon Index values
// in function and marker tables.
const NSTIColumn = "metadata_NSTI"

// WeightedNSTIColumn is the column name of the weighted NSTI table.
const WeightedNSTIColumn = "weighted_NSTI"

// Confidence maps sequences to their NSTI values. Higher is worse.
type Confidence map[string]float64

// FilterByConfidence removes rows with a score in the column bigger than maxScore,
// and removes the column. The scores of remaining rows are returned.
// If the column does not exist, a copy of the table is returned and ok is false.
func FilterByConfidence(t *table.Table, column string, maxScore float64) (filtered *table.Table, conf Confidence, ok bool, err error) {
	k, ok := t.ColIndex(column)
	if !ok {
		return t.Clone(), nil, false, nil
	}

	kept := t.Filter(func(id string, values []float64) bool {
		return values[k] <= maxScore
	})

	conf = make(Confidence, kept.NRows())
	for i, id := range kept.RowIDs {
		conf[id] = kept.Data[i][k]
	}

	filtered, err = kept.DropCol(column)
	if err != nil {
		return nil, nil, false, err
	}
	return filtered, conf, true, nil
}

// WeightedConfidence computes abundance-weighted mean scores of every sample.
// The returned table has one row per sample and one column "weighted_NSTI".
func WeightedConfidence(abund *table.Table, conf Confidence) (*table.Table, error) {
	scores := make([]float64, abund.NRows())
	var ok bool
	for i, id := range abund.RowIDs {
		if scores[i], ok = conf[id]; !ok {
			return nil, fmt.Errorf("metagenome: %s value missing for sequence: %s", NSTIColumn, id)
		}
	}

	weighted := make([]float64, abund.NCols())
	var j int
	var v float64
	for i, row := range abund.Data {
		for j, v = range row {
			weighted[j] += v * scores[i]
		}
	}
	totals := abund.ColSums()

	zeros := make([]string, 0, 8)
	for j = range totals {
		if totals[j] == 0 {
			zeros = append(zeros, abund.ColIDs[j])
		}
	}
	if len(zeros) > 0 {
		return nil, &ZeroAbundanceError{Samples: zeros}
	}

	t, err := table.New("sample", []string{WeightedNSTIColumn})
	if err != nil {
		return nil, err
	}
	for j, sample := range abund.ColIDs {
		if err = t.AddRow(sample, []float64{weighted[j] / totals[j]}); err != nil {
			return nil, errors.Wrap(err, "metagenome: weighted NSTI")
		}
	}
	return t, nil
}
