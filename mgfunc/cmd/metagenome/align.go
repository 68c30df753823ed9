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

// Package metagenome predicts functional profiles of samples from sequence
// abundances and per-sequence copy numbers of gene families.
package metagenome

import (
	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
)

// Align keeps sequences shared by all three tables, and returns
// new tables with rows in the same order, i.e., the order in the
// abundance table.
func Align(abund, funcs, marker *table.Table) (*table.Table, *table.Table, *table.Table, error) {
	ids := make([]string, 0, abund.NRows())
	for _, id := range abund.RowIDs {
		if funcs.HasRow(id) && marker.HasRow(id) {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, nil, nil, errors.Wrapf(ErrNoOverlap, "#sequences in abundance table: %d, function table: %d, marker table: %d",
			abund.NRows(), funcs.NRows(), marker.NRows())
	}

	a, err := abund.Subset(ids)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := funcs.Subset(ids)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := marker.Subset(ids)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, f, m, nil
}
