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
	"strings"

	"github.com/pkg/errors"
)

// ErrNoOverlap means no sequence is shared by the abundance table,
// the function table and the marker table.
var ErrNoOverlap = errors.New("metagenome: no overlapping sequences in the three tables")

// ErrNoFunction means the function table has no function columns.
var ErrNoFunction = errors.New("metagenome: no function columns in function table")

// ErrNoMarker means the marker table has no marker columns.
var ErrNoMarker = errors.New("metagenome: no marker gene column in marker table")

// maximum number of IDs shown in error messages.
var maxIDsInError = 10

func joinIDs(ids []string) string {
	if len(ids) <= maxIDsInError {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s, ... (%d more)", strings.Join(ids[:maxIDsInError], ", "), len(ids)-maxIDsInError)
}

// ReservedLabelError means a sequence is named with the reserved label of
// the rare-sequence bucket.
type ReservedLabelError struct {
	Label string
}

func (e *ReservedLabelError) Error() string {
	return fmt.Sprintf(`metagenome: the sequence called "%s" in the sequence abundance table should be renamed, "%s" is reserved for rare sequences`, e.Label, e.Label)
}

// ZeroMarkerError means some sequences have zero (or invalid) marker gene copy numbers.
type ZeroMarkerError struct {
	Seqs []string
}

func (e *ZeroMarkerError) Error() string {
	return fmt.Sprintf("metagenome: %d sequence(s) with zero predicted marker gene copy number: %s", len(e.Seqs), joinIDs(e.Seqs))
}

// ZeroAbundanceError means some samples have zero total abundance.
type ZeroAbundanceError struct {
	Samples []string
}

func (e *ZeroAbundanceError) Error() string {
	return fmt.Sprintf("metagenome: can not compute weighted NSTI for %d sample(s) with zero total abundance: %s", len(e.Samples), joinIDs(e.Samples))
}
