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

package table

// StratKey is the key of a row in a stratified table.
type StratKey struct {
	Function string
	Sequence string
}

// StratTable stores function abundances stratified by contributing sequences.
// Rows are (function, sequence) pairs and columns are samples.
type StratTable struct {
	Keys    []StratKey
	Samples []string
	Data    [][]float64
}

// NRows returns the number of (function, sequence) rows.
func (t *StratTable) NRows() int { return len(t.Keys) }

// Get returns the value of a (function, sequence) pair in the j-th sample.
// It's a linear scan and only meant for inspecting small tables.
func (t *StratTable) Get(function, sequence string, j int) (float64, bool) {
	for i, k := range t.Keys {
		if k.Function == function && k.Sequence == sequence {
			return t.Data[i][j], true
		}
	}
	return 0, false
}

// Functions returns unique functions in the order of first appearance.
func (t *StratTable) Functions() []string {
	m := make(map[string]struct{}, 1024)
	fs := make([]string, 0, 1024)
	for _, k := range t.Keys {
		if _, ok := m[k.Function]; ok {
			continue
		}
		m[k.Function] = struct{}{}
		fs = append(fs, k.Function)
	}
	return fs
}
