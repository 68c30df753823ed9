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
	"sync"
)

// forEach runs fn(0), fn(1), ..., fn(n-1) with at most `threads` goroutines.
// No more tasks are started after the first failure, and the first error
// is returned after all started tasks finish.
func forEach(n int, threads int, fn func(j int) error) error {
	if threads < 1 {
		threads = 1
	}

	var wg sync.WaitGroup
	tokens := make(chan int, threads)

	var mu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for j := 0; j < n; j++ {
		tokens <- 1
		if failed() {
			<-tokens
			break
		}
		wg.Add(1)

		go func(j int) {
			defer func() {
				if r := recover(); r != nil {
					setErr(fmt.Errorf("task %d panicked: %v", j, r))
				}
				wg.Done()
				<-tokens
			}()

			if err := fn(j); err != nil {
				setErr(err)
			}
		}(j)
	}

	wg.Wait()
	return firstErr
}
