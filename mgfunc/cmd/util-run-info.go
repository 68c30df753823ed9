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

package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/shenwei356/mgfunc/mgfunc/cmd/metagenome"
	"github.com/shenwei356/util/pathutil"
	"gopkg.in/yaml.v2"
)

// RunInfo records the parameters and table sizes of a metagenome run.
type RunInfo struct {
	Version    string           `yaml:"version"`
	Inputs     RunInputs        `yaml:"inputs"`
	Parameters RunParameters    `yaml:"parameters"`
	Stats      metagenome.Stats `yaml:"stats"`
	Outputs    []string         `yaml:"outputs"`
}

// RunInputs are the input files.
type RunInputs struct {
	Abundance string `yaml:"abundance-table"`
	Function  string `yaml:"function-table"`
	Marker    string `yaml:"marker-table"`
}

// RunParameters are the main parameters.
type RunParameters struct {
	MaxNSTI       float64 `yaml:"max-nsti"`
	MinReads      int     `yaml:"min-reads"`
	MinSamples    int     `yaml:"min-samples"`
	StratOut      bool    `yaml:"strat-out"`
	RoundDecimals int     `yaml:"round-decimals"`
	Threads       int     `yaml:"threads"`
}

// RunInfoFromFile reads RunInfo from a YAML file.
func RunInfoFromFile(file string) (RunInfo, error) {
	info := RunInfo{}

	data, err := ioutil.ReadFile(file)
	if err != nil {
		return info, fmt.Errorf("fail to read run info file: %s", file)
	}

	err = yaml.Unmarshal(data, &info)
	if err != nil {
		return info, fmt.Errorf("fail to unmarshal run info: %s", err)
	}
	return info, nil
}

// Dump writes RunInfo to a file.
func (i RunInfo) Dump(file string) (int, error) {
	data, err := yaml.Marshal(i)
	if err != nil {
		return 0, fmt.Errorf("fail to marshal run info")
	}

	dir := filepath.Dir(file)
	dirExisted, err := pathutil.DirExists(dir)
	if err != nil {
		return 0, fmt.Errorf("fail to write run info file: %s", file)
	}
	if !dirExisted {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return 0, fmt.Errorf("fail to write run info file: %s", file)
		}
	}

	w, err := os.Create(file)
	if err != nil {
		return 0, fmt.Errorf("fail to write run info file: %s", file)
	}
	n, err := w.Write(data)
	if err != nil {
		w.Close()
		return 0, fmt.Errorf("fail to write run info file: %s", file)
	}
	return n, w.Close()
}
