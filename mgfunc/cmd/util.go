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
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

// Options contains the global flags
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool

	CompressionLevel int
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),

		LogFile:  logfile,
		Log2File: logfile != "",

		CompressionLevel: -1,
	}
}

// startCommand sets up the log file and returns a function to call when the command ends.
func startCommand(opt *Options) func() {
	var fhLog *os.File
	if opt.Log2File {
		fhLog = addLog(opt.LogFile, opt.Verbose)
	}

	timeStart := time.Now()
	return func() {
		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("elapsed time: %s", time.Since(timeStart))
			log.Info()
		}
		if opt.Log2File {
			fhLog.Close()
		}
	}
}

func makeOutDir(outDir string, force bool) {
	pwd, _ := os.Getwd()
	if outDir != "./" && outDir != "." && pwd != filepath.Clean(outDir) {
		existed, err := pathutil.DirExists(outDir)
		checkError(errors.Wrap(err, outDir))
		if existed {
			empty, err := pathutil.IsEmpty(outDir)
			checkError(errors.Wrap(err, outDir))
			if !empty {
				if force {
					log.Infof("removing old output directory: %s", outDir)
					checkError(os.RemoveAll(outDir))
				} else {
					checkError(fmt.Errorf("out-dir not empty: %s, use --force to overwrite", outDir))
				}
			} else {
				checkError(os.RemoveAll(outDir))
			}
		}
		checkError(os.MkdirAll(outDir, 0777))
	}
}

func expandPath(file string) string {
	if file == "" || isStdin(file) {
		return file
	}
	_file, err := homedir.Expand(file)
	checkError(errors.Wrap(err, file))
	return _file
}

// getInputFile returns the expanded path of a required input file.
func getInputFile(cmd *cobra.Command, flag string, shorthand string) string {
	file := expandPath(getFlagString(cmd, flag))
	if file == "" {
		if shorthand != "" {
			checkError(fmt.Errorf("flag -%s/--%s needed", shorthand, flag))
		}
		checkError(fmt.Errorf("flag --%s needed", flag))
	}
	if isStdin(file) {
		checkError(fmt.Errorf("flag --%s: reading from stdin is not supported", flag))
	}
	existed, err := pathutil.Exists(file)
	checkError(errors.Wrap(err, file))
	if !existed {
		checkError(fmt.Errorf("file not found: %s", file))
	}
	return file
}

func readAbundance(opt *Options, file string) *table.Table {
	if opt.Verbose {
		log.Infof("reading sequence abundance table: %s", file)
	}
	t, err := table.ReadAbundance(file, opt.NumCPUs)
	checkError(errors.Wrap(err, file))
	if opt.Verbose {
		log.Infof("  %s sequences, %s samples", thousands(t.NRows()), thousands(t.NCols()))
	}
	return t
}

func readCopyNumbers(opt *Options, file string, what string) *table.Table {
	if opt.Verbose {
		log.Infof("reading %s copy number table: %s", what, file)
	}
	t, err := table.ReadTSV(file, "", opt.NumCPUs)
	checkError(errors.Wrap(err, file))
	if opt.Verbose {
		log.Infof("  %s sequences, %s columns", thousands(t.NRows()), thousands(t.NCols()))
	}
	return t
}

func thousands(n int) string {
	return humanize.Comma(int64(n))
}

// previewIDs joins at most n IDs, with "..." appended if there are more.
func previewIDs(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:n], ", ") + ", ..."
}
