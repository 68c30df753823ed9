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
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
	"gonum.org/v1/gonum/floats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary of tables",
	Long: `Print summary of tables

Tab-delimited tables, mothur shared files, and stratified tables
with the header "function<tab>sequence<tab>samples..." are supported.

Columns:
  file       file name
  format     tsv, mothur, or stratified
  rows       number of rows (sequences, functions, or function-sequence pairs)
  columns    number of columns (samples or functions)
  sum        sum of all values
  non-zero   percentage of non-zero values

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if len(files) == 1 && isStdin(files[0]) {
			checkError(fmt.Errorf("no input files given, reading from stdin is not supported"))
		}

		outFile := expandPath(getFlagString(cmd, "out-file"))
		tabular := getFlagBool(cmd, "tabular")
		basename := getFlagBool(cmd, "basename")

		stats := make([]tableStats, 0, len(files))
		for _, file := range files {
			file = expandPath(file)
			st, err := statFile(file, opt.NumCPUs)
			checkError(errors.Wrap(err, file))

			if basename {
				st.file = filepath.Base(file)
			}
			stats = append(stats, st)
		}

		outfh, gw, w, err := outStream(outFile, isGzFile(outFile), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			if !isStdout(outFile) {
				w.Close()
			}
		}()

		if tabular {
			outfh.WriteString("file\tformat\trows\tcolumns\tsum\tnon-zero\n")
			for _, st := range stats {
				fmt.Fprintf(outfh, "%s\t%s\t%d\t%d\t%g\t%.2f\n",
					st.file, st.format, st.rows, st.cols, st.sum, st.nonZeroPercentage())
			}
			return
		}

		columns := []prettytable.Column{
			{Header: "file"},
			{Header: "format"},
			{Header: "rows", AlignRight: true},
			{Header: "columns", AlignRight: true},
			{Header: "sum", AlignRight: true},
			{Header: "non-zero", AlignRight: true},
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "

		for _, st := range stats {
			tbl.AddRow(
				st.file,
				st.format,
				humanize.Comma(int64(st.rows)),
				humanize.Comma(int64(st.cols)),
				humanize.CommafWithDigits(st.sum, 2),
				fmt.Sprintf("%.2f%%", st.nonZeroPercentage()),
			)
		}
		outfh.Write(tbl.Bytes())
	},
}

type tableStats struct {
	file    string
	format  string
	rows    int
	cols    int
	sum     float64
	nonZero int
}

func (s tableStats) nonZeroPercentage() float64 {
	if s.rows == 0 || s.cols == 0 {
		return 0
	}
	return float64(s.nonZero) / float64(s.rows*s.cols) * 100
}

// statFile summarizes a table file in any supported format.
func statFile(file string, threads int) (tableStats, error) {
	var st tableStats

	mothur, err := table.IsMothurShared(file)
	if err != nil {
		return st, err
	}
	if mothur {
		t, err := table.ReadMothurShared(file)
		if err != nil {
			return st, err
		}
		st = summarize(t)
		st.file, st.format = file, "mothur"
		return st, nil
	}

	strat, err := table.IsStratified(file)
	if err != nil {
		return st, err
	}
	if strat {
		t, err := table.ReadStratTSV(file, threads)
		if err != nil {
			return st, err
		}
		st = summarizeValues(t.NRows(), len(t.Samples), t.Data)
		st.file, st.format = file, "stratified"
		return st, nil
	}

	t, err := table.ReadTSV(file, "", threads)
	if err != nil {
		return st, err
	}
	st = summarize(t)
	st.file, st.format = file, "tsv"
	return st, nil
}

func summarize(t *table.Table) tableStats {
	return summarizeValues(t.NRows(), t.NCols(), t.Data)
}

func summarizeValues(rows, cols int, data [][]float64) tableStats {
	st := tableStats{rows: rows, cols: cols}
	for _, r := range data {
		st.sum += floats.Sum(r)
		for _, v := range r {
			if v != 0 {
				st.nonZero++
			}
		}
	}
	return st
}

func init() {
	RootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))
	statsCmd.Flags().BoolP("tabular", "T", false,
		formatFlagUsage(`Output in machine-friendly tabular format.`))
	statsCmd.Flags().BoolP("basename", "b", false,
		formatFlagUsage(`Only output basenames of files.`))
}
