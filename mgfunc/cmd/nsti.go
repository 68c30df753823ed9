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

	"github.com/shenwei356/mgfunc/mgfunc/cmd/metagenome"
	"github.com/spf13/cobra"
)

var nstiCmd = &cobra.Command{
	Use:   "nsti",
	Short: "Compute weighted NSTI of samples",
	Long: `Compute weighted NSTI of samples

The weighted NSTI of a sample is the abundance-weighted mean of NSTI
values of sequences in the sample. NSTI values are read from the
"metadata_NSTI" column of a copy number table (-m/--marker-table).

Abundances are used as given, so normalized abundances
(e.g., the output of "mgfunc norm") are recommended.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startCommand(opt)()

		abundFile := getInputFile(cmd, "input", "i")
		markerFile := getInputFile(cmd, "marker-table", "m")
		maxNSTI := getFlagNonNegativeFloat64(cmd, "max-nsti")
		outFile := expandPath(getFlagString(cmd, "out-file"))

		abund := readAbundance(opt, abundFile)
		marker := readCopyNumbers(opt, markerFile, "marker gene")

		marker, conf, ok, err := metagenome.FilterByConfidence(marker, metagenome.NSTIColumn, maxNSTI)
		checkError(err)
		if !ok {
			checkError(fmt.Errorf("no %s column found in %s", metagenome.NSTIColumn, markerFile))
		}

		abund, _, _, err = metagenome.Align(abund, marker, marker)
		checkError(err)
		if opt.Verbose {
			log.Infof("%s sequences with NSTI values <= %v", thousands(abund.NRows()), maxNSTI)
		}

		w, err := metagenome.WeightedConfidence(abund, conf)
		checkError(err)

		checkError(writeTable(outFile, w, opt.CompressionLevel))
	},
}

func init() {
	RootCmd.AddCommand(nstiCmd)

	nstiCmd.Flags().StringP("input", "i", "",
		formatFlagUsage(`Sequence abundance table, in tab-delimited or mothur shared format.`))
	nstiCmd.Flags().StringP("marker-table", "m", "",
		formatFlagUsage(`Copy number table with a "metadata_NSTI" column.`))
	nstiCmd.Flags().Float64P("max-nsti", "", metagenome.DefaultMaxNSTI,
		formatFlagUsage(`Sequences with NSTI values above this value are removed.`))
	nstiCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))
}
