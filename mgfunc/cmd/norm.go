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
	"github.com/shenwei356/mgfunc/mgfunc/cmd/metagenome"
	"github.com/spf13/cobra"
)

var normCmd = &cobra.Command{
	Use:   "norm",
	Short: "Normalize sequence abundances by marker gene copy numbers",
	Long: `Normalize sequence abundances by marker gene copy numbers

Only sequences present in both tables are kept. If the marker table
has a "metadata_NSTI" column, sequences with NSTI values greater than
--max-nsti are removed first.

Normalized abundances are rounded to --round-decimals decimal places,
with ties rounded to the nearest even number.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startCommand(opt)()

		abundFile := getInputFile(cmd, "input", "i")
		markerFile := getInputFile(cmd, "marker-table", "m")
		maxNSTI := getFlagNonNegativeFloat64(cmd, "max-nsti")
		decimals := getFlagInt(cmd, "round-decimals")
		outFile := expandPath(getFlagString(cmd, "out-file"))

		abund := readAbundance(opt, abundFile)
		marker := readCopyNumbers(opt, markerFile, "marker gene")

		marker, _, ok, err := metagenome.FilterByConfidence(marker, metagenome.NSTIColumn, maxNSTI)
		checkError(err)
		if ok && opt.Verbose {
			log.Infof("%s sequences left after NSTI filtering", thousands(marker.NRows()))
		}

		abund, _, marker, err = metagenome.Align(abund, marker, marker)
		checkError(err)
		if opt.Verbose {
			log.Infof("%s sequences shared by the two tables", thousands(abund.NRows()))
		}

		norm, err := metagenome.NormByMarker(abund, marker, decimals)
		checkError(err)

		checkError(writeTable(outFile, norm, opt.CompressionLevel))
	},
}

func init() {
	RootCmd.AddCommand(normCmd)

	normCmd.Flags().StringP("input", "i", "",
		formatFlagUsage(`Sequence abundance table, in tab-delimited or mothur shared format.`))
	normCmd.Flags().StringP("marker-table", "m", "",
		formatFlagUsage(`Marker gene copy number table of sequences.`))
	normCmd.Flags().Float64P("max-nsti", "", metagenome.DefaultMaxNSTI,
		formatFlagUsage(`Sequences with NSTI values above this value are removed.`))
	normCmd.Flags().IntP("round-decimals", "", metagenome.DefaultRoundDecimals,
		formatFlagUsage(`Decimal places of normalized sequence abundances, negative values for no rounding.`))
	normCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))
}
