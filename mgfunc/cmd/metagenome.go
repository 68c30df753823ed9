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

	"github.com/pkg/errors"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/metagenome"
	"github.com/shenwei356/mgfunc/mgfunc/cmd/table"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

const (
	fileNorm         = "seqtab_norm.tsv.gz"
	fileWeightedNSTI = "weighted_nsti.tsv.gz"
	fileUnstrat      = "pred_metagenome_unstrat.tsv.gz"
	fileStrat        = "pred_metagenome_strat.tsv.gz"
	fileRunInfo      = "run-info.yml"
)

var metagenomeCmd = &cobra.Command{
	Use:   "metagenome",
	Short: "Predict functional abundances of metagenome samples",
	Long: `Predict functional abundances of metagenome samples

Steps:
  1. Sequences with NSTI values greater than --max-nsti are removed from
     the function and marker tables, if a "metadata_NSTI" column exists.
  2. Only sequences present in all three tables are kept.
  3. Sequence abundances are divided by marker gene copy numbers.
  4. Weighted NSTI of every sample is computed, if NSTI values are given.
  5. Function abundances of every sample are computed, optionally
     stratified by contributing sequences.

Input:
  1. Sequence abundance table (-i/--input), tab-delimited with sequences
     in rows and samples in columns, or a mothur shared file.
     Tables converted from BIOM files ("#OTU ID" header) are supported.
  2. Function copy number table (-f/--func-table), tab-delimited with
     the header "sequence" and function names.
  3. Marker gene copy number table (-m/--marker-table), tab-delimited,
     the first column (except "metadata_NSTI") is used.

Output (in --out-dir):
  pred_metagenome_unstrat.tsv.gz   function abundances
  pred_metagenome_strat.tsv.gz     stratified function abundances (--strat-out)
  seqtab_norm.tsv.gz               normalized sequence abundances (--norm-out)
  weighted_nsti.tsv.gz             weighted NSTI of samples
  run-info.yml                     parameters and table sizes

Function order:
  Rows of the unstratified output follow the column order of the function
  table, and rows of the stratified output are grouped by function in the
  same order, not sorted alphabetically as PICRUSt2 does. Functions
  absent from all samples are omitted.

Rare sequences:
  In the stratified output, sequences with total abundances across all
  samples < --min-reads, or present in < --min-samples samples, are
  collapsed into a single "RARE" category. So sequence IDs must not be
  "RARE" in this case.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startCommand(opt)()

		// ---------------------------------------------------------------
		// basic flags

		abundFile := getInputFile(cmd, "input", "i")
		funcFile := getInputFile(cmd, "func-table", "f")
		markerFile := getInputFile(cmd, "marker-table", "m")

		maxNSTI := getFlagNonNegativeFloat64(cmd, "max-nsti")
		minReads := getFlagNonNegativeInt(cmd, "min-reads")
		minSamples := getFlagNonNegativeInt(cmd, "min-samples")
		stratOut := getFlagBool(cmd, "strat-out")
		normOut := getFlagBool(cmd, "norm-out")
		decimals := getFlagInt(cmd, "round-decimals")

		outDir := expandPath(getFlagString(cmd, "out-dir"))
		force := getFlagBool(cmd, "force")
		if outDir == "" {
			checkError(fmt.Errorf("flag -o/--out-dir needed"))
		}

		if opt.Verbose {
			log.Infof("mgfunc v%s", VERSION)
			log.Info("  https://github.com/shenwei356/mgfunc")
			log.Info()

			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("max NSTI: %v", maxNSTI)
			if stratOut {
				log.Infof("stratified output: true")
				log.Infof("  minimum reads of non-rare sequences: %d", minReads)
				log.Infof("  minimum samples of non-rare sequences: %d", minSamples)
			}
			if decimals >= 0 {
				log.Infof("decimal places of normalized abundances: %d", decimals)
			} else {
				log.Infof("decimal places of normalized abundances: no rounding")
			}
			log.Infof("threads: %d", opt.NumCPUs)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
		}

		makeOutDir(outDir, force)

		// ---------------------------------------------------------------
		// input

		abund := readAbundance(opt, abundFile)
		funcs := readCopyNumbers(opt, funcFile, "function")
		marker := readCopyNumbers(opt, markerFile, "marker gene")

		// ---------------------------------------------------------------
		// compute

		mopt := metagenome.Options{
			MaxNSTI:       maxNSTI,
			MinReads:      minReads,
			MinSamples:    minSamples,
			StratOut:      stratOut,
			Threads:       opt.NumCPUs,
			RoundDecimals: decimals,
		}

		var pbs *mpb.Progress
		if opt.Verbose {
			log.Infof("computing function abundances of %s samples ...", thousands(abund.NCols()))

			pbs = mpb.New(mpb.WithWidth(79))
			bar := pbs.AddBar(int64(abund.NCols()),
				mpb.BarStyle("[=>-]<+"),
				mpb.PrependDecorators(
					decor.Name("processed samples: ", decor.WC{W: len("processed samples: "), C: decor.DidentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Elapsed(decor.ET_STYLE_GO),
				),
			)
			mopt.Progress = func(string) { bar.Increment() }
		}

		res, err := metagenome.Run(abund, funcs, marker, mopt)
		checkError(err)

		if pbs != nil {
			pbs.Wait()
		}

		if opt.Verbose {
			st := res.Stats
			if st.NSTIAvailable {
				log.Infof("%s sequences left after NSTI filtering", thousands(st.FilteredSeqs))
			} else {
				log.Warningf("no %s column found, NSTI filtering skipped", metagenome.NSTIColumn)
			}
			log.Infof("%s sequences shared by the three tables", thousands(st.AlignedSeqs))
			if metagenome.NeedRareSeqs(stratOut, minReads, minSamples) {
				log.Infof("%s rare sequences", thousands(st.RareSeqs))
				if st.RareSeqs > 0 {
					log.Infof("  %s", previewIDs(res.Rare.IDs(), 10))
				}
			}
			log.Infof("%s functions with non-zero abundances", thousands(st.UnstratRows))
			if stratOut {
				log.Infof("%s function-sequence pairs of %s functions in stratified output",
					thousands(st.StratRows), thousands(len(res.Strat.Functions())))
			}
		}

		// ---------------------------------------------------------------
		// output

		outputs := make([]string, 0, 5)
		write := func(file string, t table.Writable) {
			file = filepath.Join(outDir, file)
			checkError(writeTable(file, t, opt.CompressionLevel))
			outputs = append(outputs, file)
		}

		if normOut {
			write(fileNorm, res.Norm)
		}
		if res.WeightedNSTI != nil {
			write(fileWeightedNSTI, res.WeightedNSTI)
		}
		write(fileUnstrat, res.Unstrat)
		if res.Strat != nil {
			write(fileStrat, res.Strat)
		}

		info := RunInfo{
			Version: VERSION,
			Inputs: RunInputs{
				Abundance: abundFile,
				Function:  funcFile,
				Marker:    markerFile,
			},
			Parameters: RunParameters{
				MaxNSTI:       maxNSTI,
				MinReads:      minReads,
				MinSamples:    minSamples,
				StratOut:      stratOut,
				RoundDecimals: decimals,
				Threads:       opt.NumCPUs,
			},
			Stats:   res.Stats,
			Outputs: outputs,
		}
		fileInfo := filepath.Join(outDir, fileRunInfo)
		_, err = info.Dump(fileInfo)
		checkError(errors.Wrap(err, fileInfo))

		if opt.Verbose {
			log.Infof("results saved in %s", outDir)
		}
	},
}

func init() {
	RootCmd.AddCommand(metagenomeCmd)

	metagenomeCmd.Flags().StringP("input", "i", "",
		formatFlagUsage(`Sequence abundance table, in tab-delimited or mothur shared format.`))
	metagenomeCmd.Flags().StringP("func-table", "f", "",
		formatFlagUsage(`Function copy number table of sequences.`))
	metagenomeCmd.Flags().StringP("marker-table", "m", "",
		formatFlagUsage(`Marker gene copy number table of sequences.`))

	metagenomeCmd.Flags().Float64P("max-nsti", "", metagenome.DefaultMaxNSTI,
		formatFlagUsage(`Sequences with NSTI values above this value are removed.`))
	metagenomeCmd.Flags().IntP("min-reads", "", metagenome.DefaultMinReads,
		formatFlagUsage(`Minimum number of reads across all samples for a sequence to be reported in stratified output, otherwise it's collapsed into "RARE".`))
	metagenomeCmd.Flags().IntP("min-samples", "", metagenome.DefaultMinSamples,
		formatFlagUsage(`Minimum number of samples a sequence is present for it to be reported in stratified output, otherwise it's collapsed into "RARE".`))
	metagenomeCmd.Flags().BoolP("strat-out", "s", false,
		formatFlagUsage(`Output function abundances stratified by sequences.`))
	metagenomeCmd.Flags().BoolP("norm-out", "n", false,
		formatFlagUsage(`Output normalized sequence abundances.`))
	metagenomeCmd.Flags().IntP("round-decimals", "", metagenome.DefaultRoundDecimals,
		formatFlagUsage(`Decimal places of normalized sequence abundances, negative values for no rounding.`))

	metagenomeCmd.Flags().StringP("out-dir", "o", "metagenome_out",
		formatFlagUsage(`Output directory.`))
	metagenomeCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite existing output directory.`))
}
