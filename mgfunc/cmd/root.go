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

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mgfunc",
	Short: "Predicting functional profiles of metagenomes from marker gene sequences",
	Long: fmt.Sprintf(`
    Program: mgfunc (Metagenome functional profile prediction)
    Version: v%s
Source code: https://github.com/shenwei356/mgfunc

mgfunc predicts functional abundances of metagenome samples from
sequence (ASV/OTU) abundances, marker gene copy numbers and gene
family copy numbers of every sequence.

`, VERSION),
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	RootCmd.PersistentFlags().IntP("threads", "j", 1, formatFlagUsage("Number of CPUs to use, 0 for all CPUs."))
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, formatFlagUsage("Do not print any verbose information."))
	RootCmd.PersistentFlags().StringP("log", "", "", formatFlagUsage("Log file."))
	RootCmd.PersistentFlags().StringP("infile-list", "", "",
		formatFlagUsage("File of input files list (one file per line). If given, they are appended to files from CLI arguments."))
}
