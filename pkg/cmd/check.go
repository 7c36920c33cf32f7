// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/consensys/go-zkriscv/pkg/riscv/diff"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] program_file",
	Short: "verify compiled circuits against the reference emulator.",
	Long: `Drive both the instruction compiler and the reference emulator over
	 the same program and initial register state, evaluating each compiled
	 circuit and checking the resulting registers, PC and memory bit-for-bit
	 against the emulator.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		var (
			cfg  = compilerConfig(cmd)
			prog = readProgram(args[0])
		)
		//
		regs, err := parseRegisters(GetString(cmd, "registers"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		results := diff.CheckProgram(cfg, prog.Words, regs, prog.Data, prog.Entry)
		failures := 0
		//
		for _, r := range results {
			if r.Ok() {
				fmt.Printf("  ok %4d  %s\n", r.Index, r.Insn)
			} else {
				failures++
				fmt.Printf("FAIL %4d  %-24s %v\n", r.Index, r.Insn, r.Err)
			}
		}
		//
		fmt.Printf("%d instruction(s) checked, %d failure(s)\n", len(results), failures)
		//
		if failures > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("registers", "r", "", "initial register vector (e.g. x1=100,x2=0xff)")
}
