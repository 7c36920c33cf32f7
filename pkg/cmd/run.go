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

	"github.com/consensys/go-zkriscv/pkg/riscv/emulator"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program_file",
	Short: "execute a program in the reference emulator.",
	Long: `Execute a RISC-V program in the reference emulator and print the
	 resulting machine state.  This is the oracle the circuit compiler is
	 validated against.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		var (
			cfg      = compilerConfig(cmd)
			maxSteps = GetUint(cmd, "max-steps")
			prog     = readProgram(args[0])
		)
		//
		regs, err := parseRegisters(GetString(cmd, "registers"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		m := emulator.New(prog.Words, prog.Entry, prog.Entry, cfg.MemBase, cfg.MemoryBytes())
		m.Regs = regs
		//
		if len(prog.Data) > 0 {
			if err := m.LoadImage(prog.DataBase, prog.Data); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
		//
		if err := m.Run(uint64(maxSteps)); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		fmt.Printf("halted after %d instructions (pc=0x%08x)\n", m.Steps, m.PC)
		//
		for i := 0; i < 32; i += 4 {
			for j := i; j < i+4; j++ {
				fmt.Printf("x%-2d=0x%08x  ", j, m.Regs[j])
			}
			//
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("registers", "r", "", "initial register vector (e.g. x1=100,x2=0xff)")
	runCmd.Flags().Uint("max-steps", 1_000_000, "maximum instructions to execute")
}
