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

	"github.com/consensys/go-zkriscv/pkg/circuit"
	"github.com/consensys/go-zkriscv/pkg/program"
	"github.com/consensys/go-zkriscv/pkg/riscv/compiler"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] program_file",
	Short: "compile a program into a gate circuit file.",
	Long: `Compile a RISC-V program into a boolean gate circuit which can
	 subsequently be handed to the proof backend.  The program may be an ELF
	 executable, a raw word file (.bin) or a textual listing (.hex).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		var (
			cfg      = compilerConfig(cmd)
			output   = GetString(cmd, "output")
			textfile = GetString(cmd, "text")
			witfile  = GetString(cmd, "witness")
			capacity = program.Capacity{
				MaxInputBits:  GetUint(cmd, "max-input-bits"),
				MaxOutputBits: GetUint(cmd, "max-output-bits"),
			}
		)
		// Check the requested memory capacity fits the backend budget
		// before compiling anything.
		if err := capacity.Check(cfg.MemoryBytes()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		prog := readProgram(args[0])
		//
		circ, _, err := compiler.CompileProgram(cfg, prog.Words)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		log.Debugf("compiled %d instructions into %d gates over %d wires",
			len(prog.Words), circ.NumGates(), circ.NumWires())
		//
		if err := os.WriteFile(output, circ.Serialize(), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		if textfile != "" {
			f, err := os.Create(textfile)
			if err == nil {
				err = circ.WriteText(f)
				f.Close()
			}
			//
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
		// Optionally pack the initial machine state into a witness for the
		// proof backend.
		if witfile != "" {
			regs, err := parseRegisters(GetString(cmd, "registers"))
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			//
			bits := compiler.InputWitness(cfg, prog.Entry, regs, prog.Data)
			elements := circuit.PackBits(bits, bits.Len())
			//
			if err := os.WriteFile(witfile, circuit.SerializeWitness(elements), 0644); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
		//
		fmt.Printf("wrote %s (%d gates, %d wires)\n", output, circ.NumGates(), circ.NumWires())
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "a.gates", "specify output file.")
	compileCmd.Flags().String("text", "", "also write a textual gate listing.")
	compileCmd.Flags().String("witness", "", "also write the packed initial-state witness.")
	compileCmd.Flags().StringP("registers", "r", "", "initial register vector (e.g. x1=100,x2=0xff)")
	compileCmd.Flags().Uint("max-input-bits", 0, "backend input bit budget (0 = unbounded)")
	compileCmd.Flags().Uint("max-output-bits", 0, "backend output bit budget (0 = unbounded)")
}
