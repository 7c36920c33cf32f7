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

	"github.com/consensys/go-zkriscv/pkg/riscv"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] program_file",
	Short: "print the decoded form of a program.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog := readProgram(args[0])
		//
		for i, word := range prog.Words {
			addr := prog.Entry + uint32(i)*4
			//
			if insn, err := riscv.Decode(word); err == nil {
				fmt.Printf("%08x:  %08x  %s\n", addr, word, insn)
			} else {
				fmt.Printf("%08x:  %08x  .word\n", addr, word)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
