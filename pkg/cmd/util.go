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
	"strconv"
	"strings"

	"github.com/consensys/go-zkriscv/pkg/program"
	"github.com/consensys/go-zkriscv/pkg/riscv/compiler"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected boolean flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetString gets an expected string flag, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetUint gets an expected unsigned integer flag, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// configureLogging raises the log level under --verbose.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// compilerConfig assembles the compiler configuration from the persistent
// flags.
func compilerConfig(cmd *cobra.Command) compiler.Config {
	return compiler.Config{
		MemBase:  uint32(GetUint(cmd, "mem-base")),
		MemBytes: GetUint(cmd, "mem-bytes"),
		MaxInsns: GetUint(cmd, "max-insns"),
	}
}

// readProgram loads the program named by the first argument, reporting and
// exiting on failure.
func readProgram(filename string) *program.Program {
	prog, err := program.Load(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return prog
}

// parseRegisters parses an initial register vector of the form
// "x1=100,x2=0xdeadbeef".
func parseRegisters(spec string) ([32]uint32, error) {
	var regs [32]uint32
	//
	if spec == "" {
		return regs, nil
	}
	//
	for _, item := range strings.Split(spec, ",") {
		split := strings.Split(item, "=")
		if len(split) != 2 || !strings.HasPrefix(split[0], "x") {
			return regs, fmt.Errorf("malformed register assignment %q", item)
		}
		//
		index, err := strconv.ParseUint(split[0][1:], 10, 5)
		if err != nil {
			return regs, fmt.Errorf("malformed register name %q", split[0])
		}
		//
		value, err := strconv.ParseUint(strings.TrimPrefix(split[1], "0x"), parseBase(split[1]), 32)
		if err != nil {
			return regs, fmt.Errorf("malformed register value %q", split[1])
		}
		//
		regs[index] = uint32(value)
	}
	//
	regs[0] = 0
	//
	return regs, nil
}

func parseBase(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	//
	return 10
}
