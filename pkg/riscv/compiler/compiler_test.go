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
package compiler

import (
	"errors"
	"testing"

	"github.com/consensys/go-zkriscv/pkg/riscv"
)

var testConfig = Config{MemBase: 0, MemBytes: 64}

func Test_Compiler_UnsupportedOpcode(t *testing.T) {
	t.Parallel()
	//
	p, state, err := New(testConfig)
	if err != nil {
		t.Fatal(err)
	}
	//
	_, err = p.CompileInstruction(state, 0x0000007b, 0)
	//
	var unsupported *UnsupportedOpcodeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported opcode error, got %v", err)
	}
	//
	if unsupported.Word != 0x0000007b {
		t.Errorf("error reports word 0x%08x", unsupported.Word)
	}
}

func Test_Compiler_UnsupportedFunct7(t *testing.T) {
	t.Parallel()
	// "mul x3, x1, x2" (funct7=0x01) has no gate pattern and must not
	// silently compile as add.
	p, state, err := New(testConfig)
	if err != nil {
		t.Fatal(err)
	}
	//
	word := riscv.EncodeR(riscv.OpReg, 0b000, 0x01, 3, 1, 2)
	_, err = p.CompileInstruction(state, word, 0)
	//
	var unsupported *UnsupportedOpcodeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported opcode error, got %v", err)
	}
	//
	if unsupported.Word != word {
		t.Errorf("error reports word 0x%08x", unsupported.Word)
	}
}

func Test_Compiler_MemoryOutOfRange(t *testing.T) {
	t.Parallel()
	// lw x1, 2048(x0) addresses beyond the 64-byte capacity, and the
	// address is statically known since x0 is the constant-zero bundle.
	p, state, err := New(testConfig)
	if err != nil {
		t.Fatal(err)
	}
	//
	_, err = p.CompileInstruction(state, riscv.Lw(1, 0, 2048), 0)
	//
	var oor *MemoryOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected memory out of range error, got %v", err)
	}
	//
	if oor.Addr != 2048 {
		t.Errorf("error reports address 0x%x", oor.Addr)
	}
}

func Test_Compiler_DynamicAddressAccepted(t *testing.T) {
	t.Parallel()
	// The same offset through a non-constant base register cannot be
	// rejected statically; it compiles into the match network instead.
	p, state, err := New(testConfig)
	if err != nil {
		t.Fatal(err)
	}
	//
	if _, err := p.CompileInstruction(state, riscv.Lw(1, 5, 2048), 0); err != nil {
		t.Fatal(err)
	}
}

func Test_Compiler_CapacityExceeded(t *testing.T) {
	t.Parallel()
	//
	cfg := testConfig
	cfg.MaxGates = 100
	//
	p, state, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	//
	_, err = p.CompileInstruction(state, riscv.Add(3, 1, 2), 0)
	//
	var insnErr *InstructionError
	if !errors.As(err, &insnErr) {
		t.Fatalf("expected instruction error, got %v", err)
	}
}

func Test_Compiler_X0ConstantBundle(t *testing.T) {
	t.Parallel()
	//
	p, state, err := New(testConfig)
	if err != nil {
		t.Fatal(err)
	}
	// Writing x0 must leave its bundle the constant zero.
	state, err = p.CompileInstruction(state, riscv.Add(0, 1, 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	//
	if v, ok := state.Regs[0].Constant(); !ok || v != 0 {
		t.Errorf("x0 bundle no longer constant zero (%d, %v)", v, ok)
	}
}

func Test_Compiler_Monotonic(t *testing.T) {
	t.Parallel()
	// Compiling N instructions never produces fewer gates than a prefix.
	prog := []uint32{
		riscv.Add(3, 1, 2),
		riscv.Addi(4, 3, 17),
		riscv.Sw(1, 4, 8),
		riscv.Lw(5, 1, 8),
	}
	//
	var prev uint
	//
	for n := 1; n <= len(prog); n++ {
		circ, _, err := CompileProgram(testConfig, prog[:n])
		if err != nil {
			t.Fatal(err)
		}
		//
		if circ.NumGates() < prev {
			t.Fatalf("compiling %d instructions produced fewer gates (%d < %d)",
				n, circ.NumGates(), prev)
		}
		//
		prev = circ.NumGates()
	}
}

func Test_Compiler_HaltTerminates(t *testing.T) {
	t.Parallel()
	// Instructions after ECALL are statically unreachable and must not be
	// compiled.
	full, _, err := CompileProgram(testConfig, []uint32{riscv.Ecall(), riscv.Add(3, 1, 2)})
	if err != nil {
		t.Fatal(err)
	}
	//
	bare, _, err := CompileProgram(testConfig, []uint32{riscv.Ecall()})
	if err != nil {
		t.Fatal(err)
	}
	//
	if full.NumGates() != bare.NumGates() {
		t.Errorf("gates emitted past the sequence terminator (%d vs %d)",
			full.NumGates(), bare.NumGates())
	}
}

func Test_Compiler_ProgramValidates(t *testing.T) {
	t.Parallel()
	//
	prog := []uint32{
		riscv.Addi(1, 0, 100),
		riscv.Addi(2, 0, 200),
		riscv.Add(3, 1, 2),
		riscv.Beq(1, 2, 8),
		riscv.Sw(0, 3, 4),
		riscv.Lw(4, 0, 4),
		riscv.Ecall(),
	}
	//
	circ, _, err := CompileProgram(testConfig, prog)
	if err != nil {
		t.Fatal(err)
	}
	//
	if err := circ.Validate(); err != nil {
		t.Errorf("compiled circuit fails validation: %v", err)
	}
}
