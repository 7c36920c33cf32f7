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
package diff

import (
	"testing"

	"github.com/consensys/go-zkriscv/pkg/riscv"
	"github.com/consensys/go-zkriscv/pkg/riscv/compiler"
)

var testConfig = compiler.Config{MemBase: 0, MemBytes: 64}

// Checking one instruction means: emulate it, compile it, evaluate the
// compiled gates on the same pre-state bits and compare every register, the
// PC and memory bit-for-bit.

func Test_Diff_Add(t *testing.T) {
	check(t, riscv.Add(3, 1, 2), regs(1, 100, 2, 200))
}

func Test_Diff_AddToX0(t *testing.T) {
	check(t, riscv.Add(0, 1, 2), regs(1, 100, 2, 200))
}

func Test_Diff_AddiMinImm(t *testing.T) {
	check(t, riscv.Addi(1, 1, -2048), regs(1, 100))
}

func Test_Diff_BranchTakenAndNot(t *testing.T) {
	// Same instruction on both sides of the condition: next-PC must match
	// the emulator in each case.
	check(t, riscv.Beq(1, 2, 8), regs(1, 7, 2, 7))
	check(t, riscv.Beq(1, 2, 8), regs(1, 7, 2, 8))
}

func Test_Diff_StoreLoadRoundtrip(t *testing.T) {
	t.Parallel()
	//
	prog := []uint32{
		riscv.Sw(1, 2, 4),
		riscv.Lw(3, 1, 4),
	}
	//
	checkAll(t, CheckProgram(testConfig, prog, regs(1, 0, 2, 0xdeadbeef), nil, 0))
}

func Test_Diff_ArithmeticSweep(t *testing.T) {
	t.Parallel()
	// Every R-type arithmetic/logic operation over boundary values.
	words := []uint32{
		riscv.Add(3, 1, 2),
		riscv.Sub(3, 1, 2),
		riscv.EncodeR(riscv.OpReg, 0b001, 0, 3, 1, 2), // sll
		riscv.EncodeR(riscv.OpReg, 0b010, 0, 3, 1, 2), // slt
		riscv.EncodeR(riscv.OpReg, 0b011, 0, 3, 1, 2), // sltu
		riscv.EncodeR(riscv.OpReg, 0b100, 0, 3, 1, 2), // xor
		riscv.EncodeR(riscv.OpReg, 0b101, 0, 3, 1, 2), // srl
		riscv.EncodeR(riscv.OpReg, 0b101, 0x20, 3, 1, 2), // sra
		riscv.EncodeR(riscv.OpReg, 0b110, 0, 3, 1, 2), // or
		riscv.EncodeR(riscv.OpReg, 0b111, 0, 3, 1, 2), // and
	}
	//
	values := []uint32{0, 1, 31, 100, 0x7fffffff, 0x80000000, 0xffffffff}
	//
	for _, word := range words {
		for _, a := range values {
			for _, b := range values {
				if err := CheckInstruction(testConfig, word, PreState{Regs: regs(1, a, 2, b)}, 0); err != nil {
					t.Errorf("word 0x%08x with x1=0x%x x2=0x%x: %v", word, a, b, err)
				}
			}
		}
	}
}

func Test_Diff_ImmediateSweep(t *testing.T) {
	t.Parallel()
	//
	words := []uint32{
		riscv.Addi(3, 1, -2048),
		riscv.Addi(3, 1, 2047),
		riscv.EncodeI(riscv.OpImm, 0b010, 3, 1, -1),   // slti
		riscv.EncodeI(riscv.OpImm, 0b011, 3, 1, -1),   // sltiu
		riscv.EncodeI(riscv.OpImm, 0b100, 3, 1, 0x5a), // xori
		riscv.EncodeI(riscv.OpImm, 0b110, 3, 1, 0x5a), // ori
		riscv.EncodeI(riscv.OpImm, 0b111, 3, 1, 0x5a), // andi
		riscv.EncodeI(riscv.OpImm, 0b001, 3, 1, 7),    // slli
		riscv.EncodeI(riscv.OpImm, 0b101, 3, 1, 7),    // srli
		riscv.EncodeI(riscv.OpImm, 0b101, 3, 1, 7|0x400), // srai
	}
	//
	for _, word := range words {
		for _, a := range []uint32{0, 1, 100, 0x80000000, 0xffffffff} {
			if err := CheckInstruction(testConfig, word, PreState{Regs: regs(1, a)}, 0); err != nil {
				t.Errorf("word 0x%08x with x1=0x%x: %v", word, a, err)
			}
		}
	}
}

func Test_Diff_BranchSweep(t *testing.T) {
	t.Parallel()
	//
	for funct3 := uint32(0); funct3 < 8; funct3++ {
		if funct3 == 0b010 || funct3 == 0b011 {
			continue // no such branches
		}
		//
		word := riscv.EncodeB(riscv.OpBranch, funct3, 1, 2, 12)
		//
		for _, a := range []uint32{0, 7, 0x80000000} {
			for _, b := range []uint32{0, 7, 0x80000000} {
				pre := PreState{Regs: regs(1, a, 2, b), PC: 64}
				if err := CheckInstruction(testConfig, word, pre, 0); err != nil {
					t.Errorf("branch funct3=%d x1=0x%x x2=0x%x: %v", funct3, a, b, err)
				}
			}
		}
	}
}

func Test_Diff_UpperAndJumps(t *testing.T) {
	t.Parallel()
	//
	words := []uint32{
		riscv.EncodeU(riscv.OpLui, 3, 0xabcde),
		riscv.EncodeU(riscv.OpAuipc, 3, 0xabcde),
		riscv.Jal(1, 16),
		riscv.EncodeI(riscv.OpJalr, 0, 1, 2, 8),
	}
	//
	for _, word := range words {
		pre := PreState{Regs: regs(2, 32), PC: 128}
		if err := CheckInstruction(testConfig, word, pre, 0); err != nil {
			t.Errorf("word 0x%08x: %v", word, err)
		}
	}
}

func Test_Diff_MemoryWidths(t *testing.T) {
	t.Parallel()
	// Byte write then halfword read merges against the pre-existing
	// neighbouring byte, for every address within capacity.
	image := make([]byte, 64)
	for i := range image {
		image[i] = byte(0xa0 + i)
	}
	//
	for addr := uint32(0); addr < 62; addr += 2 {
		prog := []uint32{
			riscv.EncodeS(riscv.OpStore, 0b000, 1, 2, int32(addr)), // sb
			riscv.EncodeI(riscv.OpLoad, 0b101, 3, 1, int32(addr)),  // lhu
		}
		//
		checkAll(t, CheckProgram(testConfig, prog, regs(2, 0x42), image, 0))
	}
}

func Test_Diff_LoadVariants(t *testing.T) {
	t.Parallel()
	//
	image := []byte{0xff, 0x80, 0x01, 0x7f, 0xee, 0x00, 0x00, 0x00}
	//
	for _, funct3 := range []uint32{0b000, 0b001, 0b010, 0b100, 0b101} {
		for addr := int32(0); addr < 4; addr++ {
			if funct3 == 0b001 || funct3 == 0b101 {
				if addr%2 != 0 {
					continue
				}
			} else if funct3 == 0b010 && addr%4 != 0 {
				continue
			}
			//
			word := riscv.EncodeI(riscv.OpLoad, funct3, 3, 1, addr)
			if err := CheckInstruction(testConfig, word, PreState{Image: image}, 0); err != nil {
				t.Errorf("load funct3=%d addr=%d: %v", funct3, addr, err)
			}
		}
	}
}

func Test_Diff_EnginesAgreeOnRejection(t *testing.T) {
	t.Parallel()
	// Words neither engine supports must be rejected by both, which counts
	// as agreement: an unknown opcode, and an M-extension mul (funct7=0x01)
	// whose opcode is known but whose funct combination is not.
	words := []uint32{
		0x0000007b,
		riscv.EncodeR(riscv.OpReg, 0b000, 0x01, 3, 1, 2),
	}
	//
	for _, word := range words {
		if err := CheckInstruction(testConfig, word, PreState{}, 0); err != nil {
			t.Errorf("word 0x%08x: rejection agreement reported as mismatch: %v", word, err)
		}
	}
}

func Test_Diff_StraddlingStoreDetected(t *testing.T) {
	t.Parallel()
	// A word store straddling a 4-byte cell boundary is confined to the
	// enclosing cell at the gate level, whereas the emulator's byte-wise
	// memory spans cells.  The verifier must surface that disagreement
	// rather than report agreement.
	word := riscv.Sw(1, 2, 2)
	//
	if err := CheckInstruction(testConfig, word, PreState{Regs: regs(2, 0xdeadbeef)}, 0); err == nil {
		t.Errorf("straddling store reported as agreement")
	}
}

func Test_Diff_RoundedWindowTail(t *testing.T) {
	t.Parallel()
	// A capacity which is not a whole number of words rounds up identically
	// on both sides, so the tail bytes are real memory for both engines: a
	// store there must be visible to a subsequent load in both.
	cfg := compiler.Config{MemBase: 0, MemBytes: 6}
	//
	prog := []uint32{
		riscv.Sw(1, 2, 4),
		riscv.Lw(3, 1, 4),
	}
	//
	checkAll(t, CheckProgram(cfg, prog, regs(2, 0xdeadbeef), nil, 0))
}

func Test_Diff_Ecall(t *testing.T) {
	check(t, riscv.Ecall(), regs(1, 5))
}

func Test_Diff_Program(t *testing.T) {
	t.Parallel()
	//
	prog := []uint32{
		riscv.Addi(1, 0, 100),
		riscv.Addi(2, 0, 200),
		riscv.Add(3, 1, 2),
		riscv.Sw(0, 3, 12),
		riscv.Lw(4, 0, 12),
		riscv.Sub(5, 3, 1),
		riscv.Ecall(),
	}
	//
	checkAll(t, CheckProgram(testConfig, prog, [32]uint32{}, nil, 0))
}

// ===================================================================
// Test Helpers
// ===================================================================

func check(t *testing.T, word uint32, initRegs [32]uint32) {
	t.Helper()
	//
	if err := CheckInstruction(testConfig, word, PreState{Regs: initRegs}, 0); err != nil {
		t.Error(err)
	}
}

func checkAll(t *testing.T, results []Result) {
	t.Helper()
	//
	for _, r := range results {
		if !r.Ok() {
			t.Errorf("instruction %d (%s): %v", r.Index, r.Insn, r.Err)
		}
	}
}

func regs(pairs ...uint32) [32]uint32 {
	var rs [32]uint32
	//
	for i := 0; i+1 < len(pairs); i += 2 {
		rs[pairs[i]] = pairs[i+1]
	}
	//
	return rs
}
