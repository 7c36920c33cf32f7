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
package emulator

import (
	"testing"

	"github.com/consensys/go-zkriscv/pkg/riscv"
)

func Test_Emulator_Add(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, map[uint32]uint32{1: 100, 2: 200})
	step(t, m, riscv.Add(3, 1, 2))
	//
	if m.Regs[3] != 300 {
		t.Errorf("x3 = %d, expected 300", m.Regs[3])
	}
}

func Test_Emulator_X0Write(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, map[uint32]uint32{1: 100, 2: 200})
	step(t, m, riscv.Add(0, 1, 2))
	//
	if m.Regs[0] != 0 {
		t.Errorf("x0 = %d, expected 0", m.Regs[0])
	}
}

func Test_Emulator_AddiMinImm(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, map[uint32]uint32{1: 100})
	step(t, m, riscv.Addi(1, 1, -2048))
	//
	if int32(m.Regs[1]) != -1948 {
		t.Errorf("x1 = %d, expected -1948", int32(m.Regs[1]))
	}
}

func Test_Emulator_StoreLoad(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, map[uint32]uint32{1: 0, 2: 0xdeadbeef})
	step(t, m, riscv.Sw(1, 2, 4))
	step(t, m, riscv.Lw(3, 1, 4))
	//
	if m.Regs[3] != 0xdeadbeef {
		t.Errorf("x3 = 0x%x, expected 0xdeadbeef", m.Regs[3])
	}
}

func Test_Emulator_ByteMerge(t *testing.T) {
	t.Parallel()
	// Write a halfword, overwrite its low byte, read the halfword back.
	m := machine(t, map[uint32]uint32{1: 0, 2: 0x1234, 3: 0xab})
	step(t, m, riscv.EncodeS(riscv.OpStore, 0b001, 1, 2, 8)) // sh x2, 8(x1)
	step(t, m, riscv.EncodeS(riscv.OpStore, 0b000, 1, 3, 8)) // sb x3, 8(x1)
	step(t, m, riscv.EncodeI(riscv.OpLoad, 0b101, 4, 1, 8))  // lhu x4, 8(x1)
	//
	if m.Regs[4] != 0x12ab {
		t.Errorf("x4 = 0x%x, expected 0x12ab", m.Regs[4])
	}
}

func Test_Emulator_LoadSignExtend(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, map[uint32]uint32{1: 0, 2: 0x80})
	step(t, m, riscv.EncodeS(riscv.OpStore, 0b000, 1, 2, 0)) // sb x2, 0(x1)
	step(t, m, riscv.EncodeI(riscv.OpLoad, 0b000, 3, 1, 0))  // lb x3, 0(x1)
	//
	if int32(m.Regs[3]) != -128 {
		t.Errorf("x3 = %d, expected -128", int32(m.Regs[3]))
	}
}

func Test_Emulator_Branch(t *testing.T) {
	t.Parallel()
	// Taken and not-taken differ in next PC by exactly taken offset vs 4.
	taken := machine(t, map[uint32]uint32{1: 7, 2: 7})
	step(t, taken, riscv.Beq(1, 2, 8))
	//
	notTaken := machine(t, map[uint32]uint32{1: 7, 2: 8})
	step(t, notTaken, riscv.Beq(1, 2, 8))
	//
	if taken.PC != 8 || notTaken.PC != 4 {
		t.Errorf("pc taken=0x%x notTaken=0x%x", taken.PC, notTaken.PC)
	}
}

func Test_Emulator_JalLink(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, nil)
	step(t, m, riscv.Jal(1, 16))
	//
	if m.Regs[1] != 4 || m.PC != 16 {
		t.Errorf("x1=0x%x pc=0x%x", m.Regs[1], m.PC)
	}
}

func Test_Emulator_Halt(t *testing.T) {
	t.Parallel()
	//
	m := machine(t, nil)
	step(t, m, riscv.Ecall())
	//
	if !m.Halted {
		t.Errorf("machine not halted after ecall")
	}
}

func Test_Emulator_UnsupportedFunct7(t *testing.T) {
	t.Parallel()
	// "mul x3, x1, x2" (funct7=0x01) is outside the supported set and must
	// not execute as add.
	m := machine(t, map[uint32]uint32{1: 6, 2: 7})
	//
	if err := m.StepInsn(riscv.EncodeR(riscv.OpReg, 0b000, 0x01, 3, 1, 2)); err == nil {
		t.Fatalf("mul executed without error (x3=%d)", m.Regs[3])
	}
	//
	if !m.Halted {
		t.Errorf("machine not halted after rejected instruction")
	}
}

func Test_Emulator_OutOfBoundsRead(t *testing.T) {
	t.Parallel()
	// Permissive policy: reads outside memory return zero, not a fault.
	m := machine(t, map[uint32]uint32{1: 0x10000})
	step(t, m, riscv.Lw(2, 1, 0))
	//
	if m.Regs[2] != 0 {
		t.Errorf("x2 = 0x%x, expected 0", m.Regs[2])
	}
}

func Test_Emulator_Run(t *testing.T) {
	t.Parallel()
	// Sum 1..5 with a countdown loop.
	prog := []uint32{
		riscv.Addi(1, 0, 5),                               // x1 = 5
		riscv.Addi(2, 0, 0),                               // x2 = 0
		riscv.Add(2, 2, 1),                                // x2 += x1
		riscv.Addi(1, 1, -1),                              // x1 -= 1
		riscv.EncodeB(riscv.OpBranch, 0b001, 1, 0, -8),    // bne x1, x0, -8
		riscv.Ecall(),
	}
	//
	m := New(prog, 0, 0, 0, 64)
	if err := m.Run(100); err != nil {
		t.Fatal(err)
	}
	//
	if m.Regs[2] != 15 {
		t.Errorf("x2 = %d, expected 15", m.Regs[2])
	}
	//
	if !m.Halted {
		t.Errorf("program did not halt")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func machine(t *testing.T, regs map[uint32]uint32) *Machine {
	t.Helper()
	//
	m := New(nil, 0, 0, 0, 64)
	for r, v := range regs {
		m.Regs[r] = v
	}
	//
	return m
}

func step(t *testing.T, m *Machine, word uint32) {
	t.Helper()
	//
	if err := m.StepInsn(word); err != nil {
		t.Fatal(err)
	}
}
