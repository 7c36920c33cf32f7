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

// Package diff drives the instruction compiler and the reference emulator
// over the same instructions and initial state, and checks that the two
// agree.  Agreement is value-level: the compiled gates are evaluated on the
// concrete pre-state bits and the resulting registers, PC and memory compared
// bit-for-bit with the emulator's post-state.  Merely agreeing on
// success/failure is not sufficient.
package diff

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-zkriscv/pkg/circuit"
	"github.com/consensys/go-zkriscv/pkg/riscv"
	"github.com/consensys/go-zkriscv/pkg/riscv/compiler"
	"github.com/consensys/go-zkriscv/pkg/riscv/emulator"
	log "github.com/sirupsen/logrus"
)

// DecodeMismatchError signals that the compiler and the emulator disagreed
// on whether an instruction is executable at all.  This indicates a bug in
// one of the two engines and is always a hard failure, never suppressed.
type DecodeMismatchError struct {
	Index      uint
	Word       uint32
	CompileErr error
	EmulateErr error
}

func (e *DecodeMismatchError) Error() string {
	return fmt.Sprintf("instruction %d (0x%08x): engines disagree (compile: %v, emulate: %v)",
		e.Index, e.Word, e.CompileErr, e.EmulateErr)
}

// Result records the outcome of checking one instruction.
type Result struct {
	Index uint
	Word  uint32
	// Disassembly of the word, for reporting.
	Insn string
	// Err is nil when both engines agreed.
	Err error
}

// Ok reports whether this instruction's compiled behaviour matched the
// emulator.
func (r Result) Ok() bool {
	return r.Err == nil
}

// PreState captures the concrete machine state an instruction executes from.
type PreState struct {
	Regs  [32]uint32
	PC    uint32
	Image []byte
}

// CheckInstruction verifies one instruction from a given pre-state: it
// emulates one step, compiles one circuit, asserts success/failure
// agreement, then evaluates the circuit and compares every state bit.
func CheckInstruction(cfg compiler.Config, word uint32, pre PreState, index uint) error {
	// Ground truth first.
	m := emulator.New(nil, pre.PC, pre.PC, cfg.MemBase, cfg.MemoryBytes())
	m.Regs = pre.Regs
	m.Regs[0] = 0
	//
	if len(pre.Image) > 0 {
		if err := m.LoadImage(cfg.MemBase, pre.Image); err != nil {
			return err
		}
	}
	//
	emulateErr := m.StepInsn(word)
	// Now the circuit.
	p, state, err := compiler.New(cfg)
	if err != nil {
		return err
	}
	//
	state, compileErr := p.CompileInstruction(state, word, index)
	// Compiling must succeed exactly when emulation does.
	if (compileErr == nil) != (emulateErr == nil) {
		return &DecodeMismatchError{index, word, compileErr, emulateErr}
	} else if compileErr != nil {
		// Both engines rejected the instruction: agreement.
		log.Debugf("instruction %d rejected by both engines: %v", index, compileErr)
		return nil
	}
	//
	circ, err := p.Finalize(state)
	if err != nil {
		return err
	}
	//
	return compareStates(circ, state, m, pre, cfg)
}

// CheckProgram verifies an instruction sequence by walking the emulator's
// trace: each instruction is checked independently from the concrete
// pre-state the emulator reached before it.
func CheckProgram(cfg compiler.Config, words []uint32, initRegs [32]uint32, image []byte, entry uint32) []Result {
	var (
		results []Result
		m       = emulator.New(words, entry, entry, cfg.MemBase, cfg.MemoryBytes())
	)
	//
	m.Regs = initRegs
	m.Regs[0] = 0
	//
	if len(image) > 0 {
		if err := m.LoadImage(cfg.MemBase, image); err != nil {
			return []Result{{0, 0, "", err}}
		}
	}
	//
	max := uint(len(words))
	if cfg.MaxInsns != 0 && cfg.MaxInsns < max {
		max = cfg.MaxInsns
	}
	//
	for i := uint(0); i < max && !m.Halted; i++ {
		index := (m.PC - entry) / 4
		if uint(index) >= uint(len(words)) {
			break
		}
		//
		word := words[index]
		pre := snapshot(m)
		err := CheckInstruction(cfg, word, pre, i)
		results = append(results, Result{i, word, disasm(word), err})
		// Advance the trace regardless of the outcome above.
		if m.StepInsn(word) != nil {
			break
		}
	}
	//
	return results
}

func snapshot(m *emulator.Machine) PreState {
	mem, _ := m.Memory()
	image := make([]byte, len(mem))
	copy(image, mem)
	//
	return PreState{m.Regs, m.PC, image}
}

func disasm(word uint32) string {
	insn, err := riscv.Decode(word)
	if err != nil {
		return fmt.Sprintf(".word 0x%08x", word)
	}
	//
	return insn.String()
}

// compareStates evaluates the compiled gates against the pre-state bits and
// checks PC, registers and memory bit-for-bit against the emulator.
func compareStates(circ *circuit.Circuit, state compiler.State, m *emulator.Machine, pre PreState, cfg compiler.Config) error {
	values, err := circ.Compute(compiler.InputWitness(cfg, pre.PC, pre.Regs, pre.Image))
	if err != nil {
		return err
	}
	//
	if pc := uint32(state.PC.ValueIn(values)); pc != m.PC {
		return fmt.Errorf("pc mismatch: circuit 0x%08x, emulator 0x%08x", pc, m.PC)
	}
	//
	for i, reg := range state.Regs {
		if v := uint32(reg.ValueIn(values)); v != m.Regs[i] {
			return fmt.Errorf("x%d mismatch: circuit 0x%08x, emulator 0x%08x", i, v, m.Regs[i])
		}
	}
	//
	mem, _ := m.Memory()
	//
	for i, b := range memoryBytes(state, values) {
		if i < len(mem) && b != mem[i] {
			return fmt.Errorf("memory mismatch at 0x%x: circuit 0x%02x, emulator 0x%02x",
				cfg.MemBase+uint32(i), b, mem[i])
		}
	}
	//
	return nil
}

func memoryBytes(state compiler.State, values *bitset.BitSet) []byte {
	wires := state.Mem.Bits()
	bytes := make([]byte, len(wires)/8)
	//
	for i := range bytes {
		var b byte
		//
		for j := 0; j < 8; j++ {
			if values.Test(uint(wires[i*8+j])) {
				b |= 1 << j
			}
		}
		//
		bytes[i] = b
	}
	//
	return bytes
}
