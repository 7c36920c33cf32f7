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

// Package program supplies the compiler with its inputs: an ordered list of
// 32-bit little-endian instruction words, an entry address and a static data
// image.  The compiler does not care how these were obtained.
package program

import (
	"bufio"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

// Program is an instruction sequence with its entry address and static data
// image.
type Program struct {
	// Instruction words in program order.
	Words []uint32
	// Address of Words[0].
	Entry uint32
	// Static data image loaded at DataBase.
	Data     []byte
	DataBase uint32
}

// Load reads a program from file, choosing the parser by extension: ".hex"
// for textual word listings, ".bin" for raw little-endian words, anything
// else is treated as an ELF executable.
func Load(filename string) (*Program, error) {
	switch path.Ext(filename) {
	case ".hex":
		return LoadHex(filename)
	case ".bin":
		return LoadBin(filename)
	default:
		return LoadELF(filename)
	}
}

// LoadHex parses a textual program listing: one instruction word per line in
// hexadecimal, with '#' comments and blank lines ignored.
func LoadHex(filename string) (*Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer f.Close()
	//
	var (
		words   []uint32
		scanner = bufio.NewScanner(f)
		lineno  = 0
	)
	//
	for scanner.Scan() {
		lineno++
		//
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		//
		if line == "" {
			continue
		}
		//
		word, err := strconv.ParseUint(strings.TrimPrefix(line, "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: malformed instruction word %q", filename, lineno, line)
		}
		//
		words = append(words, uint32(word))
	}
	//
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	//
	return &Program{Words: words}, nil
}

// LoadBin reads raw little-endian instruction words.
func LoadBin(filename string) (*Program, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	} else if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a whole number of words", filename, len(data))
	}
	//
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	//
	return &Program{Words: words}, nil
}

// LoadELF extracts the entry address, instruction words and static data image
// from a 32-bit little-endian RISC-V executable.  The executable segment
// containing the entry point supplies the text; all other loadable segments
// are concatenated into the data image.
func LoadELF(filename string) (*Program, error) {
	f, err := elf.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer f.Close()
	//
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%s: not a RISC-V executable (machine %s)", filename, f.Machine)
	} else if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("%s: not a 32-bit executable", filename)
	}
	//
	prog := &Program{Entry: uint32(f.Entry)}
	//
	for _, seg := range f.Progs {
		if seg.Type != elf.PT_LOAD {
			continue
		}
		//
		data := make([]byte, seg.Memsz)
		if _, err := seg.ReadAt(data[:seg.Filesz], 0); err != nil {
			return nil, fmt.Errorf("%s: reading segment at 0x%x: %w", filename, seg.Vaddr, err)
		}
		//
		vaddr := uint32(seg.Vaddr)
		//
		if seg.Flags&elf.PF_X != 0 && prog.Entry >= vaddr && prog.Entry < vaddr+uint32(seg.Memsz) {
			// Text segment: decode from the entry point onwards.
			text := data[prog.Entry-vaddr:]
			for i := 0; i+4 <= len(text); i += 4 {
				prog.Words = append(prog.Words, binary.LittleEndian.Uint32(text[i:]))
			}
		} else {
			// Data segment.
			if prog.Data == nil {
				prog.DataBase = vaddr
			}
			//
			prog.Data = append(prog.Data, data...)
		}
	}
	//
	if len(prog.Words) == 0 {
		return nil, fmt.Errorf("%s: no executable segment covers the entry point 0x%x", filename, prog.Entry)
	}
	//
	return prog, nil
}
