// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Image is an assembled byte sequence together with its base load
// address. A program may consist of several images loaded into disjoint
// regions of the memory map.
type Image struct {
	Base uint16
	Data []byte
}

// Program is the output of the assembler.
type Program struct {
	Images  []Image
	Symbols map[string]uint16
}

// stmt is one source line surviving to the second pass.
type stmt struct {
	lineNo  int
	line    string
	addr    uint16
	op      byte     // opcode byte, for instruction statements
	mode    addrMode // chosen addressing mode
	operand string   // unresolved operand expression
	data    []string // .byte/.word expressions
	words   bool     // data expressions are 16-bit
}

// Assembler is a two pass assembler for the trainer's 6800 instruction
// set, including the monitor handoff opcodes. Operand expressions are
// evaluated at compile time; labels and numeric equates are visible to
// the expression language.
type Assembler struct {
	Verbose bool              // If set, verbosely logs the assembler actions.
	Label   map[string]uint16 // Map of labels to addresses.
	Equate  map[string]string // Map of equates.

	predefine map[string]string // Predefines
	stmts     []stmt
}

// forms maps a mnemonic to the opcode byte for each addressing mode it
// supports, derived from the dispatch table.
var forms = map[string]map[addrMode]byte{}

func init() {
	for op, def := range opcodes {
		if def == nil {
			continue
		}
		modes := forms[def.name]
		if modes == nil {
			modes = map[addrMode]byte{}
			forms[def.name] = modes
		}
		modes[def.mode] = byte(op)
	}
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple numeric word. The classic $hh
// hex prefix is accepted alongside the strconv bases.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if strings.HasPrefix(word, "$") {
		word = "0x" + word[1:]
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	if v64 < -0x8000 || v64 > 0xFFFF {
		err = ErrValueRange
		return
	}

	value = uint16(v64)
	return
}

// symbols collects the labels and numeric equates as starlark
// predeclared values.
func (asm *Assembler) symbols() starlark.StringDict {
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value, err := asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt(int(value))
	}
	for key, value := range asm.Label {
		pred[key] = starlark.MakeInt(int(value))
	}

	return pred
}

// exprEval does compile-time expression evaluation via starlark.
func (asm *Assembler) exprEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, asm.symbols())
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < -0x8000 || st_int64 > 0xFFFF {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// eval resolves an operand expression: a plain number, a label, an
// equate, or a starlark expression over those. A bare identifier that
// resolves to nothing is an undefined label, not an expression error.
func (asm *Assembler) eval(expr string) (value uint16, err error) {
	value, err = asm.valueOf(expr)
	if err == nil {
		return
	}

	if addr, ok := asm.Label[expr]; ok {
		return addr, nil
	}
	if str, ok := asm.Equate[expr]; ok {
		return asm.valueOf(str)
	}
	if identWord.MatchString(expr) {
		return 0, ErrLabelMissing(expr)
	}

	return asm.exprEval(expr)
}

var hexWord = regexp.MustCompile(`\$[0-9a-fA-F]+`)
var identWord = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// splitLine strips the comment, expands $hh hex literals, and splits the
// line into whitespace separated words.
func splitLine(text string) (words []string) {
	line, _, _ := strings.Cut(text, ";")
	line = hexWord.ReplaceAllStringFunc(line, func(word string) string {
		return "0x" + word[1:]
	})

	for _, word := range strings.Fields(line) {
		words = append(words, word)
	}
	return
}

// Parse assembles the source into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if asm.Label == nil {
		asm.Label = make(map[string]uint16)
	}
	clear(asm.Label)
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = map[string]string{}
	}
	asm.stmts = asm.stmts[:0]

	// First pass: define labels and equates, size every statement.
	var pc uint16
	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v", lineno, line)
		}

		words := splitLine(line)
		if len(words) == 0 {
			continue
		}

		// label: prefix
		if strings.HasSuffix(words[0], ":") {
			label := strings.TrimSuffix(words[0], ":")
			if _, ok := asm.Label[label]; ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = pc
			words = words[1:]
			if len(words) == 0 {
				continue
			}
		}

		pc, err = asm.firstPass(words, lineno, line, pc)
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	// Second pass: resolve operands and emit.
	prog = &Program{Symbols: maps.Clone(asm.Label)}
	var image *Image
	for _, st := range asm.stmts {
		lineno, line = st.lineNo, st.line

		if image == nil || int(st.addr) != int(image.Base)+len(image.Data) {
			prog.Images = append(prog.Images, Image{Base: st.addr})
			image = &prog.Images[len(prog.Images)-1]
		}

		var data []byte
		data, err = asm.secondPass(&st)
		if err != nil {
			return nil, err
		}
		image.Data = append(image.Data, data...)
	}

	return
}

// firstPass handles directives and sizes one statement, returning the
// updated location counter.
func (asm *Assembler) firstPass(words []string, lineno int, line string, pc uint16) (next uint16, err error) {
	next = pc

	switch strings.ToLower(words[0]) {
	case ".equ":
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return

	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		next, err = asm.eval(words[1])
		return

	case ".byte", ".word":
		exprs := strings.Split(strings.Join(words[1:], " "), ",")
		for n, expr := range exprs {
			exprs[n] = strings.TrimSpace(expr)
		}
		isWords := strings.ToLower(words[0]) == ".word"
		size := len(exprs)
		if isWords {
			size *= 2
		}
		asm.stmts = append(asm.stmts, stmt{
			lineNo: lineno, line: line, addr: pc,
			data: exprs, words: isWords,
		})
		next = pc + uint16(size)
		return
	}

	mnemonic := strings.ToUpper(words[0])
	modes, ok := forms[mnemonic]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	operand := strings.Join(words[1:], " ")
	st := stmt{lineNo: lineno, line: line, addr: pc, operand: operand}

	st.mode, st.op, err = asm.chooseMode(modes, operand)
	if err != nil {
		return
	}
	if st.mode != modeInherent {
		switch {
		case strings.HasPrefix(operand, "#"):
			st.operand = operand[1:]
		case st.mode == modeIndexed:
			comma := strings.LastIndex(operand, ",")
			st.operand = strings.TrimSpace(operand[:comma])
		}
	}

	asm.stmts = append(asm.stmts, st)
	next = pc + 1 + uint16(st.mode.operandBytes())
	return
}

// chooseMode selects the addressing mode form for an operand shape. A
// plain address operand picks direct over extended only when its value
// is already known to fit in one byte, so forward references assemble
// as extended.
func (asm *Assembler) chooseMode(modes map[addrMode]byte, operand string) (mode addrMode, op byte, err error) {
	pick := func(tries ...addrMode) (addrMode, byte, error) {
		for _, try := range tries {
			if op, ok := modes[try]; ok {
				return try, op, nil
			}
		}
		return 0, 0, ErrModeInvalid
	}

	if operand == "" {
		if _, ok := modes[modeInherent]; !ok {
			return 0, 0, ErrOperandMissing
		}
		return pick(modeInherent)
	}
	if _, ok := modes[modeInherent]; ok {
		return 0, 0, ErrOperandExtra
	}

	if strings.HasPrefix(operand, "#") {
		return pick(modeImmediate, modeImmediate16)
	}
	if _, ok := modes[modeRelative]; ok {
		return pick(modeRelative)
	}

	lower := strings.ToLower(operand)
	if strings.HasSuffix(strings.TrimSpace(lower), ",x") {
		return pick(modeIndexed)
	}

	if _, ok := modes[modeDirect]; ok {
		if value, verr := asm.eval(operand); verr == nil && value <= 0xFF {
			return pick(modeDirect)
		}
	}
	return pick(modeExtended, modeDirect)
}

// secondPass emits the bytes for a sized statement.
func (asm *Assembler) secondPass(st *stmt) (data []byte, err error) {
	if st.data != nil {
		for _, expr := range st.data {
			var value uint16
			value, err = asm.eval(expr)
			if err != nil {
				return
			}
			if st.words {
				data = append(data, byte(value>>8), byte(value))
			} else {
				if value > 0xFF {
					err = ErrValueRange
					return
				}
				data = append(data, byte(value))
			}
		}
		return
	}

	data = append(data, st.op)
	if st.mode == modeInherent {
		return
	}

	value, err := asm.eval(st.operand)
	if err != nil {
		return
	}

	switch st.mode {
	case modeImmediate16, modeExtended:
		data = append(data, byte(value>>8), byte(value))
	case modeRelative:
		disp := int(value) - (int(st.addr) + 2)
		if disp < -128 || disp > 127 {
			err = ErrBranchRange
			return
		}
		data = append(data, byte(int8(disp)))
	default:
		if value > 0xFF {
			err = ErrValueRange
			return
		}
		data = append(data, byte(value))
	}

	return
}
