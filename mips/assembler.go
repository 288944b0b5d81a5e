// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package mips

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reParen = regexp.MustCompile(`\$\(([^()]|\([^()]*\))*\)`)
)

// Assembler is a two pass assembler for MIPS32 programs.
//
// The first pass assigns word addresses, records labels and evaluates
// .equ directives. The second pass substitutes equates and labels, and
// encodes each line.
type Assembler struct {
	Verbose  bool     // If set, verbosely logs the assembler actions.
	Strict   bool     // If set, out of range operands are errors.
	Origin   uint32   // Word address of the first opcode.
	Opcode   []Opcode // List of generated opcodes.
	Warnings []error  // Truncated operands, with their source lines.

	predefine map[string]string // Predefines
	Label     map[string]uint32 // Map of labels to word addresses.
	Equate    map[string]string // Map of equates.
}

// pendingLine is a source line waiting for the second pass.
type pendingLine struct {
	lineno int
	line   string
	ip     uint32
	data   bool
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = ParseNumber(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeUint64(uint64(ip))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
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
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expandLine replaces every $(...) in the line with its value.
func (asm *Assembler) expandLine(line string) (expanded string, err error) {
	expanded = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	return
}

// stripComment removes ';' and '#' comments, and surrounding space.
func stripComment(text string) string {
	if n := strings.IndexAny(text, ";#"); n >= 0 {
		text = text[:n]
	}
	return strings.TrimSpace(text)
}

// splitItems splits a comma separated list, ignoring commas inside
// parentheses.
func splitItems(text string) (items []string) {
	depth := 0
	start := 0
	for n, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, text[start:n])
				start = n + 1
			}
		}
	}
	items = append(items, text[start:])
	return
}

// defineLabels records the leading 'label:' definitions of a line at ip,
// and returns the rest of the line.
func (asm *Assembler) defineLabels(line string, ip uint32) (rest string, err error) {
	rest = line
	for {
		name, tail, ok := strings.Cut(rest, ":")
		if !ok || strings.ContainsAny(name, " \t") {
			return
		}
		tail = strings.TrimSpace(tail)
		if !reLabel.MatchString(name) {
			err = ErrLabelInvalid
			return
		}
		if _, is_reg := RegisterLookup(name); is_reg {
			err = ErrLabelInvalid
			return
		}
		if _, ok := asm.Label[name]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[name] = ip
		rest = tail
		if len(rest) == 0 {
			return
		}
	}
}

// defineEquate handles a '.equ NAME VALUE' directive.
func (asm *Assembler) defineEquate(words []string) (err error) {
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
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint32)
	asm.Opcode = asm.Opcode[:0]
	asm.Warnings = nil
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var pending []pendingLine
	ip := asm.Origin

	for scanner.Scan() {
		lineno += 1
		line = stripComment(scanner.Text())

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		if len(line) == 0 {
			continue
		}

		var text string
		text, err = asm.defineLabels(line, ip)
		if err != nil {
			return
		}

		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case ".equ":
			asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
			text, err = asm.expandLine(text)
			if err != nil {
				return
			}
			err = asm.defineEquate(strings.Fields(text))
			if err != nil {
				return
			}
		case ".word":
			values := splitItems(strings.TrimPrefix(text, ".word"))
			for _, value := range values {
				value = strings.TrimSpace(value)
				if len(value) == 0 {
					err = ErrWordSyntax
					return
				}
				pending = append(pending, pendingLine{lineno: lineno, line: value, ip: ip, data: true})
				ip++
			}
		default:
			if strings.HasPrefix(words[0], ".") {
				err = ErrDirectiveInvalid
				return
			}
			pending = append(pending, pendingLine{lineno: lineno, line: text, ip: ip})
			ip++
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	enc := &Encoder{Verbose: asm.Verbose, Strict: asm.Strict}

	for _, pl := range pending {
		lineno = pl.lineno
		line = pl.line
		asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

		var text string
		text, err = asm.expandLine(pl.line)
		if err != nil {
			return
		}

		op := Opcode{LineNo: pl.lineno, Ip: pl.ip, Data: pl.data}

		if pl.data {
			op.Words, op.Word, err = asm.dataWord(text)
		} else {
			warned := len(enc.Warnings)
			op.Words, err = asm.substitute(Tokenize(text), pl.ip)
			if err != nil {
				return
			}
			op.Word, err = enc.EncodeWords(op.Words)
			for _, warning := range enc.Warnings[warned:] {
				asm.Warnings = append(asm.Warnings, &ErrSyntax{LineNo: lineno, Line: line, Err: warning})
			}
		}
		if err != nil {
			return
		}

		asm.Opcode = append(asm.Opcode, op)
	}

	prog = &Program{
		Origin:  asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// resolve returns the value of an equate, or the word itself.
func (asm *Assembler) resolve(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}
	return word
}

// dataWord evaluates the value of one .word item.
func (asm *Assembler) dataWord(text string) (words []string, word uint32, err error) {
	value := asm.resolve(text)
	if ip, ok := asm.Label[value]; ok {
		value = fmt.Sprintf("%d", ip)
	}

	v64, err := ParseNumber(value)
	if err != nil {
		if reLabel.MatchString(value) {
			err = ErrLabelMissing(value)
		}
		return
	}
	if v64 < -(1<<31) || v64 > 0xffffffff {
		err = &ErrRange{Field: ".word", Value: v64, Bits: 32}
		return
	}

	words = []string{".word", value}
	word = uint32(v64)
	return
}

// substitute replaces equates and labels in the operands of an instruction
// located at ip. Labels in branch offsets become word offsets relative to
// the next instruction; all other labels become word addresses.
func (asm *Assembler) substitute(words []string, ip uint32) (out []string, err error) {
	out = slices.Clone(words)
	if len(out) == 0 {
		return
	}

	out[0] = asm.resolve(out[0])

	numeric := -1
	inst, known := Lookup(out[0])
	if known {
		numeric = inst.Operands.Numeric()
	}

	for n := 1; n < len(out); n++ {
		word := asm.resolve(out[n])
		out[n] = word

		label, is_label := asm.Label[word]
		switch {
		case is_label && known && n == numeric && inst.Operands == OPERANDS_RT_RS_BRANCH:
			out[n] = fmt.Sprintf("%d", int64(label)-int64(ip+1))
		case is_label:
			out[n] = fmt.Sprintf("%d", label)
		case n == numeric:
			_, is_reg := RegisterLookup(word)
			if !is_reg && reLabel.MatchString(word) {
				err = ErrLabelMissing(word)
				return
			}
		}
	}

	return
}
