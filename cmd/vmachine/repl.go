package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/logrusorgru/aurora/v4"

	"github.com/ezrec/vmachine/internal"
	"github.com/ezrec/vmachine/mips"
	"github.com/ezrec/vmachine/rv32"
	"github.com/ezrec/vmachine/vm"
)

const replHelpMessage = `
Enter a MIPS32 instruction to encode and translate it at the current address.
Commands start with a colon:

:word WORD        Translate an instruction word
:peek ADDR        Read a word through the data cache
:poke ADDR WORD   Write a word through the data cache
:pc ADDR          Set the current address
:rv WORD          Disassemble an RV32 word
:dump             Dump memory
:save FILE        Save a memory snapshot
:load FILE        Restore a memory snapshot
:stats            Print cache statistics
:help             Print this help message
:exit             Exit
`

var replCommands = []string{":word", ":rv", ":peek", ":poke", ":pc", ":dump", ":save", ":load", ":stats", ":help", ":exit"}

// repl holds the state of an interactive session.
type repl struct {
	machine *vm.VM
	au      *aurora.Aurora
	enc     mips.Encoder
	pc      uint32
}

func (r *repl) fail(err error) {
	fmt.Fprintln(os.Stderr, r.au.Red(err.Error()).Bold())
}

func parseWord(text string) (word uint32, err error) {
	value, err := strconv.ParseUint(text, 0, 32)
	word = uint32(value)
	return
}

func (r *repl) translate(word uint32) {
	tr, err := r.machine.Translate(r.pc, word)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Println(r.au.Yellow(tr.String()))
	r.pc++
}

// snapshot saves or loads a memory snapshot file.
func (r *repl) snapshot(words []string) {
	if len(words) != 2 {
		r.fail(errors.New(f("%v takes a file name", words[0])))
		return
	}

	var err error
	switch words[0] {
	case ":save":
		var outf *os.File
		outf, err = os.Create(words[1])
		if err != nil {
			break
		}
		err = errors.Join(r.machine.Save(outf), outf.Close())
	case ":load":
		var inf *os.File
		inf, err = os.Open(words[1])
		if err != nil {
			break
		}
		err = r.machine.Restore(inf)
		inf.Close()
	}
	if err != nil {
		r.fail(err)
	}
}

func (r *repl) command(words []string) {
	if words[0] == ":save" || words[0] == ":load" {
		r.snapshot(words)
		return
	}

	args := make([]uint32, 0, len(words)-1)
	for _, word := range words[1:] {
		value, err := parseWord(word)
		if err != nil {
			r.fail(err)
			return
		}
		args = append(args, value)
	}

	need := map[string]int{":word": 1, ":rv": 1, ":peek": 1, ":poke": 2, ":pc": 1}[words[0]]
	if len(args) != need {
		r.fail(errors.New(f("%v takes %d arguments", words[0], need)))
		return
	}

	switch words[0] {
	case ":word":
		r.translate(args[0])
	case ":rv":
		inst, ok := rv32.Decode(args[0])
		if !ok {
			r.fail(errors.New(f("%08x: not an RV32 instruction", args[0])))
			return
		}
		fmt.Printf("%08x: %v\n", args[0], inst)
	case ":peek":
		word, err := r.machine.Peek(args[0])
		if err != nil {
			r.fail(err)
			return
		}
		fmt.Printf("%08x: %08x\n", args[0], word)
	case ":poke":
		err := r.machine.Poke(args[0], args[1])
		if err != nil {
			r.fail(err)
		}
	case ":pc":
		r.pc = args[0]
	case ":dump":
		err := r.machine.Dump(os.Stdout)
		if err != nil {
			r.fail(err)
		}
	case ":stats":
		fmt.Println(r.machine.Cache.Icache)
		fmt.Println(r.machine.Cache.Dcache)
	case ":help":
		fmt.Print(replHelpMessage)
	case ":exit":
		// Handled by the exit checker.
	default:
		r.fail(errors.New(f("unknown command %v", words[0])))
	}
}

func (r *repl) execute(line string) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	if strings.HasPrefix(line, ":") {
		r.command(strings.Fields(line))
		return
	}

	r.enc.Warnings = nil
	word, err := r.enc.Encode(line)
	if err != nil {
		r.fail(err)
		return
	}
	for _, warning := range r.enc.Warnings {
		fmt.Fprintln(os.Stderr, r.au.Yellow(warning.Error()))
	}

	r.translate(word)
}

// suggestions lists the commands, mnemonics and register names.
func suggestions() (suggests []prompt.Suggest) {
	mnemonic := func(inst mips.Instruction) prompt.Suggest {
		return prompt.Suggest{Text: inst.Name, Description: inst.Operands.String()}
	}
	register := func(reg mips.Register) prompt.Suggest {
		return prompt.Suggest{Text: reg.String(), Description: f("register %d", uint8(reg))}
	}
	command := func(cmd string) prompt.Suggest {
		return prompt.Suggest{Text: cmd}
	}

	return slices.Collect(internal.Concat(
		internal.Map(slices.Values(replCommands), command),
		internal.Map(mips.Instructions(), mnemonic),
		internal.Map(mips.Registers(), register),
	))
}

func runRepl(machine *vm.VM, au *aurora.Aurora) {
	r := &repl{
		machine: machine,
		au:      au,
		enc:     mips.Encoder{Strict: machine.Config.Strict},
		pc:      machine.Config.Origin,
	}

	suggests := suggestions()
	suggest := func(d prompt.Document) []prompt.Suggest {
		if len(d.GetWordBeforeCursor()) == 0 {
			return nil
		}
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), false)
	}

	livePrefix := func() (string, bool) {
		return fmt.Sprintf("%08x> ", r.pc), true
	}

	exitChecker := func(in string, breakline bool) bool {
		return breakline && strings.TrimSpace(in) == ":exit"
	}

	options := []prompt.Option{
		prompt.OptionLivePrefix(livePrefix),
		prompt.OptionSetExitCheckerOnInput(exitChecker),
	}
	prompt.New(r.execute, suggest, options...).Run()
}
