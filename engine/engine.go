package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/k0kubun/pp/v3"

	"github.com/ezrec/vmachine/mips"
	"github.com/ezrec/vmachine/rv32"
)

// Fetcher supplies instruction words, normally from the instruction cache.
type Fetcher interface {
	IcacheRead(addr uint32) (word uint32, err error)
}

// Translation is the result of one engine step.
type Translation struct {
	Pc      uint32             // Word address of the source instruction.
	Word    uint32             // Source instruction word.
	Decoded mips.Decoded       // Decoded source fields.
	Source  mips.Instruction   // Matched source instruction.
	Target  []rv32.Instruction // Equivalent target instructions, in order.
}

// String returns the source and target assembly of the translation.
func (tr *Translation) String() string {
	targets := make([]string, len(tr.Target))
	for n, inst := range tr.Target {
		targets[n] = inst.String()
	}
	return fmt.Sprintf("%08x: %08x  %-24v => %v", tr.Pc, tr.Word, tr.Decoded.String(), strings.Join(targets, "; "))
}

// Engine decodes and translates one instruction word at a time.
type Engine struct {
	Verbose bool   // If set, logs every state and decode.
	Pc      uint32 // Word address of the next fetch.
	State   State  // Last state reached.

	fetcher Fetcher
	printer *pp.PrettyPrinter
}

// New creates an engine that fetches through fetcher, starting at address 0.
func New(fetcher Fetcher) (eng *Engine) {
	printer := pp.New()
	printer.SetColoringEnabled(false)

	eng = &Engine{
		State:   STATE_DONE,
		fetcher: fetcher,
		printer: printer,
	}

	return
}

func (eng *Engine) enter(state State) {
	eng.State = state
	if eng.Verbose {
		log.Printf("engine: 0x%08x: %v", eng.Pc, state)
	}
}

// Step fetches the word at Pc, translates it and advances Pc by one word.
// On error, Pc is not advanced.
func (eng *Engine) Step() (tr *Translation, err error) {
	eng.enter(STATE_FETCH)

	word, err := eng.fetcher.IcacheRead(eng.Pc)
	if err != nil {
		err = &ErrTranslate{Pc: eng.Pc, State: STATE_FETCH, Err: err}
		eng.State = STATE_ERROR
		return
	}

	tr, err = eng.Run(word)
	if err != nil {
		return
	}

	eng.Pc++
	return
}

// Run translates a word that was fetched from Pc.
func (eng *Engine) Run(word uint32) (tr *Translation, err error) {
	state := STATE_CLASSIFY
	defer func() {
		if err != nil {
			err = &ErrTranslate{Pc: eng.Pc, Word: word, State: state, Err: err}
			eng.State = STATE_ERROR
		}
	}()

	eng.enter(state)
	format := mips.Classify(word)

	state = STATE_DECODE
	eng.enter(state)
	dec := mips.Decode(word)
	if eng.Verbose {
		log.Printf("engine: %v format\n%v", format, eng.printer.Sprint(dec))
	}

	state = STATE_MATCH
	eng.enter(state)
	inst, ok := dec.Instruction()
	if !ok {
		err = ErrInstructionUnsupported
		return
	}
	apply, ok := rules[inst.Name]
	if !ok {
		err = ErrInstructionUnsupported
		return
	}

	state = STATE_EMIT
	eng.enter(state)
	em := &emitter{pc: eng.Pc}
	apply(em, dec)
	if em.err != nil {
		err = em.err
		return
	}

	tr = &Translation{
		Pc:      eng.Pc,
		Word:    word,
		Decoded: dec,
		Source:  inst,
		Target:  em.out,
	}

	eng.enter(STATE_DONE)
	if eng.Verbose {
		log.Printf("engine: %v", tr)
	}

	return
}
