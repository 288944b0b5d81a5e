// Package vm ties main memory, the cache layer and the translation engine
// into a virtual machine that loads and translates MIPS32 programs.
package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ezrec/vmachine/cache"
	"github.com/ezrec/vmachine/engine"
	"github.com/ezrec/vmachine/internal"
	"github.com/ezrec/vmachine/memory"
	"github.com/ezrec/vmachine/mips"
)

// VM state. Memory, caches and engine exist between Start and Shutdown.
type VM struct {
	Verbose bool   // If set, enables verbose logging.
	Config  Config // Configuration used by Start.

	Memory  *memory.Memory // Main memory.
	Cache   *cache.Layer   // Instruction and data caches.
	Engine  *engine.Engine // Decode and translate engine.
	Program *mips.Program  // Listing of an assembled program, or nil.
	Image   memory.Image   // Words loaded by Start.

	Warnings []error // Assembler warnings of the loaded program.
}

// New creates a stopped virtual machine.
func New(cfg Config) (vm *VM, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	vm = &VM{
		Verbose: cfg.Verbose,
		Config:  cfg,
	}

	return
}

// Defines returns an iterator over the assembler predefines. Config
// defines come last, and override the machine's.
func (vm *VM) Defines() iter.Seq2[string, string] {
	machine := map[string]string{
		"MEMORY_WORDS": fmt.Sprintf("%d", vm.Config.MemoryWords),
		"ICACHE_LINES": fmt.Sprintf("%d", vm.Config.IcacheLines),
		"DCACHE_LINES": fmt.Sprintf("%d", vm.Config.DcacheLines),
		"ORIGIN":       fmt.Sprintf("%d", vm.Config.Origin),
	}

	return internal.Concat2(maps.All(machine), maps.All(vm.Config.Defines))
}

// Started returns true between Start and Shutdown.
func (vm *VM) Started() bool {
	return vm.Memory != nil
}

// Start creates memory, caches and engine, and loads the program image in
// filename. The image format is selected by the file extension.
func (vm *VM) Start(filename string) (err error) {
	inf, err := os.Open(filename)
	if err != nil {
		return
	}
	defer inf.Close()

	return vm.StartReader(filename, inf)
}

// StartReader is Start with the image read from input. The name is only
// used for its extension, and in errors.
func (vm *VM) StartReader(name string, input io.Reader) (err error) {
	if vm.Started() {
		err = ErrStarted
		return
	}

	defer func() {
		if err != nil {
			vm.Shutdown()
			var lerr *ErrLoad
			if !errors.As(err, &lerr) {
				err = &ErrLoad{Filename: name, Err: err}
			}
		}
	}()

	mem := memory.New(vm.Config.MemoryWords)
	mem.Verbose = vm.Verbose

	layer, err := cache.NewLayer(mem, vm.Config.IcacheLines, vm.Config.DcacheLines)
	if err != nil {
		return
	}
	layer.Icache.Verbose = vm.Verbose
	layer.Dcache.Verbose = vm.Verbose

	vm.Memory = mem
	vm.Cache = layer

	img, err := vm.readImage(name, input)
	if err != nil {
		return
	}

	err = mem.Load(img.Origin, img.Words)
	if err != nil {
		return
	}
	vm.Image = img

	vm.Engine = engine.New(layer)
	vm.Engine.Verbose = vm.Verbose
	vm.Engine.Pc = img.Origin

	if vm.Verbose {
		log.Printf("vm: loaded %d words at 0x%08x from %v", len(img.Words), img.Origin, name)
	}

	return
}

// readImage decodes a program image.
func (vm *VM) readImage(name string, input io.Reader) (img memory.Image, err error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".s", ".asm":
		return vm.assemble(input)
	case ".hex":
		return vm.readHex(name, input)
	case ".img", ".cbor":
		var data []byte
		data, err = io.ReadAll(input)
		if err != nil {
			return
		}
		return memory.DecodeImage(data)
	}

	err = ErrFormatUnknown
	return
}

func (vm *VM) assemble(input io.Reader) (img memory.Image, err error) {
	asm := &mips.Assembler{
		Verbose: vm.Verbose,
		Strict:  vm.Config.Strict,
		Origin:  vm.Config.Origin,
	}
	for key, value := range vm.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	vm.Program = prog
	vm.Warnings = asm.Warnings

	img = memory.Image{Origin: prog.Origin, Words: prog.Binary()}
	return
}

// readHex reads one hex word per line, with optional 0x prefixes and ';'
// or '#' comments. Words load at the configured origin.
func (vm *VM) readHex(name string, input io.Reader) (img memory.Image, err error) {
	img.Origin = vm.Config.Origin

	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := scanner.Text()
		if n := strings.IndexAny(text, ";#"); n >= 0 {
			text = text[:n]
		}
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}

		text = strings.TrimPrefix(strings.ToLower(text), "0x")
		var word uint64
		word, err = strconv.ParseUint(text, 16, 32)
		if err != nil {
			err = &ErrLoad{Filename: name, LineNo: lineno, Err: ErrHexWord}
			return
		}
		img.Words = append(img.Words, uint32(word))
	}

	err = scanner.Err()
	return
}

// Shutdown releases memory, caches and engine.
func (vm *VM) Shutdown() {
	vm.Memory = nil
	vm.Cache = nil
	vm.Engine = nil
	vm.Program = nil
	vm.Image = memory.Image{}
	vm.Warnings = nil
}

// isData is true for words the assembler marked as .word data.
func (vm *VM) isData(addr uint32) bool {
	if vm.Program == nil {
		return false
	}
	op := vm.Program.Debug(addr)
	return op != nil && op.Data
}

// Run translates every loaded instruction word in address order. Words
// that fail to translate are skipped; their errors are joined in err.
func (vm *VM) Run() (listing []*engine.Translation, err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}

	var errs []error
	end := vm.Image.Origin + uint32(len(vm.Image.Words))
	for addr := vm.Image.Origin; addr < end; addr++ {
		if vm.isData(addr) {
			continue
		}

		vm.Engine.Pc = addr
		tr, terr := vm.Engine.Step()
		if terr != nil {
			if vm.Program != nil {
				if op := vm.Program.Debug(addr); op != nil {
					terr = &mips.ErrSyntax{LineNo: op.LineNo, Line: strings.Join(op.Words, " "), Err: terr}
				}
			}
			errs = append(errs, terr)
			continue
		}
		listing = append(listing, tr)
	}

	err = errors.Join(errs...)
	return
}

// Peek reads a data word through the data cache.
func (vm *VM) Peek(addr uint32) (word uint32, err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}
	return vm.Cache.DcacheRead(addr)
}

// Poke writes a data word through the data cache.
func (vm *VM) Poke(addr uint32, word uint32) (err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}
	return vm.Cache.DcacheWrite(addr, word)
}

// Translate runs a single word through the engine at address pc, without
// fetching it.
func (vm *VM) Translate(pc uint32, word uint32) (tr *engine.Translation, err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}
	vm.Engine.Pc = pc
	return vm.Engine.Run(word)
}

// Dump writes the memory contents.
func (vm *VM) Dump(w io.Writer) (err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}
	return vm.Memory.Dump(w)
}

// Save writes a CBOR snapshot of the whole memory.
func (vm *VM) Save(w io.Writer) (err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}

	data, err := vm.Memory.Snapshot()
	if err != nil {
		return
	}

	_, err = w.Write(data)
	return
}

// Restore replaces the memory with a CBOR snapshot, and invalidates both
// caches. On error, memory and caches are unchanged.
func (vm *VM) Restore(input io.Reader) (err error) {
	if !vm.Started() {
		err = ErrNotStarted
		return
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	err = vm.Memory.Restore(data)
	if err != nil {
		return
	}

	vm.Cache.Reset()
	return
}
