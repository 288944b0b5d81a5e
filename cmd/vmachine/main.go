// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/logrusorgru/aurora/v4"
	"golang.org/x/term"

	"github.com/ezrec/vmachine/memory"
	"github.com/ezrec/vmachine/translate"
	"github.com/ezrec/vmachine/vm"
)

var f = translate.From

func main() {
	var config string
	var output string
	var assemble bool
	var verbose bool
	var debug bool
	var dump bool
	var stats bool
	var repl bool
	var lang string

	flag.StringVar(&config, "c", "", "YAML machine configuration")
	flag.StringVar(&output, "o", "", "Write the loaded image to a .img or .hex file")
	flag.BoolVar(&assemble, "a", false, "Load the program only, do not translate")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&debug, "debug", false, "Dump every translation record")
	flag.BoolVar(&dump, "dump", false, "Dump memory after translation")
	flag.BoolVar(&stats, "stats", false, "Print cache statistics")
	flag.BoolVar(&repl, "repl", false, "Interactive encoder and translator")
	flag.StringVar(&lang, "lang", "", "Message language, as a BCP 47 tag")

	flag.Parse()

	if len(lang) != 0 && !translate.SetLanguage(lang) {
		log.Fatalf("%v: %v", os.Args[0], f("unknown language %v", lang))
	}

	if flag.NArg() > 1 || (flag.NArg() == 0 && !repl) {
		log.Fatalf("%v: %v", os.Args[0], f("usage: %v [options] program.{s,asm,hex,img}", os.Args[0]))
	}

	cfg := vm.DefaultConfig()
	if len(config) != 0 {
		var err error
		cfg, err = vm.LoadConfigFile(config)
		if err != nil {
			log.Fatal(err)
		}
	}
	cfg.Verbose = cfg.Verbose || verbose

	machine, err := vm.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	au := aurora.New(aurora.WithColors(term.IsTerminal(int(os.Stdout.Fd()))))

	if flag.NArg() == 1 {
		err = machine.Start(flag.Arg(0))
	} else {
		err = machine.StartReader("repl.hex", strings.NewReader(""))
	}
	if err != nil {
		log.Fatal(err)
	}
	defer machine.Shutdown()

	for _, warning := range machine.Warnings {
		fmt.Fprintln(os.Stderr, au.Yellow(warning.Error()))
	}

	if len(output) != 0 {
		err = writeImage(output, machine.Image)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if repl {
		runRepl(machine, au)
		return
	}

	if !assemble {
		listing, err := machine.Run()
		for _, tr := range listing {
			fmt.Println(tr)
			if debug {
				pp.Println(tr)
			}
		}
		if err != nil {
			for _, terr := range unjoin(err) {
				fmt.Fprintln(os.Stderr, au.Red(terr.Error()).Bold())
			}
		}
	}

	if stats {
		fmt.Println(machine.Cache.Icache)
		fmt.Println(machine.Cache.Dcache)
	}

	if dump {
		err = machine.Dump(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
	}
}

// unjoin splits an errors.Join result back into its errors.
func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// writeImage saves an image as CBOR, or as one hex word per line.
func writeImage(path string, img memory.Image) (err error) {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".img", ".cbor":
		data, err = memory.EncodeImage(img)
		if err != nil {
			return
		}
	case ".hex":
		lines := make([]string, 0, len(img.Words)+1)
		lines = append(lines, fmt.Sprintf("; origin 0x%08x", img.Origin))
		for _, word := range img.Words {
			lines = append(lines, fmt.Sprintf("%08x", word))
		}
		data = []byte(strings.Join(lines, "\n") + "\n")
	default:
		err = vm.ErrFormatUnknown
		return
	}

	return os.WriteFile(path, data, 0o644)
}
