package vm

import (
	"bytes"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/ezrec/vmachine/engine"
	"github.com/ezrec/vmachine/memory"
	"github.com/ezrec/vmachine/mips"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() Config {
	return Config{
		MemoryWords: 64,
		IcacheLines: 8,
		DcacheLines: 8,
		Origin:      4,
	}
}

var testProgram = []string{
	".equ LAST $(MEMORY_WORDS - 1)",
	"start:  addi t0, zero, 3",
	"loop:   addi t0, t0, -1",
	"        bne t0, zero, loop",
	"        sw t0, LAST(zero)",
	"        jr ra",
	"data:   .word 0xfc000000",
	"        add k0, t0, t0",
}

func TestVM(t *testing.T) {
	assert := assert.New(t)

	vm, err := New(testConfig())
	assert.NoError(err)
	assert.False(vm.Started())

	_, err = vm.Run()
	assert.ErrorIs(err, ErrNotStarted)
	_, err = vm.Peek(0)
	assert.ErrorIs(err, ErrNotStarted)
	assert.ErrorIs(vm.Poke(0, 0), ErrNotStarted)
	assert.ErrorIs(vm.Dump(&bytes.Buffer{}), ErrNotStarted)

	_, err = New(Config{})
	assert.ErrorIs(err, ErrConfigValue)
}

func TestVMAssembly(t *testing.T) {
	assert := assert.New(t)

	vm, err := New(testConfig())
	assert.NoError(err)

	err = vm.StartReader("test.s", strings.NewReader(strings.Join(testProgram, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	defer vm.Shutdown()

	assert.True(vm.Started())
	assert.Equal(uint32(4), vm.Image.Origin)
	assert.Equal(7, len(vm.Image.Words))
	assert.Equal(uint32(4), vm.Engine.Pc)
	assert.NotNil(vm.Program)

	err = vm.StartReader("again.s", strings.NewReader(""))
	assert.ErrorIs(err, ErrStarted)

	listing, err := vm.Run()
	assert.ErrorIs(err, engine.ErrRegisterUnmapped)
	var serr *mips.ErrSyntax
	if assert.True(errors.As(err, &serr)) {
		assert.Equal(8, serr.LineNo)
	}

	var names []string
	for _, tr := range listing {
		names = append(names, tr.Source.Name)
	}
	assert.Equal([]string{"addi", "addi", "bne", "sw", "jr"}, names)
	assert.Equal("sw t1, 63(zero)", listing[3].Target[0].String())
	assert.Equal(uint32(8), listing[4].Pc)

	word, err := vm.Peek(4)
	assert.NoError(err)
	assert.Equal(uint32(0x20080003), word)

	assert.NoError(vm.Poke(63, 7))
	word, err = vm.Memory.Read(63)
	assert.NoError(err)
	assert.Equal(uint32(7), word)

	assert.ErrorIs(vm.Poke(64, 7), memory.ErrAddressRange)

	buff := &bytes.Buffer{}
	assert.NoError(vm.Dump(buff))
	lines := strings.Split(strings.TrimSuffix(buff.String(), "\n"), "\n")
	assert.Equal(64, len(lines))
	assert.Equal("00000004: 20080003", lines[4])
	assert.Equal("0000003f: 00000007", lines[63])

	tr, err := vm.Translate(0, 0x03e00008)
	assert.NoError(err)
	assert.Equal("jalr zero, 0(ra)", tr.Target[0].String())

	vm.Shutdown()
	assert.False(vm.Started())
	assert.Nil(vm.Program)
}

func TestVMDefines(t *testing.T) {
	assert := assert.New(t)

	cfg := testConfig()
	cfg.Defines = map[string]string{"ORIGIN": "9", "EXTRA": "0x10"}

	vm, err := New(cfg)
	assert.NoError(err)

	defines := maps.Collect(vm.Defines())
	assert.Equal("64", defines["MEMORY_WORDS"])
	assert.Equal("8", defines["ICACHE_LINES"])
	assert.Equal("8", defines["DCACHE_LINES"])
	assert.Equal("9", defines["ORIGIN"])
	assert.Equal("0x10", defines["EXTRA"])

	err = vm.StartReader("defines.asm", strings.NewReader("addi t0, zero, $(EXTRA + ORIGIN)"))
	assert.NoError(err)
	defer vm.Shutdown()

	word, err := vm.Peek(4)
	assert.NoError(err)
	assert.Equal(uint32(0x20080019), word)
}

func TestVMStrict(t *testing.T) {
	assert := assert.New(t)

	program := "addi t0, t0, 70000\n"

	vm, err := New(testConfig())
	assert.NoError(err)
	assert.NoError(vm.StartReader("warn.s", strings.NewReader(program)))
	assert.Equal(1, len(vm.Warnings))
	vm.Shutdown()

	cfg := testConfig()
	cfg.Strict = true
	vm, err = New(cfg)
	assert.NoError(err)
	err = vm.StartReader("strict.s", strings.NewReader(program))
	assert.ErrorIs(err, mips.ErrImmediateRange)
	assert.False(vm.Started())
}

func TestVMHex(t *testing.T) {
	assert := assert.New(t)

	vm, err := New(testConfig())
	assert.NoError(err)

	hex := "0x02328020\n; comment\n03E00008 # jr ra\n\n"
	assert.NoError(vm.StartReader("prog.hex", strings.NewReader(hex)))
	assert.Equal([]uint32{0x02328020, 0x03e00008}, vm.Image.Words)
	assert.Nil(vm.Program)

	listing, err := vm.Run()
	assert.NoError(err)
	assert.Equal(2, len(listing))
	vm.Shutdown()

	err = vm.StartReader("bad.hex", strings.NewReader("0\nxyz\n"))
	assert.ErrorIs(err, ErrHexWord)
	var lerr *ErrLoad
	if assert.True(errors.As(err, &lerr)) {
		assert.Equal(2, lerr.LineNo)
		assert.Equal("bad.hex", lerr.Filename)
	}

	err = vm.StartReader("big.hex", strings.NewReader("100000000\n"))
	assert.ErrorIs(err, ErrHexWord)

	err = vm.StartReader("prog.txt", strings.NewReader(""))
	assert.ErrorIs(err, ErrFormatUnknown)
	assert.False(vm.Started())
}

func TestVMImageFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	data, err := memory.EncodeImage(memory.Image{Origin: 2, Words: []uint32{0x02328020, 0x03e00008}})
	assert.NoError(err)
	path := filepath.Join(dir, "prog.img")
	assert.NoError(os.WriteFile(path, data, 0o644))

	vm, err := New(testConfig())
	assert.NoError(err)
	assert.NoError(vm.Start(path))

	listing, err := vm.Run()
	assert.NoError(err)
	if assert.Equal(2, len(listing)) {
		assert.Equal(uint32(2), listing[0].Pc)
		assert.Equal("add s1, s2, s3", listing[0].Target[0].String())
	}
	vm.Shutdown()

	data, err = memory.EncodeImage(memory.Image{Origin: 63, Words: []uint32{1, 2}})
	assert.NoError(err)
	path = filepath.Join(dir, "big.cbor")
	assert.NoError(os.WriteFile(path, data, 0o644))
	assert.ErrorIs(vm.Start(path), memory.ErrAddressRange)
	assert.False(vm.Started())

	assert.Error(vm.Start(filepath.Join(dir, "missing.s")))
}

func TestVMSnapshot(t *testing.T) {
	assert := assert.New(t)

	vm, err := New(testConfig())
	assert.NoError(err)
	assert.ErrorIs(vm.Save(&bytes.Buffer{}), ErrNotStarted)
	assert.ErrorIs(vm.Restore(&bytes.Buffer{}), ErrNotStarted)

	err = vm.StartReader("prog.hex", strings.NewReader("20080003\n03e00008\n"))
	if !assert.NoError(err) {
		return
	}
	defer vm.Shutdown()

	snapshot := &bytes.Buffer{}
	assert.NoError(vm.Save(snapshot))
	data := snapshot.Bytes()

	assert.NoError(vm.Poke(5, 0x1234))
	word, err := vm.Peek(5)
	assert.NoError(err)
	assert.Equal(uint32(0x1234), word)
	assert.NotEqual(uint(0), vm.Cache.Dcache.Valid())

	assert.NoError(vm.Restore(bytes.NewReader(data)))
	assert.Equal(uint(0), vm.Cache.Dcache.Valid())
	assert.Equal(uint(0), vm.Cache.Icache.Valid())

	word, err = vm.Peek(5)
	assert.NoError(err)
	assert.Equal(uint32(0x03e00008), word)

	// A broken snapshot leaves memory and caches alone.
	assert.Error(vm.Restore(bytes.NewReader([]byte{0xff})))
	assert.Equal(uint(1), vm.Cache.Dcache.Valid())
	word, err = vm.Peek(4)
	assert.NoError(err)
	assert.Equal(uint32(0x20080003), word)
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	for _, empty := range []string{"", "# just a comment\n", "---\n", "~\n"} {
		cfg, err := LoadConfig(strings.NewReader(empty))
		assert.NoError(err, empty)
		assert.Equal(DefaultConfig(), cfg, empty)
	}

	text := strings.Join([]string{
		"memory_words: 128",
		"icache_lines: 4",
		"origin: 16",
		"strict: true",
		"defines:",
		"  FOO: \"1\"",
	}, "\n")
	cfg, err := LoadConfig(strings.NewReader(text))
	assert.NoError(err)
	assert.Equal(uint32(128), cfg.MemoryWords)
	assert.Equal(uint32(4), cfg.IcacheLines)
	assert.Equal(DefaultConfig().DcacheLines, cfg.DcacheLines)
	assert.Equal(uint32(16), cfg.Origin)
	assert.True(cfg.Strict)
	assert.False(cfg.Verbose)
	assert.Equal(map[string]string{"FOO": "1"}, cfg.Defines)

	for _, bad := range []string{
		"memory_words: 0",
		"dcache_lines: 0",
		"origin: 1024",
		"bogus: 1",
		"memory_words: [",
	} {
		_, err = LoadConfig(strings.NewReader(bad))
		assert.ErrorIs(err, ErrConfigValue, bad)
	}

	_, err = LoadConfig(strings.NewReader("icache_lines: 0"))
	var cerr *ErrConfig
	if assert.True(errors.As(err, &cerr)) {
		assert.Equal("icache_lines", cerr.Field)
	}

	path := filepath.Join(t.TempDir(), "vm.yaml")
	assert.NoError(os.WriteFile(path, []byte("memory_words: 0\n"), 0o644))
	_, err = LoadConfigFile(path)
	assert.ErrorIs(err, ErrConfigValue)
	var lerr *ErrLoad
	if assert.True(errors.As(err, &lerr)) {
		assert.Equal(path, lerr.Filename)
	}
}
