package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gostonefire/linhashfile"
	"github.com/gostonefire/linhashfile/config"
	"github.com/gostonefire/linhashfile/record"
	"github.com/pkg/errors"
)

const usage = `usage: hashfile [-conf path] <command> [arguments]

commands:
  insert <key> <value>   add a record
  get <key>              print the value of a record
  edit <key> <value>     replace the value of a record
  delete <key>           remove a record
  stat                   print usage statistics
  dump                   list every bucket and overflow block
`

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute - Parses flags, loads the configuration and runs one command. Failures are logged to errOut and returned
// as a non-zero exit status.
func execute(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("hashfile", flag.ContinueOnError)
	fs.SetOutput(errOut)
	confPath := fs.String("conf", "", "path to conf file (yaml, json or toml)")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*confPath)
	if err != nil {
		slog.New(slog.NewTextHandler(errOut, nil)).Error("failed to load configuration", "error", err)
		return 1
	}

	err = run(cfg, fs.Args(), out)
	if err != nil {
		cfg.Logger(errOut).Error("command failed", "args", fs.Args(), "error", err)
		return 1
	}

	return 0
}

// run - Opens the hash file of cfg, executes one command and closes the file again
func run(cfg *config.Config, args []string, out io.Writer) (err error) {
	if len(args) == 0 {
		return errors.New(usage)
	}

	hf, _, err := linhashfile.NewKVHashFile(linhashfile.HashFileConf{
		Name:              cfg.File.Name,
		BlockSize:         cfg.File.BlockSize,
		OverflowBlockSize: cfg.File.OverflowBlockSize,
		Logger:            cfg.Logger(os.Stderr),
	}, cfg.Record.KeyLength, cfg.Record.ValueLength, nil)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := hf.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	cmd := &command{cfg: cfg, hf: hf, out: out}

	return cmd.execute(args[0], args[1:])
}

type command struct {
	cfg *config.Config
	hf  *linhashfile.HashFile[record.KV]
	out io.Writer
}

func (C *command) execute(name string, args []string) (err error) {
	want := map[string]int{"insert": 2, "get": 1, "edit": 2, "delete": 1, "stat": 0, "dump": 0}
	n, ok := want[name]
	if !ok {
		return errors.Errorf("unknown command %q\n%s", name, usage)
	}
	if len(args) != n {
		return errors.Errorf("%s takes %d arguments, got %d", name, n, len(args))
	}

	switch name {
	case "insert":
		return C.insert(args[0], args[1])
	case "get":
		return C.get(args[0])
	case "edit":
		return C.edit(args[0], args[1])
	case "delete":
		return C.delete(args[0])
	case "stat":
		return C.stat()
	default:
		return C.hf.Dump(C.out)
	}
}

func (C *command) insert(key, value string) error {
	r, err := C.record(key, value)
	if err != nil {
		return err
	}

	_, found, err := C.hf.Get(r)
	if err != nil {
		return err
	}
	if found {
		return errors.Errorf("key %q already exists, use edit", key)
	}

	return C.hf.Insert(r)
}

func (C *command) get(key string) error {
	r, err := C.record(key, "")
	if err != nil {
		return err
	}

	stored, found, err := C.hf.Get(r)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("key %q not found", key)
	}

	_, err = fmt.Fprintln(C.out, string(bytes.TrimRight(stored.Value, "\x00")))

	return err
}

func (C *command) edit(key, value string) error {
	r, err := C.record(key, value)
	if err != nil {
		return err
	}

	edited, err := C.hf.Edit(r)
	if err != nil {
		return err
	}
	if !edited {
		return errors.Errorf("key %q not found", key)
	}

	return nil
}

func (C *command) delete(key string) error {
	r, err := C.record(key, "")
	if err != nil {
		return err
	}

	removed, err := C.hf.Delete(r)
	if err != nil {
		return err
	}
	if !removed {
		return errors.Errorf("key %q not found", key)
	}

	return nil
}

func (C *command) stat() error {
	s, err := C.hf.Stat(false)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(C.out,
		"Records: %d (%d in buckets, %d in overflow)\nBuckets: %d\nOverflow blocks: %d\n"+
			"Hash power: %d\nSplit pointer: %d\nHash edge: %d\nDensity: %.3f\n"+
			"Chains with overflow: %d\nMax chain length: %d\n",
		s.Records, s.BucketRecords, s.OverflowRecords, s.Buckets, s.OverflowBlocks,
		s.HashPower, s.SplitPointer, s.HashEdge, s.Density,
		s.ChainsWithOverflow, s.MaxChainLength)

	return err
}

// record - Builds a record from command line strings, zero padded to the configured lengths
func (C *command) record(key, value string) (r record.KV, err error) {
	if len(key) > C.cfg.Record.KeyLength {
		return r, errors.Errorf("key %q longer than %d bytes", key, C.cfg.Record.KeyLength)
	}
	if len(value) > C.cfg.Record.ValueLength {
		return r, errors.Errorf("value longer than %d bytes", C.cfg.Record.ValueLength)
	}

	r.Key = make([]byte, C.cfg.Record.KeyLength)
	r.Value = make([]byte, C.cfg.Record.ValueLength)
	copy(r.Key, key)
	copy(r.Value, value)

	return
}
