// Command mimoringctl builds a Buffer from flags, runs a small
// synthetic writer/reader pair against it, and prints one final
// GetStats() snapshot when the reader has drained the buffer. It is the minimal standalone tool every
// implementation of this pattern ships to sanity-check a buffer outside
// a full worker pipeline — the pipeline, YAML setup loader and buffer
// manager UI remain out of scope (spec.md §1), this is just flags in,
// stats out.
package main

import (
	"fmt"
	"os"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/mimoring"
	"github.com/agilira/mimoring/dtype"
)

func main() {
	fs := flashflags.New("mimoringctl")
	name := fs.String("name", "demo", "buffer name")
	slots := fs.Int("slots", 4, "slot count")
	length := fs.Int("length", 10, "elements per slot data array")
	descriptor := fs.String("dtype", "value:f32", "structured dtype descriptor, e.g. value:f32,flags:u8")
	overwrite := fs.Bool("overwrite", true, "overwrite policy")
	events := fs.Int("events", 20, "number of records the demo writer produces")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mimoringctl:", err)
		os.Exit(2)
	}

	if err := run(*name, *slots, *length, *descriptor, *overwrite, *events); err != nil {
		fmt.Fprintln(os.Stderr, "mimoringctl:", err)
		os.Exit(1)
	}
}

func run(name string, slots, length int, descriptor string, overwrite bool, events int) error {
	d, err := dtype.Parse(descriptor)
	if err != nil {
		return fmt.Errorf("parsing dtype: %w", err)
	}

	buf, err := mimoring.NewBuffer(mimoring.Config{
		Name:       name,
		SlotCount:  slots,
		DataLength: length,
		DataDtype:  d,
		Overwrite:  &overwrite,
	})
	if err != nil {
		return fmt.Errorf("creating buffer: %w", err)
	}
	defer buf.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < events; i++ {
			buf.WithWriter(func(v mimoring.View) error {
				for j := 0; j < v.Data.Len(); j++ {
					_ = v.Data.Elem(j).SetFloat64("value", float64(i))
				}
				return nil
			})
		}
		buf.SendFlushEvent()
	}()

	consumed := 0
	for {
		delivered, err := buf.WithReader(func(v mimoring.View) error {
			consumed++
			return nil
		})
		if err != nil {
			return fmt.Errorf("reader: %w", err)
		}
		if !delivered {
			break
		}
	}

	<-done

	stats := buf.GetStats()
	fmt.Printf("buffer %q: consumed=%d stats=%s\n", buf.Name(), consumed, stats)
	return nil
}
