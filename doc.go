// Package mimoring implements a Multiple-In/Multiple-Out shared-memory
// ring buffer for data-acquisition pipelines: independent workers publish
// fixed-shape records into named buffers and consume them from other
// buffers through short, scoped sessions that acquire a slot, touch its
// memory in place, and release it.
//
// # Quick start
//
// Single-producer / single-consumer:
//
//	d, _ := dtype.Parse("value:f32")
//	buf, err := mimoring.NewBuffer(mimoring.Config{
//		Name:       "raw-adc",
//		SlotCount:  4,
//		DataLength: 10,
//		DataDtype:  d,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer buf.Close()
//
//	buf.WithWriter(func(v mimoring.View) error {
//		for i := 0; i < 10; i++ {
//			v.Data.Elem(i).SetFloat64("value", float64(i))
//		}
//		return nil
//	})
//
//	buf.WithReader(func(v mimoring.View) error {
//		val, _ := v.Data.Elem(0).Float64("value")
//		fmt.Println(val)
//		return nil
//	})
//
// # Roles
//
// WithWriter, WithReader and WithObserver are the three scoped access
// roles of spec.md §4.3-§4.5. All three guarantee the underlying token is
// released on every exit path from the supplied function, including a
// panic, the same way the teacher guarantees MPSCConsumer.stop() and
// Logger.Close() run exactly once regardless of how the caller gets
// there.
//
// # Shutdown
//
// Buffer.SendFlushEvent() starts the cooperative shutdown cascade of
// spec.md §4.6: the first reader to observe the sentinel sets
// FlushReceived(), re-broadcasts it to peer readers, and every blocked
// writer under a non-overwrite policy wakes within one scheduling
// quantum and receives delivered=false from WithWriter.
package mimoring
