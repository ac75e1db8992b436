package mimoring

import "github.com/agilira/mimoring/dtype"

// DataArray is a zero-copy view over a slot's data array: data_length
// repetitions of the buffer's DataDtype, laid out contiguously with no
// padding (spec.md §3).
type DataArray struct {
	dt     *dtype.Dtype
	length int
	bytes  []byte
}

// Len returns the number of elements in the data array (data_length).
func (a DataArray) Len() int { return a.length }

// Elem returns a zero-copy dtype.View over element i of the data array.
// Elem panics if i is out of range, the same way an out-of-range shm slot
// index does: it indicates a programming error in the caller, not a
// recoverable runtime condition.
func (a DataArray) Elem(i int) dtype.View {
	if i < 0 || i >= a.length {
		panicInvariant("data array index %d out of range [0,%d)", i, a.length)
	}
	sz := a.dt.Size()
	off := i * sz
	return dtype.NewView(a.dt, a.bytes[off:off+sz])
}

// View is what a Writer, Reader or Observer session hands to its body
// function: a zero-copy window onto one slot's data array and metadata
// record (spec.md §4.1 "access_slot").
type View struct {
	Data DataArray
	Meta dtype.View

	// Index is the slot index this view is over. Sessions rarely need
	// it, but it is useful for logging/diagnostics.
	Index int
}

// newView builds a View over the raw bytes of slot index, split into its
// data array and single metadata record exactly as spec.md §3 describes
// slot memory layout: data array followed by the metadata record,
// contiguous, with no padding between them.
func newView(dataDtype *dtype.Dtype, dataLength, index int, raw []byte) View {
	dataSize := dataDtype.Size() * dataLength
	dataBytes := raw[:dataSize]
	metaBytes := raw[dataSize : dataSize+dtype.MetadataDtype.Size()]

	return View{
		Data:  DataArray{dt: dataDtype, length: dataLength, bytes: dataBytes},
		Meta:  dtype.NewView(dtype.MetadataDtype, metaBytes),
		Index: index,
	}
}
