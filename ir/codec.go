package ir

import "encoding/binary"

// Encoder accumulates a function's encoded instruction stream.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Len returns the number of bytes written so far; also the byte address a
// not-yet-emitted instruction will land at.
func (e *Encoder) Len() int { return len(e.buf) }

// Bytes returns the accumulated instruction stream.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *Encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *Encoder) i32(v int32)  { e.u32(uint32(v)) }
func (e *Encoder) slot(s Slot)  { e.u16(uint16(s)) }
func (e *Encoder) span(s SlotSpan) {
	e.slot(s.Base)
	e.u16(s.Len)
}

// Patch32 overwrites a previously-emitted int32 field at byte offset at
// with v. Used by the translator's label back-patcher.
func (e *Encoder) Patch32(at int, v int32) {
	binary.LittleEndian.PutUint32(e.buf[at:at+4], uint32(v))
}

// Truncate discards everything emitted after byte offset to. Used by
// branch/compare and select fusion, which rewrite the immediately
// preceding instruction in place.
func (e *Encoder) Truncate(to int) { e.buf = e.buf[:to] }

// Decoder reads instructions out of an encoded stream, advancing an
// instruction pointer exactly as spec.md §4.1's decoding contract requires:
// a bitwise read with no allocation (beyond br_table's Targets slice) and
// no validation.
type Decoder struct {
	code []byte
}

// NewDecoder wraps code for decoding.
func NewDecoder(code []byte) *Decoder { return &Decoder{code: code} }

func (d *Decoder) u8(ip int) (uint8, int)   { return d.code[ip], ip + 1 }
func (d *Decoder) u16(ip int) (uint16, int) { return binary.LittleEndian.Uint16(d.code[ip:]), ip + 2 }
func (d *Decoder) u32(ip int) (uint32, int) { return binary.LittleEndian.Uint32(d.code[ip:]), ip + 4 }
func (d *Decoder) u64(ip int) (uint64, int) { return binary.LittleEndian.Uint64(d.code[ip:]), ip + 8 }
func (d *Decoder) i32(ip int) (int32, int) {
	v, next := d.u32(ip)
	return int32(v), next
}
func (d *Decoder) slot(ip int) (Slot, int) {
	v, next := d.u16(ip)
	return Slot(v), next
}
func (d *Decoder) span(ip int) (SlotSpan, int) {
	base, ip := d.slot(ip)
	length, ip := d.u16(ip)
	return SlotSpan{Base: base, Len: length}, ip
}
