package goburrow

import (
	"encoding/binary"
)

// uint162Bytes creates a big-endian byte sequence from uint16 data.
func uint162Bytes(value ...uint16) []byte {
	data := make([]byte, 2*len(value))
	for i, v := range value {
		binary.BigEndian.PutUint16(data[i*2:], v)
	}
	return data
}

// bytes2Uint16 bytes convert to uint16 for register.
func bytes2Uint16(buf []byte) []uint16 {
	data := make([]uint16, 0, len(buf)/2)
	for i := 0; i < len(buf)/2; i++ {
		data = append(data, binary.BigEndian.Uint16(buf[i*2:]))
	}
	return data
}

// bools2Bytes packs coil status LSB-first into the wire layout.
func bools2Bytes(values []bool) []byte {
	data := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			data[i/8] |= 1 << uint(i%8)
		}
	}
	return data
}

// bytes2Bools unpacks packed coil status; quantity trims the pad bits of
// the final byte.
func bytes2Bools(buf []byte, quantity uint16) []bool {
	n := int(quantity)
	if max := len(buf) * 8; n > max {
		n = max
	}
	values := make([]bool, n)
	for i := 0; i < n; i++ {
		values[i] = buf[i/8]&(1<<uint(i%8)) != 0
	}
	return values
}
