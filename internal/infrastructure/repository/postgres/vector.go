package postgres

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector serializes an embedding as a little-endian uint32 dimension
// header followed by the float32 components. The byte length is therefore
// always 4+4N for an N-dimensional vector.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4+4*len(vec))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector reverses EncodeVector and rejects any payload whose length
// does not match its declared dimension.
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("vector payload too short: %d bytes", len(buf))
	}
	dim := binary.LittleEndian.Uint32(buf[0:4])
	if want := 4 + 4*int(dim); len(buf) != want {
		return nil, fmt.Errorf("vector payload length %d does not match dimension %d (want %d)", len(buf), dim, want)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4+4*i:]))
	}
	return vec, nil
}
