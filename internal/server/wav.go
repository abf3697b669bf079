package server

import (
	"bytes"
	"encoding/binary"
)

// wav wraps 16-bit mono little-endian PCM in a RIFF/WAVE container.
func wav(pcm []byte, rate int) []byte {
	var b bytes.Buffer
	b.Grow(44 + len(pcm))
	le := func(v any) { _ = binary.Write(&b, binary.LittleEndian, v) }

	b.WriteString("RIFF")
	le(uint32(36 + len(pcm)))
	b.WriteString("WAVE")

	b.WriteString("fmt ")
	le(uint32(16))       // chunk size
	le(uint16(1))        // PCM
	le(uint16(1))        // channels
	le(uint32(rate))     // sample rate
	le(uint32(rate * 2)) // byte rate
	le(uint16(2))        // block align
	le(uint16(16))       // bits per sample

	b.WriteString("data")
	le(uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}
