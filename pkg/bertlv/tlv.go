// Package bertlv implements the BER-TLV encoding used by every PIV
// request and response payload (ISO/IEC 7816-4 Annex D).
package bertlv

import (
	"iter"
	"slices"
)

// Tlv is a single tag-length-value entry. A nil Value is legal and encodes
// as a zero-length value with the tag still present; PIV uses such entries
// as presence-only markers.
type Tlv struct {
	Tag   int
	Value []byte
}

// Encode serializes a single TLV entry. Tags are written as their minimal
// big-endian byte representation, lengths in BER definite form.
func Encode(tag int, value []byte) []byte {
	buf := encodeTag(tag)
	buf = append(buf, encodeLength(len(value))...)
	return append(buf, value...)
}

func encodeTag(tag int) []byte {
	if tag == 0 {
		return []byte{0}
	}
	var b []byte
	for t := tag; t > 0; t >>= 8 {
		b = append(b, byte(t))
	}
	slices.Reverse(b)
	return b
}

func encodeLength(n int) []byte {
	switch {
	case n < 0x80:
		return []byte{byte(n)}
	case n <= 0xff:
		return []byte{0x81, byte(n)}
	case n <= 0xffff:
		return []byte{0x82, byte(n >> 8), byte(n)}
	default:
		return []byte{0x83, byte(n >> 16), byte(n >> 8), byte(n)}
	}
}

// Decode iterates over the top-level TLV entries in data. Iteration is lazy
// and stops at the end of the buffer; a truncated tag, length or value yields
// ErrMalformedTLV and ends the sequence. Nested structures are decoded by
// applying Decode to an entry's Value.
func Decode(data []byte) iter.Seq2[Tlv, error] {
	return func(yield func(Tlv, error) bool) {
		for len(data) > 0 {
			t, rest, err := decodeOne(data)
			if err != nil {
				yield(Tlv{}, err)
				return
			}
			if !yield(t, nil) {
				return
			}
			data = rest
		}
	}
}

// DecodeAll decodes every top-level entry in data.
func DecodeAll(data []byte) ([]Tlv, error) {
	var tlvs []Tlv
	for t, err := range Decode(data) {
		if err != nil {
			return nil, err
		}
		tlvs = append(tlvs, t)
	}
	return tlvs, nil
}

func decodeOne(data []byte) (Tlv, []byte, error) {
	tag := int(data[0])
	off := 1

	// Multi-byte tag: low five bits of the first byte all set, subsequent
	// bytes continue while their high bit is set.
	if data[0]&0x1f == 0x1f {
		for {
			if off >= len(data) {
				return Tlv{}, nil, ErrMalformedTLV
			}
			tag = tag<<8 | int(data[off])
			cont := data[off]&0x80 != 0
			off++
			if !cont {
				break
			}
		}
	}

	if off >= len(data) {
		return Tlv{}, nil, ErrMalformedTLV
	}
	length := int(data[off])
	off++
	if length > 0x80 {
		n := length - 0x80
		if n > 4 || off+n > len(data) {
			return Tlv{}, nil, ErrMalformedTLV
		}
		length = 0
		for i := range n {
			length = length<<8 | int(data[off+i])
		}
		off += n
	}

	if off+length > len(data) {
		return Tlv{}, nil, ErrMalformedTLV
	}

	return Tlv{Tag: tag, Value: data[off : off+length]}, data[off+length:], nil
}

// UnwrapValue decodes the first TLV entry in data and returns its value,
// failing with ErrUnexpectedTag if the entry's tag differs from tag.
func UnwrapValue(tag int, data []byte) ([]byte, error) {
	t, _, err := decodeOneChecked(data)
	if err != nil {
		return nil, err
	}
	if t.Tag != tag {
		return nil, newUnexpectedTag(tag, t.Tag)
	}
	return t.Value, nil
}

func decodeOneChecked(data []byte) (Tlv, []byte, error) {
	if len(data) == 0 {
		return Tlv{}, nil, ErrMalformedTLV
	}
	return decodeOne(data)
}
