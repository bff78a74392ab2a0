package pdb

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// palmSubstitutions lists the Palm OS code points that differ from Latin-1.
// Every other byte decodes to the rune with the same value.
var palmSubstitutions = [...]struct {
	b byte
	r rune
}{
	{0x18, '…'},      // horizontal ellipsis
	{0x19, '\u2007'}, // figure space
	{0x80, '€'},      // euro sign
	{0x82, '‚'},
	{0x83, 'ƒ'},
	{0x84, '„'},
	{0x85, '…'}, // decode-only: U+2026 encodes as 0x18
	{0x86, '†'},
	{0x87, '‡'},
	{0x88, '\u0302'}, // combining circumflex
	{0x89, '‰'},
	{0x8A, 'Š'},
	{0x8B, '‹'},
	{0x8C, 'Œ'},
	{0x8D, '♢'}, // diamond suit
	{0x8E, '♣'}, // club suit
	{0x8F, '♡'}, // heart suit
	{0x90, '♠'}, // spade suit
	{0x91, '‘'},
	{0x92, '’'},
	{0x93, '“'},
	{0x94, '”'},
	{0x95, '∙'},
	{0x96, '‑'},
	{0x97, '‒'},
	{0x98, '\u0303'}, // combining tilde
	{0x99, '™'},
	{0x9A, 'š'},
	{0x9B, '›'},
	{0x9C, 'œ'},
	{0x9F, 'Ÿ'},
}

var (
	palmToRune [256]rune
	runeToPalm map[rune]byte
)

func init() {
	for i := range palmToRune {
		palmToRune[i] = rune(i)
	}
	runeToPalm = make(map[rune]byte, len(palmSubstitutions))
	for _, s := range palmSubstitutions {
		palmToRune[s.b] = s.r
		if _, dup := runeToPalm[s.r]; !dup {
			runeToPalm[s.r] = s.b
		}
	}
}

// PalmOS is the Palm OS 8-bit character set used for free-text fields.
var PalmOS encoding.Encoding = palmCharset{}

type palmCharset struct{}

func (palmCharset) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: palmDecoder{}}
}

func (palmCharset) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: palmEncoder{}}
}

func (palmCharset) String() string { return "Palm OS" }

type palmDecoder struct{ transform.NopResetter }

func (palmDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r := palmToRune[src[nSrc]]
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc++
	}
	return nDst, nSrc, nil
}

type palmEncoder struct{ transform.NopResetter }

func (palmEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		r, size := rune(src[nSrc]), 1
		if r >= utf8.RuneSelf {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			r, size = utf8.DecodeRune(src[nSrc:])
			if r == utf8.RuneError && size <= 1 {
				return nDst, nSrc, encodingFailure("invalid UTF-8 at byte %d", nSrc)
			}
		}
		b, ok := encodePalmRune(r)
		if !ok {
			return nDst, nSrc, encodingFailure("rune %U has no Palm OS code point", r)
		}
		dst[nDst] = b
		nDst++
		nSrc += size
	}
	return nDst, nSrc, nil
}

func encodePalmRune(r rune) (byte, bool) {
	if b, ok := runeToPalm[r]; ok {
		return b, true
	}
	// A Latin-1 rune whose byte is taken by a substitution would decode as
	// something else.
	if r >= 0 && r <= 0xFF && palmToRune[r] == r {
		return byte(r), true
	}
	return 0, false
}

// DecodeText converts Palm OS encoded bytes to a UTF-8 string. It never fails:
// every byte value has a mapping.
func DecodeText(b []byte) string {
	out := make([]rune, len(b))
	for i, c := range b {
		out[i] = palmToRune[c]
	}
	return string(out)
}

// EncodeText converts s to Palm OS encoded bytes. Runes without a Palm OS
// code point, including the C0/C1 controls shadowed by substitutions such as
// U+0080, yield ErrEncodingFailure.
func EncodeText(s string) ([]byte, error) {
	return PalmOS.NewEncoder().Bytes([]byte(s))
}
