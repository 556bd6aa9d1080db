package rawfile

import (
	"bufio"
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf16"
)

// encoding is the detected text encoding of the preamble.
type encoding int

const (
	encLatin1  encoding = iota // single-byte text
	encUTF16LE                 // little-endian double-byte text
)

func (e encoding) String() string {
	if e == encUTF16LE {
		return "utf-16le"
	}
	return "latin-1"
}

// titleProbe is the literal every result file begins with.
const titleProbe = "Title:"

// detectEncoding probes the leading bytes for the "Title:" literal, first as
// single-byte text, then as UTF-16LE (with or without a BOM). The reader is
// advanced past the BOM when one is present.
func detectEncoding(br *bufio.Reader, consumed *int64) (encoding, error) {
	peek, err := br.Peek(2 + 2*len(titleProbe))
	if err != nil && len(peek) < len(titleProbe) {
		return encLatin1, formatErrf(0, "file too short to hold a header")
	}

	if strings.HasPrefix(string(peek), titleProbe) {
		return encLatin1, nil
	}

	probe := peek
	if len(probe) >= 2 && probe[0] == 0xFF && probe[1] == 0xFE {
		probe = probe[2:]
		if isUTF16Title(probe) {
			if _, err := br.Discard(2); err != nil {
				return encLatin1, err
			}
			*consumed += 2
			return encUTF16LE, nil
		}
	} else if isUTF16Title(probe) {
		return encUTF16LE, nil
	}

	return encLatin1, formatErrf(0, "leading bytes do not spell %q in any supported encoding", titleProbe)
}

func isUTF16Title(b []byte) bool {
	if len(b) < 2*len(titleProbe) {
		return false
	}
	for i := 0; i < len(titleProbe); i++ {
		if b[2*i] != titleProbe[i] || b[2*i+1] != 0 {
			return false
		}
	}
	return true
}

// scanPreamble decodes header lines until the body sentinel ("Binary:" or
// "Values:") is reached. It returns the header lines with line endings
// stripped, the sentinel line itself, the byte offset where the body starts
// and the detected encoding. Truncated input before the sentinel fails.
func scanPreamble(r io.Reader) (lines []string, sentinel string, bodyOffset int64, enc encoding, err error) {
	br := bufio.NewReader(r)
	var consumed int64

	enc, err = detectEncoding(br, &consumed)
	if err != nil {
		return nil, "", 0, enc, err
	}

	for {
		line, rerr := readLine(br, enc, &consumed)
		if rerr != nil && rerr != io.EOF {
			return nil, "", 0, enc, rerr
		}
		if rerr == io.EOF && line == "" {
			return nil, "", 0, enc, formatErrf(consumed, "header ends before a Binary: or Values: sentinel")
		}

		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "Binary:") || strings.HasPrefix(line, "Values:") {
			return lines, line, consumed, enc, nil
		}
		lines = append(lines, line)

		if rerr == io.EOF {
			return nil, "", 0, enc, formatErrf(consumed, "header ends before a Binary: or Values: sentinel")
		}
	}
}

// readLine reads one decoded line, without its trailing newline, advancing
// the consumed byte counter. io.EOF is returned alongside any partial line.
func readLine(br *bufio.Reader, enc encoding, consumed *int64) (string, error) {
	if enc == encUTF16LE {
		return readLineUTF16(br, consumed)
	}

	raw, err := br.ReadBytes('\n')
	*consumed += int64(len(raw))
	if len(raw) > 0 && raw[len(raw)-1] == '\n' {
		raw = raw[:len(raw)-1]
	}
	// Single-byte text maps each byte to the rune of the same value.
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), err
}

func readLineUTF16(br *bufio.Reader, consumed *int64) (string, error) {
	var units []uint16
	var buf [2]byte
	for {
		n, err := io.ReadFull(br, buf[:])
		*consumed += int64(n)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return strings.TrimRight(string(utf16.Decode(units)), "\x00"), err
		}
		u := binary.LittleEndian.Uint16(buf[:])
		if u == '\n' {
			return string(utf16.Decode(units)), nil
		}
		units = append(units, u)
	}
}
