package rawfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// bodyShape is the physical sample layout inferred from file-size arithmetic.
// The format never declares byte widths explicitly: remaining/points gives the
// per-point block size and the block divides across the variables.
type bodyShape struct {
	complexData bool
	axisWidth   int // bytes of column 0 when an axis is present
	traceWidth  int // bytes of every other column
	blockSize   int // bytes of one point row
}

// inferShape resolves the per-sample byte widths. Resolution is by exact
// block-size match, most specific first: complex pairs, all-double, mixed
// single-precision rows with a double axis column, and axis-less single
// precision.
func inferShape(remaining int64, points, nvars int, hasAxis bool) (bodyShape, error) {
	if points <= 0 || nvars <= 0 {
		return bodyShape{}, fmt.Errorf("cannot infer sample width for %d points and %d variables", points, nvars)
	}
	block := remaining / int64(points)

	switch {
	case block == int64(16*nvars):
		return bodyShape{complexData: true, axisWidth: 16, traceWidth: 16, blockSize: 16 * nvars}, nil
	case block == int64(8*nvars):
		return bodyShape{axisWidth: 8, traceWidth: 8, blockSize: 8 * nvars}, nil
	case hasAxis && block == int64(8+4*(nvars-1)):
		// Dependent traces are single precision, but the independent
		// variable is always stored at double precision.
		return bodyShape{axisWidth: 8, traceWidth: 4, blockSize: 8 + 4*(nvars-1)}, nil
	case !hasAxis && block == int64(4*nvars):
		return bodyShape{axisWidth: 4, traceWidth: 4, blockSize: 4 * nvars}, nil
	}
	return bodyShape{}, fmt.Errorf("block size %d bytes does not match any layout of %d variables", block, nvars)
}

func (s bodyShape) widthAt(col int) int {
	if col == 0 {
		return s.axisWidth
	}
	return s.traceWidth
}

// tracePrecision returns the precision tag traces decoded with this shape
// should carry, so a later write reproduces the byte width.
func (s bodyShape) tracePrecision() Precision {
	if s.traceWidth == 4 {
		return PrecisionSingle
	}
	return PrecisionDouble
}

// decodeSample converts one little-endian sample of the given width.
func decodeSample(b []byte, width int, complexData bool) (re, im float64) {
	switch {
	case complexData:
		re = math.Float64frombits(binary.LittleEndian.Uint64(b))
		im = math.Float64frombits(binary.LittleEndian.Uint64(b[8:]))
	case width == 8:
		re = math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		re = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return re, im
}

// decodeBinaryNormal reads the row-major layout: every point is one block of
// interleaved variable samples. Placeholder columns are read but not
// converted.
func decodeBinaryNormal(br *bufio.Reader, vars []Variable, shape bodyShape, points int) error {
	row := make([]byte, shape.blockSize)
	skip := make([]bool, len(vars))
	for i, v := range vars {
		_, skip[i] = v.(*placeholder)
	}

	for p := 0; p < points; p++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return formatErrf(0, "binary body truncated at point %d of %d: %v", p, points, err)
		}
		off := 0
		for i, v := range vars {
			w := shape.widthAt(i)
			if !skip[i] {
				re, im := decodeSample(row[off:off+w], w, shape.complexData)
				v.setSample(p, re, im)
			}
			off += w
		}
	}
	return nil
}

// decodeBinaryFast reads the column-major layout: each variable's samples are
// contiguous, so unrequested variables are skipped without conversion.
func decodeBinaryFast(br *bufio.Reader, vars []Variable, shape bodyShape, points int) error {
	var col []byte
	for i, v := range vars {
		w := shape.widthAt(i)
		if _, isPlaceholder := v.(*placeholder); isPlaceholder {
			if _, err := br.Discard(points * w); err != nil {
				return formatErrf(0, "binary body truncated skipping %q: %v", v.Name(), err)
			}
			continue
		}
		need := points * w
		if cap(col) < need {
			col = make([]byte, need)
		}
		col = col[:need]
		if _, err := io.ReadFull(br, col); err != nil {
			return formatErrf(0, "binary body truncated in column %q: %v", v.Name(), err)
		}
		for p := 0; p < points; p++ {
			re, im := decodeSample(col[p*w:(p+1)*w], w, shape.complexData)
			v.setSample(p, re, im)
		}
	}
	return nil
}

// decodeValues reads the textual body: one tab-delimited line per sample,
// with the first line of each point repeating the point index. An index
// mismatch is logged and decoding continues best-effort.
func decodeValues(nextLine func() (string, error), vars []Variable, points int, complexData bool, debugf func(string)) error {
	readNonEmpty := func() (string, error) {
		for {
			line, err := nextLine()
			line = strings.TrimSpace(line)
			if line != "" {
				return line, nil
			}
			if err != nil {
				return "", err
			}
		}
	}

	for p := 0; p < points; p++ {
		line, err := readNonEmpty()
		if err != nil {
			return formatErrf(0, "textual body truncated at point %d of %d", p, points)
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return formatErrf(0, "point %d: malformed value line %q", p, line)
		}
		if idx, err := strconv.Atoi(fields[0]); err != nil || idx != p {
			debugf(fmt.Sprintf("point index %q does not match expected %d, continuing", fields[0], p))
		}
		re, im, err := parseValueToken(fields[1], complexData)
		if err != nil {
			return formatErrf(0, "point %d: %v", p, err)
		}
		vars[0].setSample(p, re, im)

		for i := 1; i < len(vars); i++ {
			line, err := readNonEmpty()
			if err != nil {
				return formatErrf(0, "textual body truncated at point %d, variable %q", p, vars[i].Name())
			}
			re, im, err := parseValueToken(line, complexData)
			if err != nil {
				return formatErrf(0, "point %d, variable %q: %v", p, vars[i].Name(), err)
			}
			vars[i].setSample(p, re, im)
		}
	}
	return nil
}

// parseValueToken parses one textual sample, "re,im" when complex.
func parseValueToken(tok string, complexData bool) (re, im float64, err error) {
	if complexData {
		res, ims, found := strings.Cut(tok, ",")
		if !found {
			return 0, 0, fmt.Errorf("complex value %q lacks a comma", tok)
		}
		re, err = strconv.ParseFloat(strings.TrimSpace(res), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("complex value %q: %w", tok, err)
		}
		im, err = strconv.ParseFloat(strings.TrimSpace(ims), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("complex value %q: %w", tok, err)
		}
		return re, im, nil
	}
	re, err = strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value %q: %w", tok, err)
	}
	return re, 0, nil
}
