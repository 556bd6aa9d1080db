package rawfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// WriteOptions controls serialization. Zero values fall back to the
// document's own header fields, then to synthesized defaults.
type WriteOptions struct {
	// Layout selects normal (point-interleaved) or fast-access
	// (variable-contiguous) body ordering.
	Layout Layout

	Title    string
	Plotname string
	Command  string

	// Date stamps the header; zero means the current time.
	Date time.Time

	Debug bool
}

// Write serializes a document into a result file readers of the format
// accept. Writing a document produced by Read with the same layout and
// re-reading it reproduces the sample values and header field set.
func Write(path string, doc *Document, opts *WriteOptions) error {
	if opts == nil {
		opts = &WriteOptions{}
	}
	if len(doc.vars) == 0 {
		return fmt.Errorf("document has no variables to write")
	}
	if doc.numPoints == 0 {
		return fmt.Errorf("document has no sample points to write")
	}
	debugf := debugLogger(opts.Debug)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, doc, opts); err != nil {
		return err
	}
	shape := writeShape(doc)
	debugf(fmt.Sprintf("writing %d vars x %d points, axis width %d, trace width %d, %s layout",
		len(doc.vars), doc.numPoints, shape.axisWidth, shape.traceWidth, opts.Layout))

	if opts.Layout == LayoutFastAccess {
		err = writeBodyFast(w, doc, shape)
	} else {
		err = writeBodyNormal(w, doc, shape)
	}
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing body: %w", err)
	}
	return nil
}

// headerDefault resolves a header value: explicit option, then the
// document's own field, then the synthesized fallback.
func headerDefault(doc *Document, key, override, fallback string) string {
	if override != "" {
		return override
	}
	if v, ok := doc.header.Get(key); ok && v != "" {
		return v
	}
	return fallback
}

func writeHeader(w *bufio.Writer, doc *Document, opts *WriteOptions) error {
	date := ""
	if !opts.Date.IsZero() {
		date = opts.Date.Format(time.ANSIC)
	}
	date = headerDefault(doc, "Date", date, time.Now().Format(time.ANSIC))

	fields := []HeaderField{
		{"Title", headerDefault(doc, "Title", opts.Title, "* Waveform data")},
		{"Date", date},
		{"Plotname", headerDefault(doc, "Plotname", opts.Plotname, doc.analysis.Plotname())},
		{"Flags", doc.flags.encode(doc.complexData, opts.Layout, doc.StepCount() > 1)},
		{"No. Variables", strconv.Itoa(len(doc.vars))},
		{"No. Points", strconv.Itoa(doc.numPoints)},
		{"Offset", headerDefault(doc, "Offset", "", "0.0000000000000000e+00")},
		{"Command", headerDefault(doc, "Command", opts.Command, "spiceraw")},
	}

	// Optional fields the source carried (Backannotation, Output, ...) keep
	// their position after the mandatory block.
	emitted := make(map[string]bool, len(fields))
	for _, f := range fields {
		emitted[strings.ToLower(f.Key)] = true
	}
	for _, f := range doc.header.Fields() {
		if !emitted[strings.ToLower(f.Key)] {
			fields = append(fields, f)
		}
	}

	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.Key, f.Value); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	if _, err := w.WriteString("Variables:\n"); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	for i, v := range doc.vars {
		if _, err := fmt.Fprintf(w, "\t%d\t%s\t%s\n", i, v.Name(), v.Kind()); err != nil {
			return fmt.Errorf("error writing variables block: %w", err)
		}
	}
	if _, err := w.WriteString("Binary:\n"); err != nil {
		return fmt.Errorf("error writing sentinel: %w", err)
	}
	return nil
}

// writeShape decides the byte widths the body is emitted with, inverting the
// inference rules the reader applies.
func writeShape(doc *Document) bodyShape {
	if doc.complexData {
		return bodyShape{complexData: true, axisWidth: 16, traceWidth: 16}
	}
	traceWidth := 4
	for _, v := range doc.vars {
		if t, ok := v.(*Trace); ok && t.prec == PrecisionDouble {
			traceWidth = 8
			break
		}
	}
	axisWidth := traceWidth
	if doc.axis != nil {
		// The independent variable is stored at double precision even when
		// the dependent traces are single precision.
		axisWidth = 8
	}
	return bodyShape{axisWidth: axisWidth, traceWidth: traceWidth}
}

func sampleAt(v Variable, p int) (re, im float64) {
	switch s := v.(type) {
	case *Axis:
		return s.data[p], 0
	case *Trace:
		if s.cdata != nil {
			return real(s.cdata[p]), imag(s.cdata[p])
		}
		return s.data[p], 0
	}
	return 0, 0
}

func putSample(w *bufio.Writer, re, im float64, width int, complexData bool) error {
	var buf [16]byte
	switch {
	case complexData:
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(re))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(im))
	case width == 8:
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(re))
	default:
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(re)))
	}
	if _, err := w.Write(buf[:width]); err != nil {
		return fmt.Errorf("error writing sample: %w", err)
	}
	return nil
}

func writeBodyNormal(w *bufio.Writer, doc *Document, shape bodyShape) error {
	for p := 0; p < doc.numPoints; p++ {
		for i, v := range doc.vars {
			re, im := sampleAt(v, p)
			if err := putSample(w, re, im, shape.widthAt(i), shape.complexData); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBodyFast(w *bufio.Writer, doc *Document, shape bodyShape) error {
	for i, v := range doc.vars {
		width := shape.widthAt(i)
		for p := 0; p < doc.numPoints; p++ {
			re, im := sampleAt(v, p)
			if err := putSample(w, re, im, width, shape.complexData); err != nil {
				return err
			}
		}
	}
	return nil
}
