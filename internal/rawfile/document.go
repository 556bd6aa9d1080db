// Package rawfile reads and writes the binary waveform container produced by
// SPICE-family circuit simulators: a loosely-delimited text header followed by
// a binary (or textual) sample body. Sample byte widths are never declared in
// the file; they are inferred from file-size arithmetic.
package rawfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadOptions controls how much of a result file is decoded.
type ReadOptions struct {
	// Select limits decoding to the named variables. nil decodes everything;
	// the axis is always kept when the analysis has one. Unselected
	// variables are skipped without allocation or conversion.
	Select []string

	// HeaderOnly stops after the preamble: the document carries the header
	// and variable names but no sample data, even if the body is truncated.
	HeaderOnly bool

	// LogPath points at the companion metadata file holding the step
	// markers. Empty means the result path with a .log extension.
	LogPath string

	// Debug prints decoding diagnostics to stdout.
	Debug bool
}

// Document is one decoded result file: header, variables in file order
// (axis first when present) and the optional step records of a multi-run
// sweep. Documents never share mutable state; each Read builds its own.
type Document struct {
	path     string
	header   *Header
	analysis AnalysisKind
	flags    flagSet

	complexData bool
	numPoints   int

	decls []VarDecl
	vars  []Variable
	axis  *Axis
	steps []StepRecord
}

func debugLogger(enabled bool) func(string) {
	if !enabled {
		return func(string) {}
	}
	return func(msg string) { fmt.Println(msg) }
}

// Read opens and decodes a result file. The file handle is released on every
// path, including decode errors.
func Read(path string, opts *ReadOptions) (*Document, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	debugf := debugLogger(opts.Debug)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("error getting file info: %w", err)
	}

	lines, sentinel, bodyOff, enc, err := scanPreamble(f)
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Path = path
		}
		return nil, err
	}
	debugf(fmt.Sprintf("preamble: %d lines, %s encoding, body at byte %d (%s)",
		len(lines), enc, bodyOff, sentinel))

	header, decls, err := parseHeader(lines)
	if err != nil {
		return nil, &FormatError{Path: path, Offset: bodyOff, Msg: err.Error()}
	}

	doc := &Document{path: path, header: header, decls: decls}
	plotname, _ := header.Get("Plotname")
	doc.analysis = analysisFromPlotname(plotname)
	flagsText, _ := header.Get("Flags")
	doc.flags = parseFlags(flagsText)
	doc.complexData = doc.flags.complexData || doc.analysis.complexByPlotname()

	doc.numPoints, err = header.getInt("No. Points")
	if err != nil {
		return nil, &FormatError{Path: path, Offset: bodyOff, Msg: err.Error()}
	}

	if opts.HeaderOnly {
		return doc, nil
	}
	if len(decls) == 0 {
		return nil, &FormatError{Path: path, Offset: bodyOff, Msg: "file declares no variables"}
	}

	hasAxis := doc.analysis.HasAxis()
	doc.vars = buildVariables(doc, decls, hasAxis, opts.Select)

	// scanPreamble buffers ahead of the sentinel, so reposition the handle
	// at the body start before decoding.
	if _, err := f.Seek(bodyOff, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to body: %w", err)
	}
	br := bufio.NewReader(f)

	switch {
	case strings.HasPrefix(sentinel, "Binary:"):
		remaining := info.Size() - bodyOff
		shape, serr := inferShape(remaining, doc.numPoints, len(decls), hasAxis)
		if serr != nil {
			return nil, &FormatError{Path: path, Offset: bodyOff, Msg: serr.Error()}
		}
		debugf(fmt.Sprintf("binary body: %d bytes, block %d, axis width %d, trace width %d, complex %t",
			remaining, shape.blockSize, shape.axisWidth, shape.traceWidth, shape.complexData))
		for _, v := range doc.vars {
			if t, ok := v.(*Trace); ok {
				t.prec = shape.tracePrecision()
			}
		}
		if doc.flags.fastAccess {
			err = decodeBinaryFast(br, doc.vars, shape, doc.numPoints)
		} else {
			err = decodeBinaryNormal(br, doc.vars, shape, doc.numPoints)
		}
	case strings.HasPrefix(sentinel, "Values:"):
		var consumed int64
		nextLine := func() (string, error) { return readLine(br, enc, &consumed) }
		err = decodeValues(nextLine, doc.vars, doc.numPoints, doc.complexData, debugf)
	default:
		err = formatErrf(bodyOff, "unsupported body sentinel %q", sentinel)
	}
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Path = path
		}
		return nil, err
	}

	if doc.axis != nil {
		doc.axis.computeOffsets()
	}
	doc.pruneUnread()

	if err := doc.resolveSteps(path, opts.LogPath, debugf); err != nil {
		return nil, err
	}
	return doc, nil
}

// buildVariables allocates the variable sequence in file order. The ordinal-0
// variable becomes the Axis when the analysis has one; unselected names
// become placeholders that decode to nothing.
func buildVariables(doc *Document, decls []VarDecl, hasAxis bool, selection []string) []Variable {
	selected := func(name string) bool {
		if selection == nil {
			return true
		}
		for _, want := range selection {
			if strings.EqualFold(want, name) {
				return true
			}
		}
		return false
	}

	vars := make([]Variable, len(decls))
	for i, d := range decls {
		if hasAxis && i == 0 {
			doc.axis = &Axis{name: d.Name, kind: d.Type, data: make([]float64, doc.numPoints)}
			vars[i] = doc.axis
			continue
		}
		if !selected(d.Name) {
			vars[i] = &placeholder{name: d.Name, kind: d.Type, points: doc.numPoints}
			continue
		}
		t := &Trace{name: d.Name, kind: d.Type, axis: doc.axis}
		if doc.complexData {
			t.cdata = make([]complex128, doc.numPoints)
		} else {
			t.data = make([]float64, doc.numPoints)
		}
		vars[i] = t
	}
	return vars
}

// pruneUnread drops placeholder variables left by a selective decode,
// preserving the relative order of the kept ones and updating the declared
// counts to match.
func (d *Document) pruneUnread() {
	kept := d.vars[:0]
	decls := d.decls[:0]
	for _, v := range d.vars {
		if _, isPlaceholder := v.(*placeholder); isPlaceholder {
			continue
		}
		decls = append(decls, VarDecl{Ordinal: len(kept), Name: v.Name(), Type: v.Kind()})
		kept = append(kept, v)
	}
	d.vars = kept
	d.decls = decls
	d.header.Set("No. Variables", strconv.Itoa(len(kept)))
}

// resolveSteps derives the step records of a multi-run file. The companion
// log is authoritative when present and consistent; a count mismatch is a
// hard error. Missing or unparsable metadata degrades to synthetic records
// counting the axis restarts alone.
func (d *Document) resolveSteps(path, logPath string, debugf func(string)) error {
	intervals := 1
	if d.axis != nil {
		intervals = d.axis.StepCount()
	}
	if !d.flags.stepped && intervals == 1 {
		return nil
	}

	if logPath == "" {
		// The companion sits next to the result, extension swapped for .log.
		logPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".log"
	}

	records, err := ParseStepLog(logPath)
	if err != nil || len(records) == 0 {
		if err != nil {
			debugf(fmt.Sprintf("no usable step metadata (%v), falling back to axis restarts", err))
		}
		if intervals > 1 {
			d.steps = syntheticSteps(intervals)
		}
		return nil
	}
	if len(records) != intervals {
		return &StepMismatchError{Intervals: intervals, Records: len(records)}
	}
	d.steps = records
	return nil
}

// Path returns the file the document was read from, empty for built ones.
func (d *Document) Path() string { return d.path }

// Header returns the ordered header field mapping.
func (d *Document) Header() *Header { return d.header }

// HeaderValue returns one header field value by name.
func (d *Document) HeaderValue(key string) (string, bool) { return d.header.Get(key) }

// Analysis returns the analysis kind derived from the Plotname field.
func (d *Document) Analysis() AnalysisKind { return d.analysis }

// IsComplex reports whether the traces hold complex samples.
func (d *Document) IsComplex() bool { return d.complexData }

// NumPoints returns the per-trace sample count across all steps.
func (d *Document) NumPoints() int { return d.numPoints }

// VariableNames returns the variable names in file order. It is populated
// even in header-only mode.
func (d *Document) VariableNames() []string {
	names := make([]string, len(d.decls))
	for i, decl := range d.decls {
		names[i] = decl.Name
	}
	return names
}

// Variables returns the decoded variables in file order.
func (d *Document) Variables() []Variable { return d.vars }

// Variable returns a decoded variable by name, case-insensitively.
func (d *Document) Variable(name string) (Variable, error) {
	for _, v := range d.vars {
		if strings.EqualFold(v.Name(), name) {
			return v, nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// VariableAt returns the decoded variable at the given file-order index.
func (d *Document) VariableAt(i int) (Variable, error) {
	if i < 0 || i >= len(d.vars) {
		return nil, &NotFoundError{Name: strconv.Itoa(i)}
	}
	return d.vars[i], nil
}

// Axis returns the independent variable, nil for single-point analyses.
func (d *Document) Axis() *Axis { return d.axis }

// Trace returns a named dependent waveform.
func (d *Document) Trace(name string) (*Trace, error) {
	v, err := d.Variable(name)
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Trace)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return t, nil
}

// StepCount returns the number of runs in the document.
func (d *Document) StepCount() int {
	if len(d.steps) > 0 {
		return len(d.steps)
	}
	if d.axis != nil {
		return d.axis.StepCount()
	}
	return 1
}

// StepRecords returns the per-run parameter records, nil for unstepped files.
func (d *Document) StepRecords() []StepRecord { return d.steps }

// Steps returns the ascending run indices whose records satisfy every
// (parameter, value) constraint. Values are compared after lenient
// engineering-notation normalization, so R="2k" matches a record holding
// 2000. With no constraints every run index is returned.
func (d *Document) Steps(constraints map[string]string) []int {
	n := d.StepCount()
	if len(constraints) == 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	var out []int
	for i := 0; i < n; i++ {
		if i >= len(d.steps) {
			break
		}
		ok := true
		for name, want := range constraints {
			if !d.steps[i].matches(name, want) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}
