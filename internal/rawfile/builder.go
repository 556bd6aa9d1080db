package rawfile

import (
	"fmt"
	"strings"
)

// NewDocument starts an empty document for the writer. Variables are added
// with AddAxis / AddTrace / AddComplexTrace in the order they should appear
// in the file.
func NewDocument(analysis AnalysisKind) *Document {
	return &Document{
		header:   &Header{},
		analysis: analysis,
	}
}

func (d *Document) hasVariable(name string) bool {
	for _, v := range d.vars {
		if strings.EqualFold(v.Name(), name) {
			return true
		}
	}
	return false
}

func (d *Document) appendVariable(v Variable) {
	d.decls = append(d.decls, VarDecl{Ordinal: len(d.vars), Name: v.Name(), Type: v.Kind()})
	d.vars = append(d.vars, v)
}

// AddAxis installs the independent variable. It must be added before any
// trace and fixes the document's point count.
func (d *Document) AddAxis(name, kind string, data []float64) (*Axis, error) {
	if d.axis != nil {
		return nil, fmt.Errorf("document already has axis %q", d.axis.Name())
	}
	if len(d.vars) > 0 {
		return nil, fmt.Errorf("axis must be the first variable, %d already added", len(d.vars))
	}
	ax := &Axis{name: name, kind: kind, data: data}
	ax.computeOffsets()
	d.axis = ax
	d.numPoints = len(data)
	d.appendVariable(ax)
	return ax, nil
}

func (d *Document) checkAdd(name string, points int, complexData bool) error {
	if d.hasVariable(name) {
		return fmt.Errorf("duplicate variable name %q", name)
	}
	hasTraces := len(d.vars) > 0 && !(len(d.vars) == 1 && d.axis != nil)
	if hasTraces && complexData != d.complexData {
		return fmt.Errorf("cannot mix real and complex traces in one document")
	}
	if d.numPoints == 0 && d.axis == nil {
		d.numPoints = points
	}
	if points != d.numPoints {
		return fmt.Errorf("trace %q has %d points, document has %d", name, points, d.numPoints)
	}
	d.complexData = complexData
	return nil
}

// AddTrace appends a real waveform sharing the document axis.
func (d *Document) AddTrace(name, kind string, data []float64, prec Precision) (*Trace, error) {
	if err := d.checkAdd(name, len(data), false); err != nil {
		return nil, err
	}
	t := &Trace{name: name, kind: kind, prec: prec, data: data, axis: d.axis}
	d.appendVariable(t)
	return t, nil
}

// AddComplexTrace appends a complex waveform sharing the document axis.
func (d *Document) AddComplexTrace(name, kind string, data []complex128) (*Trace, error) {
	if err := d.checkAdd(name, len(data), true); err != nil {
		return nil, err
	}
	t := &Trace{name: name, kind: kind, prec: PrecisionDouble, cdata: data, axis: d.axis}
	d.appendVariable(t)
	return t, nil
}

// SetStepRecords attaches per-run metadata to a built document. The record
// count must equal the step intervals the axis yields.
func (d *Document) SetStepRecords(records []StepRecord) error {
	intervals := 1
	if d.axis != nil {
		intervals = d.axis.StepCount()
	}
	if len(records) != intervals {
		return &StepMismatchError{Intervals: intervals, Records: len(records)}
	}
	d.steps = records
	return nil
}
