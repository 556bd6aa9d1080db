package rawfile

import "strings"

// AnalysisKind identifies the simulation that produced a result file. It is
// derived once from the Plotname header line and consumed as a typed value
// everywhere else; nothing re-parses the free-text Plotname after that.
type AnalysisKind int

const (
	AnalysisUnknown AnalysisKind = iota
	AnalysisTransient
	AnalysisAC
	AnalysisDCSweep
	AnalysisNoise
	AnalysisFFT
	AnalysisOperatingPoint
	AnalysisTransferFunction
)

// analysisFromPlotname maps the Plotname header value to an AnalysisKind.
func analysisFromPlotname(plotname string) AnalysisKind {
	p := strings.ToLower(plotname)
	switch {
	case strings.Contains(p, "transient"):
		return AnalysisTransient
	case strings.Contains(p, "ac analysis"):
		return AnalysisAC
	case strings.Contains(p, "dc transfer"):
		return AnalysisDCSweep
	case strings.Contains(p, "noise"):
		return AnalysisNoise
	case strings.Contains(p, "fft"):
		return AnalysisFFT
	case strings.Contains(p, "operating point"):
		return AnalysisOperatingPoint
	case strings.Contains(p, "transfer function"):
		return AnalysisTransferFunction
	}
	return AnalysisUnknown
}

// Plotname returns the canonical Plotname text for the analysis kind.
func (k AnalysisKind) Plotname() string {
	switch k {
	case AnalysisTransient:
		return "Transient Analysis"
	case AnalysisAC:
		return "AC Analysis"
	case AnalysisDCSweep:
		return "DC transfer characteristic"
	case AnalysisNoise:
		return "Noise Spectral Density"
	case AnalysisFFT:
		return "FFT of time domain data"
	case AnalysisOperatingPoint:
		return "Operating Point"
	case AnalysisTransferFunction:
		return "Transfer Function"
	}
	return "Unknown Analysis"
}

func (k AnalysisKind) String() string { return k.Plotname() }

// HasAxis reports whether the analysis produces more than one sample per
// trace. Single-point analyses carry no independent variable: every declared
// variable is a one-sample trace of its own.
func (k AnalysisKind) HasAxis() bool {
	return k != AnalysisOperatingPoint && k != AnalysisTransferFunction
}

// complexByPlotname reports whether the analysis is a known frequency-domain
// kind whose samples are complex even when the Flags line does not say so.
func (k AnalysisKind) complexByPlotname() bool {
	return k == AnalysisAC || k == AnalysisFFT
}

// Precision is the stored byte width of a real trace sample.
type Precision int

const (
	PrecisionDouble Precision = iota // 8-byte float
	PrecisionSingle                  // 4-byte float
)

func (p Precision) String() string {
	if p == PrecisionSingle {
		return "single"
	}
	return "double"
}

// Layout selects the physical ordering of the binary body.
type Layout int

const (
	// LayoutNormal interleaves variables point by point (row-major).
	LayoutNormal Layout = iota
	// LayoutFastAccess stores each variable's full sample run contiguously
	// (column-major), letting readers seek past variables they don't want.
	LayoutFastAccess
)

func (l Layout) String() string {
	if l == LayoutFastAccess {
		return "fastaccess"
	}
	return "normal"
}

// VarDecl is one entry of the Variables block: ordinal position, name and
// the declared type tag (e.g. "time", "voltage", "device_current").
type VarDecl struct {
	Ordinal int
	Name    string
	Type    string
}

// Variable is implemented by *Axis, *Trace and the internal placeholder used
// during selective decoding. The unexported setSample keeps the set closed.
type Variable interface {
	// Name returns the variable name as declared in the header.
	Name() string
	// Kind returns the declared type tag.
	Kind() string
	// PointCount returns the number of samples the variable holds.
	PointCount() int

	// setSample stores the decoded sample i. Placeholders discard it.
	setSample(i int, re, im float64)
}

// Axis is the ordinal-0 independent variable (time, frequency). Its buffer is
// always double precision regardless of the trace width.
type Axis struct {
	name string
	kind string
	data []float64

	// offsets holds step-start positions terminated by len(data). An
	// unstepped axis has offsets [0, len(data)].
	offsets []int
}

func (a *Axis) Name() string    { return a.name }
func (a *Axis) Kind() string    { return a.kind }
func (a *Axis) PointCount() int { return len(a.data) }

func (a *Axis) setSample(i int, re, _ float64) { a.data[i] = re }

// Data returns the full sample buffer across all steps.
func (a *Axis) Data() []float64 { return a.data }

// StepOffsets returns the step-start positions, terminated by the buffer
// length.
func (a *Axis) StepOffsets() []int { return a.offsets }

// StepCount returns the number of step intervals in the axis.
func (a *Axis) StepCount() int {
	if len(a.offsets) < 2 {
		return 1
	}
	return len(a.offsets) - 1
}

// Wave returns the samples of one step as a half-open slice of the shared
// buffer. Out-of-range steps clamp to the buffer end instead of panicking.
func (a *Axis) Wave(step int) []float64 {
	lo, hi := a.stepRange(step)
	return a.data[lo:hi]
}

// stepRange resolves a step index to buffer bounds, clamping both ends.
func (a *Axis) stepRange(step int) (lo, hi int) {
	if step < 0 {
		step = 0
	}
	return a.offsetAt(step), a.offsetAt(step + 1)
}

func (a *Axis) offsetAt(i int) int {
	if len(a.offsets) == 0 {
		if i <= 0 {
			return 0
		}
		return len(a.data)
	}
	if i >= len(a.offsets) {
		return len(a.data)
	}
	return a.offsets[i]
}

// computeOffsets scans the buffer for samples equal to the first one, each
// marking the independent variable restarting for a new run. When the sample
// after a restart repeats the restart value the boundary sample was written
// twice, so the start advances by one past the duplicate.
func (a *Axis) computeOffsets() {
	a.offsets = a.offsets[:0]
	if len(a.data) == 0 {
		return
	}
	first := a.data[0]
	a.offsets = append(a.offsets, 0)
	for i := 1; i < len(a.data); i++ {
		if a.data[i] != first {
			continue
		}
		if i+1 < len(a.data) && a.data[i+1] == first {
			i++
		}
		a.offsets = append(a.offsets, i)
	}
	a.offsets = append(a.offsets, len(a.data))
}

// Trace is one named dependent waveform. Real traces fill data; complex
// traces fill cdata. A trace references the document axis for step slicing
// but does not own it.
type Trace struct {
	name string
	kind string
	prec Precision

	data  []float64
	cdata []complex128

	axis *Axis
}

func (t *Trace) Name() string { return t.name }
func (t *Trace) Kind() string { return t.kind }

func (t *Trace) PointCount() int {
	if t.cdata != nil {
		return len(t.cdata)
	}
	return len(t.data)
}

func (t *Trace) setSample(i int, re, im float64) {
	if t.cdata != nil {
		t.cdata[i] = complex(re, im)
		return
	}
	t.data[i] = re
}

// IsComplex reports whether the trace holds complex samples.
func (t *Trace) IsComplex() bool { return t.cdata != nil }

// Precision returns the byte width class the samples were stored with.
func (t *Trace) Precision() Precision { return t.prec }

// Data returns the full real sample buffer, or nil for a complex trace.
func (t *Trace) Data() []float64 { return t.data }

// DataComplex returns the full complex sample buffer, or nil for a real trace.
func (t *Trace) DataComplex() []complex128 { return t.cdata }

// Wave returns the real samples of one step, nil for complex traces.
// Out-of-range steps clamp to the buffer end.
func (t *Trace) Wave(step int) []float64 {
	if t.data == nil {
		return nil
	}
	lo, hi := t.stepRange(step)
	return t.data[lo:hi]
}

// WaveComplex returns the complex samples of one step, nil for real traces.
func (t *Trace) WaveComplex(step int) []complex128 {
	if t.cdata == nil {
		return nil
	}
	lo, hi := t.stepRange(step)
	return t.cdata[lo:hi]
}

func (t *Trace) stepRange(step int) (lo, hi int) {
	if t.axis == nil {
		// Single-point traces have exactly one step covering the buffer.
		return 0, t.PointCount()
	}
	lo, hi = t.axis.stepRange(step)
	if n := t.PointCount(); hi > n {
		hi = n
		if lo > n {
			lo = n
		}
	}
	return lo, hi
}

// placeholder stands in for a declared variable the caller did not request.
// Decoding still advances past its bytes; setSample is a no-op so no buffer
// is ever allocated for it.
type placeholder struct {
	name   string
	kind   string
	points int
}

func (p *placeholder) Name() string    { return p.name }
func (p *placeholder) Kind() string    { return p.kind }
func (p *placeholder) PointCount() int { return p.points }

func (p *placeholder) setSample(int, float64, float64) {}
