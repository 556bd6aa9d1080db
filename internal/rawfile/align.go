package rawfile

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// AxisAlignment selects how Merge reconciles diverging axes.
type AxisAlignment int

const (
	// AlignStrict refuses to merge documents whose axes differ.
	AlignStrict AxisAlignment = iota
	// AlignForce re-samples donor waveforms onto the destination axis by
	// piecewise-linear interpolation, one step segment at a time.
	AlignForce
)

// Merge copies the named traces of src into dst. nil names copies every
// trace. Buffers are duplicated so the documents share no mutable state.
// When the axes diverge and align is AlignForce, donor traces are
// interpolated onto dst's axis so all merged traces share one step-offset
// structure.
func Merge(dst, src *Document, names []string, align AxisAlignment) error {
	if names == nil {
		for _, v := range src.vars {
			if _, ok := v.(*Trace); ok {
				names = append(names, v.Name())
			}
		}
	}

	sameAxis := axesEqual(dst.axis, src.axis)
	if !sameAxis && align == AlignStrict {
		return fmt.Errorf("source axis diverges from destination axis (use forced alignment to re-sample)")
	}
	if !sameAxis && (dst.axis == nil || src.axis == nil) {
		return fmt.Errorf("cannot align documents when one of them has no axis")
	}

	for _, name := range names {
		t, err := src.Trace(name)
		if err != nil {
			return err
		}
		if dst.hasVariable(name) {
			return fmt.Errorf("destination already holds a variable named %q", name)
		}

		switch {
		case sameAxis && t.cdata != nil:
			if _, err := dst.AddComplexTrace(t.name, t.kind, append([]complex128(nil), t.cdata...)); err != nil {
				return err
			}
		case sameAxis:
			if _, err := dst.AddTrace(t.name, t.kind, append([]float64(nil), t.data...), t.prec); err != nil {
				return err
			}
		default:
			if err := mergeAligned(dst, src, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeAligned re-samples one donor trace onto dst's axis, step by step.
// Donor steps beyond the source's run count clamp to its last run.
func mergeAligned(dst, src *Document, t *Trace) error {
	srcSteps := src.axis.StepCount()

	if t.cdata != nil {
		out := make([]complex128, 0, dst.numPoints)
		for s := 0; s < dst.axis.StepCount(); s++ {
			targets := dst.axis.Wave(s)
			ss := min(s, srcSteps-1)
			seg := t.WaveComplex(ss)
			res, err := resampleComplex(src.axis.Wave(ss), seg, targets)
			if err != nil {
				return fmt.Errorf("aligning %q: %w", t.name, err)
			}
			out = append(out, res...)
		}
		_, err := dst.AddComplexTrace(t.name, t.kind, out)
		return err
	}

	out := make([]float64, 0, dst.numPoints)
	for s := 0; s < dst.axis.StepCount(); s++ {
		targets := dst.axis.Wave(s)
		ss := min(s, srcSteps-1)
		res, err := resampleLinear(src.axis.Wave(ss), t.Wave(ss), targets)
		if err != nil {
			return fmt.Errorf("aligning %q: %w", t.name, err)
		}
		out = append(out, res...)
	}
	_, err := dst.AddTrace(t.name, t.kind, out, t.prec)
	return err
}

// resampleLinear predicts ys at the target positions with piecewise-linear
// interpolation. Targets outside the source range take the nearest endpoint
// value.
func resampleLinear(xs, ys, targets []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("axis has %d samples but trace has %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least two samples to interpolate, have %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("axis is not strictly increasing at sample %d", i)
		}
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	out := make([]float64, len(targets))
	for i, x := range targets {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// resampleComplex interpolates real and imaginary parts independently.
func resampleComplex(xs []float64, ys []complex128, targets []float64) ([]complex128, error) {
	res := make([]float64, len(ys))
	ims := make([]float64, len(ys))
	for i, c := range ys {
		res[i] = real(c)
		ims[i] = imag(c)
	}
	reOut, err := resampleLinear(xs, res, targets)
	if err != nil {
		return nil, err
	}
	imOut, err := resampleLinear(xs, ims, targets)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(targets))
	for i := range out {
		out[i] = complex(reOut[i], imOut[i])
	}
	return out, nil
}

func axesEqual(a, b *Axis) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.data) != len(b.data) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}
