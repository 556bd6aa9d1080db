package rawfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDoc(t *testing.T, traceName string, xs []float64, slope float64) *Document {
	t.Helper()
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = slope * x
	}
	doc := NewDocument(AnalysisTransient)
	_, err := doc.AddAxis("time", "time", xs)
	require.NoError(t, err)
	_, err = doc.AddTrace(traceName, "voltage", ys, PrecisionDouble)
	require.NoError(t, err)
	return doc
}

func TestMergeSameAxis(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 1, 2, 3, 4}
	dst := linearDoc(t, "V(a)", xs, 1)
	src := linearDoc(t, "V(b)", append([]float64(nil), xs...), 2)

	require.NoError(t, Merge(dst, src, nil, AlignStrict))
	assert.Equal(t, []string{"time", "V(a)", "V(b)"}, dst.VariableNames())

	b := dst.mustTrace(t, "V(b)")
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, b.Data())

	// Merged buffers are copies: mutating the source must not leak through.
	src.mustTrace(t, "V(b)").Data()[0] = 99
	assert.Equal(t, 0.0, b.Data()[0])
}

func TestMergeStrictRejectsDivergingAxes(t *testing.T) {
	t.Parallel()

	dst := linearDoc(t, "V(a)", []float64{0, 1, 2, 3}, 1)
	src := linearDoc(t, "V(b)", []float64{0, 0.5, 1, 1.5}, 1)

	err := Merge(dst, src, nil, AlignStrict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverges")
}

func TestMergeForcedAlignment(t *testing.T) {
	t.Parallel()

	// Donor is sampled twice as densely; its trace is linear, so linear
	// re-sampling onto the destination axis is exact.
	dst := linearDoc(t, "V(a)", []float64{0, 1, 2, 3, 4}, 1)
	src := linearDoc(t, "V(b)", []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4}, 3)

	require.NoError(t, Merge(dst, src, nil, AlignForce))

	b := dst.mustTrace(t, "V(b)")
	require.Len(t, b.Data(), 5, "merged trace shares the destination offsets")
	for i, x := range dst.Axis().Data() {
		assert.InDelta(t, 3*x, b.Data()[i], 1e-9)
	}
}

func TestMergeForcedAlignmentComplex(t *testing.T) {
	t.Parallel()

	mk := func(xs []float64) *Document {
		ys := make([]complex128, len(xs))
		for i, x := range xs {
			ys[i] = complex(2*x, -x)
		}
		doc := NewDocument(AnalysisAC)
		_, err := doc.AddAxis("frequency", "frequency", xs)
		require.NoError(t, err)
		_, err = doc.AddComplexTrace("V(out)", "voltage", ys)
		require.NoError(t, err)
		return doc
	}

	// Destination carries only an axis; the donor supplies the trace.
	dst := NewDocument(AnalysisAC)
	_, err := dst.AddAxis("frequency", "frequency", []float64{1, 2, 3, 4})
	require.NoError(t, err)

	src := mk([]float64{1, 1.5, 2, 2.5, 3, 3.5, 4})
	require.NoError(t, Merge(dst, src, []string{"V(out)"}, AlignForce))

	got := dst.mustTrace(t, "V(out)")
	for i, x := range dst.Axis().Data() {
		w := got.WaveComplex(0)
		assert.InDelta(t, 2*x, real(w[i]), 1e-9)
		assert.InDelta(t, -x, imag(w[i]), 1e-9)
	}
}

func TestMergeDuplicateName(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 1, 2}
	dst := linearDoc(t, "V(a)", xs, 1)
	src := linearDoc(t, "V(a)", append([]float64(nil), xs...), 2)

	err := Merge(dst, src, nil, AlignStrict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already holds")
}

func TestMergeSteppedClampsDonorRuns(t *testing.T) {
	t.Parallel()

	// Destination has two runs, donor only one: the donor's single run is
	// re-used for every destination step.
	axis := []float64{0, 1, 2, 0, 1, 2}
	vals := []float64{0, 10, 20, 0, 10, 20}
	dst := NewDocument(AnalysisTransient)
	_, err := dst.AddAxis("time", "time", axis)
	require.NoError(t, err)
	_, err = dst.AddTrace("V(a)", "voltage", vals, PrecisionDouble)
	require.NoError(t, err)

	src := linearDoc(t, "V(b)", []float64{0, 1, 2}, 5)

	require.NoError(t, Merge(dst, src, nil, AlignForce))
	b := dst.mustTrace(t, "V(b)")
	assert.Equal(t, []float64{0, 5, 10, 0, 5, 10}, b.Data())
}

func TestResampleLinearValidation(t *testing.T) {
	t.Parallel()

	_, err := resampleLinear([]float64{0, 1}, []float64{0}, []float64{0.5})
	assert.Error(t, err)

	_, err = resampleLinear([]float64{0}, []float64{0}, []float64{0.5})
	assert.Error(t, err)

	_, err = resampleLinear([]float64{0, 1, 1}, []float64{0, 1, 2}, []float64{0.5})
	assert.Error(t, err, "non-increasing axis is rejected")
}
