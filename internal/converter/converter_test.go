package converter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicetools/spiceraw/internal/rawfile"
)

func fixture(t *testing.T, dir string) string {
	t.Helper()

	doc := rawfile.NewDocument(rawfile.AnalysisTransient)
	axis := make([]float64, 10)
	vout := make([]float64, 10)
	for i := range axis {
		axis[i] = float64(i) * 1e-3
		vout[i] = float64(i) * 0.5
	}
	_, err := doc.AddAxis("time", "time", axis)
	require.NoError(t, err)
	_, err = doc.AddTrace("V(out)", "voltage", vout, rawfile.PrecisionDouble)
	require.NoError(t, err)

	path := filepath.Join(dir, "fixture.raw")
	require.NoError(t, rawfile.Write(path, doc, nil))
	return path
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rawPath := fixture(t, dir)
	outPath := filepath.Join(dir, "out.csv")

	conv := NewConverter(Options{})
	require.NoError(t, conv.ExportCSV(rawPath, outPath, nil, 0))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 11, "header row plus ten samples")
	assert.Equal(t, []string{"time", "V(out)"}, records[0])
	assert.Equal(t, []string{"2e-03", "1e+00"}, records[3])
}

func TestConvertFileChangesLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rawPath := fixture(t, dir)
	outPath := filepath.Join(dir, "fast.raw")

	conv := NewConverter(Options{Layout: rawfile.LayoutFastAccess})
	require.NoError(t, conv.ConvertFile(rawPath, outPath))

	doc, err := rawfile.Read(outPath, nil)
	require.NoError(t, err)
	flags, _ := doc.HeaderValue("Flags")
	assert.Contains(t, flags, "fastaccess")

	orig, err := rawfile.Read(rawPath, nil)
	require.NoError(t, err)
	got, err := doc.Trace("V(out)")
	require.NoError(t, err)
	want, err := orig.Trace("V(out)")
	require.NoError(t, err)
	assert.Equal(t, want.Data(), got.Data())
}

func TestMergeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	primary := fixture(t, dir)

	donor := rawfile.NewDocument(rawfile.AnalysisTransient)
	axis := []float64{0, 4.5e-3, 9e-3} // coarser sampling than the primary
	_, err := donor.AddAxis("time", "time", axis)
	require.NoError(t, err)
	_, err = donor.AddTrace("V(in)", "voltage", []float64{0, 4.5, 9}, rawfile.PrecisionDouble)
	require.NoError(t, err)
	donorPath := filepath.Join(dir, "donor.raw")
	require.NoError(t, rawfile.Write(donorPath, donor, nil))

	outPath := filepath.Join(dir, "merged.raw")
	conv := NewConverter(Options{ForceAlign: true})
	require.NoError(t, conv.MergeFiles(primary, []string{donorPath}, outPath))

	doc, err := rawfile.Read(outPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "V(out)", "V(in)"}, doc.VariableNames())

	in, err := doc.Trace("V(in)")
	require.NoError(t, err)
	require.Len(t, in.Data(), 10)
	// Donor trace is V(in) = 1000*t; linear re-sampling keeps it exact.
	for i, x := range doc.Axis().Data() {
		assert.InDelta(t, 1000*x, in.Data()[i], 1e-9)
	}
}

func TestProcessDirectory(t *testing.T) {
	t.Parallel()

	inputDir := t.TempDir()
	outputDir := t.TempDir()
	fixture(t, inputDir)

	sub := filepath.Join(inputDir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))
	fixture(t, sub)

	conv := NewConverter(Options{})
	require.NoError(t, conv.ProcessDirectory(inputDir, outputDir))

	for _, p := range []string{
		filepath.Join(outputDir, "fixture.raw"),
		filepath.Join(outputDir, "nested", "fixture.raw"),
	} {
		doc, err := rawfile.Read(p, nil)
		require.NoError(t, err)
		assert.Equal(t, 10, doc.NumPoints())
	}
}
