package rawfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerLines(novars string, decls ...string) []string {
	lines := []string{
		"Title: * RC lowpass",
		"Date: Mon Jan 2 15:04:05 2006",
		"Plotname: Transient Analysis",
		"Flags: real forward",
		"No. Variables: " + novars,
		"No. Points: 5",
		"Offset: 0.0000000000000000e+00",
		"Command: spiceraw test",
		"Variables:",
	}
	return append(lines, decls...)
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	h, decls, err := parseHeader(headerLines("2",
		"\t0\ttime\ttime",
		"\t1\tV(out)\tvoltage",
	))
	require.NoError(t, err)

	title, ok := h.Get("Title")
	require.True(t, ok)
	assert.Equal(t, "* RC lowpass", title)

	// lookup is case-insensitive
	_, ok = h.Get("plotname")
	assert.True(t, ok)

	n, err := h.getInt("No. Points")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.Len(t, decls, 2)
	assert.Equal(t, VarDecl{Ordinal: 0, Name: "time", Type: "time"}, decls[0])
	assert.Equal(t, VarDecl{Ordinal: 1, Name: "V(out)", Type: "voltage"}, decls[1])

	assert.Equal(t, []string{
		"Title", "Date", "Plotname", "Flags", "No. Variables", "No. Points",
		"Offset", "Command",
	}, h.Keys())
}

func TestParseHeaderCountMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := parseHeader(headerLines("3",
		"\t0\ttime\ttime",
		"\t1\tV(out)\tvoltage",
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptors")
}

func TestParseHeaderDuplicateName(t *testing.T) {
	t.Parallel()

	_, _, err := parseHeader(headerLines("2",
		"\t0\tV(out)\tvoltage",
		"\t1\tv(OUT)\tvoltage",
	))
	require.Error(t, err)
}

func TestParseHeaderMissingMandatory(t *testing.T) {
	t.Parallel()

	_, _, err := parseHeader([]string{
		"Title: incomplete",
		"Variables:",
		"\t0\ttime\ttime",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandatory")
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	fs := parseFlags("complex forward stepped fastaccess")
	assert.True(t, fs.complexData)
	assert.True(t, fs.forward)
	assert.True(t, fs.stepped)
	assert.True(t, fs.fastAccess)

	fs = parseFlags("real")
	assert.False(t, fs.complexData)
	assert.False(t, fs.fastAccess)
}

func TestAnalysisFromPlotname(t *testing.T) {
	t.Parallel()

	cases := []struct {
		plotname string
		want     AnalysisKind
		hasAxis  bool
	}{
		{"Transient Analysis", AnalysisTransient, true},
		{"AC Analysis", AnalysisAC, true},
		{"DC transfer characteristic", AnalysisDCSweep, true},
		{"Noise Spectral Density - (V/Hz½ or A/Hz½)", AnalysisNoise, true},
		{"FFT of time domain data", AnalysisFFT, true},
		{"Operating Point", AnalysisOperatingPoint, false},
		{"Transfer Function", AnalysisTransferFunction, false},
		{"Something Else", AnalysisUnknown, true},
	}
	for _, tc := range cases {
		k := analysisFromPlotname(tc.plotname)
		assert.Equal(t, tc.want, k, tc.plotname)
		assert.Equal(t, tc.hasAxis, k.HasAxis(), tc.plotname)
	}

	assert.True(t, AnalysisAC.complexByPlotname())
	assert.True(t, AnalysisFFT.complexByPlotname())
	assert.False(t, AnalysisTransient.complexByPlotname())
}
