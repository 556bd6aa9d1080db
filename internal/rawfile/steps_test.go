package rawfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stepLogText = `Circuit: * sweep
.step param R=1k
.step param R=2k
.step param R=3k
.step param R=4k

Date: some trailing noise
`

func TestParseStepLines(t *testing.T) {
	t.Parallel()

	records, err := parseStepLines(bytes.NewReader([]byte(stepLogText)))
	require.NoError(t, err)
	require.Len(t, records, 4)

	p, ok := records[1].Lookup("r")
	require.True(t, ok, "lookup is case-insensitive")
	assert.True(t, p.Numeric)
	assert.Equal(t, 2000.0, p.Value)
	assert.Equal(t, "2k", p.Text)
}

func TestParseStepLinesUTF16(t *testing.T) {
	t.Parallel()

	data := append([]byte{0xFF, 0xFE}, utf16le(".step param R=1k temp=27\n")...)
	records, err := parseStepLines(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Params, 2)
	assert.Equal(t, "R", records[0].Params[0].Name)
	assert.Equal(t, "temp", records[0].Params[1].Name)
}

func TestParseStepLinesMultiParam(t *testing.T) {
	t.Parallel()

	records, err := parseStepLines(bytes.NewReader([]byte(".step R=10k C=2n V=slow\n")))
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, ok := records[0].Lookup("V")
	require.True(t, ok)
	assert.False(t, v.Numeric, "non-numeric values stay text")
	assert.Equal(t, "slow", v.Text)
}

func TestParseStepLogMissing(t *testing.T) {
	t.Parallel()

	_, err := ParseStepLog(filepath.Join(t.TempDir(), "absent.log"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestStepRecordMatches(t *testing.T) {
	t.Parallel()

	rec := StepRecord{Params: []StepParam{
		newStepParam("R", "2k"),
		newStepParam("mode", "slow"),
	}}

	assert.True(t, rec.matches("R", "2k"))
	assert.True(t, rec.matches("R", "2000"), "engineering normalization on both sides")
	assert.True(t, rec.matches("r", "2K"))
	assert.False(t, rec.matches("R", "3k"))
	assert.True(t, rec.matches("mode", "SLOW"))
	assert.False(t, rec.matches("absent", "1"), "missing parameter never matches")
}

func TestSyntheticSteps(t *testing.T) {
	t.Parallel()

	records := syntheticSteps(3)
	require.Len(t, records, 3)
	p, ok := records[2].Lookup("run")
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Value)
}

func TestAxisStepOffsets(t *testing.T) {
	t.Parallel()

	t.Run("uniform runs", func(t *testing.T) {
		const runs, m = 4, 50
		data := make([]float64, 0, runs*m)
		for r := 0; r < runs; r++ {
			for i := 0; i < m; i++ {
				data = append(data, float64(i)*1e-3)
			}
		}
		ax := &Axis{name: "time", kind: "time", data: data}
		ax.computeOffsets()
		assert.Equal(t, []int{0, 50, 100, 150, 200}, ax.StepOffsets())
		assert.Equal(t, runs, ax.StepCount())
	})

	t.Run("duplicated boundary sample", func(t *testing.T) {
		// The simulator sometimes writes the restart value twice at a run
		// boundary; the offset must land past the duplicate.
		data := []float64{0, 1, 2, 0, 0, 1, 2}
		ax := &Axis{data: data}
		ax.computeOffsets()
		assert.Equal(t, []int{0, 4, 7}, ax.StepOffsets())
	})

	t.Run("wave clamps out of range", func(t *testing.T) {
		ax := &Axis{data: []float64{0, 1, 2, 0, 1, 2}}
		ax.computeOffsets()
		assert.Equal(t, []float64{0, 1, 2}, ax.Wave(1))
		assert.Empty(t, ax.Wave(7), "out-of-range step clamps to buffer end")
		assert.Equal(t, []float64{0, 1, 2}, ax.Wave(-1), "negative step clamps to 0")
	})
}
