// Package converter drives batch operations over result files: CSV export,
// layout conversion and multi-document merging.
package converter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spicetools/spiceraw/internal/rawfile"
)

// Options represents the conversion options
type Options struct {
	Debug      bool
	NoWrite    bool
	Layout     rawfile.Layout
	ForceAlign bool
}

// Converter handles the conversion process
type Converter struct {
	options Options
}

// NewConverter creates a new converter
func NewConverter(options Options) *Converter {
	return &Converter{options: options}
}

// Debug logs a message if debug mode is enabled
func (c *Converter) Debug(message string) {
	if c.options.Debug {
		fmt.Println(message)
	}
}

// ExportCSV writes the selected traces of one step to a CSV file, the axis
// first. names == nil exports every trace; complex traces split into .re and
// .im columns.
func (c *Converter) ExportCSV(rawPath, outPath string, names []string, step int) error {
	doc, err := rawfile.Read(rawPath, &rawfile.ReadOptions{Select: names, Debug: c.options.Debug})
	if err != nil {
		return err
	}

	var header []string
	var cols [][]string

	if axis := doc.Axis(); axis != nil {
		header = append(header, axis.Name())
		cols = append(cols, formatColumn(axis.Wave(step)))
	}
	for _, v := range doc.Variables() {
		t, ok := v.(*rawfile.Trace)
		if !ok {
			continue
		}
		if t.IsComplex() {
			wave := t.WaveComplex(step)
			res := make([]float64, len(wave))
			ims := make([]float64, len(wave))
			for i, s := range wave {
				res[i] = real(s)
				ims[i] = imag(s)
			}
			header = append(header, t.Name()+".re", t.Name()+".im")
			cols = append(cols, formatColumn(res), formatColumn(ims))
			continue
		}
		header = append(header, t.Name())
		cols = append(cols, formatColumn(t.Wave(step)))
	}
	if len(cols) == 0 {
		return fmt.Errorf("nothing to export from %s", rawPath)
	}

	if c.options.NoWrite {
		return nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for row := 0; row < len(cols[0]); row++ {
		record := make([]string, len(cols))
		for i, col := range cols {
			if row < len(col) {
				record[i] = col[row]
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatColumn(samples []float64) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = strconv.FormatFloat(s, 'e', -1, 64)
	}
	return out
}

// ConvertFile re-encodes a result file with the configured layout.
func (c *Converter) ConvertFile(inputFile, outputFile string) error {
	doc, err := rawfile.Read(inputFile, &rawfile.ReadOptions{Debug: c.options.Debug})
	if err != nil {
		fmt.Printf("RAW READ ERROR: %s\n", filepath.Base(inputFile))
		return err
	}
	if c.options.NoWrite {
		return nil
	}
	if err := rawfile.Write(outputFile, doc, &rawfile.WriteOptions{
		Layout: c.options.Layout,
		Debug:  c.options.Debug,
	}); err != nil {
		fmt.Printf("RAW WRITE ERROR: %s\n", filepath.Base(outputFile))
		return err
	}
	return nil
}

// MergeFiles reads the primary document, merges every donor's traces into it
// and writes the combined document. Diverging donor axes are re-sampled onto
// the primary axis when ForceAlign is set.
func (c *Converter) MergeFiles(primary string, donors []string, outputFile string) error {
	doc, err := rawfile.Read(primary, &rawfile.ReadOptions{Debug: c.options.Debug})
	if err != nil {
		return err
	}

	align := rawfile.AlignStrict
	if c.options.ForceAlign {
		align = rawfile.AlignForce
	}
	for _, donor := range donors {
		src, err := rawfile.Read(donor, &rawfile.ReadOptions{Debug: c.options.Debug})
		if err != nil {
			return err
		}
		if err := rawfile.Merge(doc, src, nil, align); err != nil {
			return fmt.Errorf("merging %s: %w", filepath.Base(donor), err)
		}
		c.Debug(fmt.Sprintf("merged %s into %s", filepath.Base(donor), filepath.Base(primary)))
	}

	if c.options.NoWrite {
		return nil
	}
	return rawfile.Write(outputFile, doc, &rawfile.WriteOptions{
		Layout: c.options.Layout,
		Debug:  c.options.Debug,
	})
}

// ProcessDirectory re-encodes all result files in a directory and its
// subdirectories, mirroring the tree under outputDir.
func (c *Converter) ProcessDirectory(inputDir, outputDir string) error {
	fmt.Printf("Scanning %s/ ...", inputDir)

	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".raw" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error scanning directory: %w", err)
	}

	fmt.Printf("Done.\nPlanning to process %d raw files in %s/\n", len(files), inputDir)

	converted := 0
	startTime := time.Now()
	for _, file := range files {
		rel, err := filepath.Rel(inputDir, file)
		if err != nil {
			return fmt.Errorf("error calculating relative path: %w", err)
		}
		outPath := filepath.Join(outputDir, rel)
		if !c.options.NoWrite {
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}
		}
		if err := c.ConvertFile(file, outPath); err != nil {
			if c.options.Debug {
				fmt.Printf("Error converting %s: %v\n", file, err)
			}
			continue
		}
		converted++
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Converted %d/%d files. Duration: %.2fs\n", converted, len(files), elapsed.Seconds())
	return nil
}
