package rawfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// stepMarker starts every run line of the companion log.
const stepMarker = ".step"

// StepParam is one swept parameter of a run. Values are parsed leniently as
// engineering-notated floats; values that don't parse stay text.
type StepParam struct {
	Name    string
	Text    string
	Value   float64
	Numeric bool
}

// StepRecord is the ordered parameter set of one run.
type StepRecord struct {
	Params []StepParam
}

// Lookup returns the parameter with the given name, case-insensitively.
func (r StepRecord) Lookup(name string) (StepParam, bool) {
	for _, p := range r.Params {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return StepParam{}, false
}

// matches reports whether the record's parameter equals the wanted value.
// Both sides are normalized through the engineering parser so "2k" matches a
// record holding 2000. A parameter absent from the record never matches.
func (r StepRecord) matches(name, want string) bool {
	p, ok := r.Lookup(name)
	if !ok {
		return false
	}
	if wantNum, err := ParseEngineering(want); err == nil && p.Numeric {
		return p.Value == wantNum
	}
	return strings.EqualFold(p.Text, want)
}

func newStepParam(name, text string) StepParam {
	p := StepParam{Name: name, Text: text}
	if v, err := ParseEngineering(text); err == nil {
		p.Value = v
		p.Numeric = true
	}
	return p
}

// syntheticSteps builds fallback records counting axis restarts alone, used
// when no companion metadata exists or it could not be parsed.
func syntheticSteps(n int) []StepRecord {
	records := make([]StepRecord, n)
	for i := range records {
		records[i] = StepRecord{Params: []StepParam{{
			Name:    "run",
			Text:    strconv.Itoa(i + 1),
			Value:   float64(i + 1),
			Numeric: true,
		}}}
	}
	return records
}

// ParseStepLog reads the companion text metadata file and returns one record
// per step-marker line. Marker lines hold space-separated key=value tokens
// after the marker. A file without marker lines yields no records and no
// error. The log itself may be single-byte or UTF-16LE text.
func ParseStepLog(path string) ([]StepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseStepLines(f)
}

func parseStepLines(r io.Reader) ([]StepRecord, error) {
	br := bufio.NewReader(r)
	enc := sniffLogEncoding(br)

	var records []StepRecord
	var consumed int64
	for {
		line, err := readLine(br, enc, &consumed)
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), stepMarker) {
			rec, perr := parseStepLine(line)
			if perr != nil {
				return nil, perr
			}
			records = append(records, rec)
		}
		if err != nil {
			if err == io.EOF {
				return records, nil
			}
			return records, err
		}
	}
}

// sniffLogEncoding peeks for a UTF-16LE BOM or interleaved NULs. Simulator
// logs switch encoding with the host locale, same as result-file headers.
func sniffLogEncoding(br *bufio.Reader) encoding {
	peek, _ := br.Peek(4)
	if len(peek) >= 2 && peek[0] == 0xFF && peek[1] == 0xFE {
		br.Discard(2)
		return encUTF16LE
	}
	if len(peek) >= 4 && peek[1] == 0 && peek[3] == 0 && peek[0] != 0 {
		return encUTF16LE
	}
	return encLatin1
}

// parseStepLine splits one ".step key=value key=value ..." line.
func parseStepLine(line string) (StepRecord, error) {
	rec := StepRecord{}
	tokens := strings.Fields(line)[1:]
	for _, tok := range tokens {
		name, value, found := strings.Cut(tok, "=")
		if !found {
			// Informational tokens (e.g. run counters) are not parameters.
			continue
		}
		if name == "" {
			return StepRecord{}, fmt.Errorf("malformed step token %q in %q", tok, line)
		}
		rec.Params = append(rec.Params, newStepParam(name, value))
	}
	if len(rec.Params) == 0 {
		return StepRecord{}, fmt.Errorf("step line holds no key=value tokens: %q", line)
	}
	return rec, nil
}
