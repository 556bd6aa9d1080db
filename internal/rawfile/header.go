package rawfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Mandatory header fields, in the order the simulator writes them.
var mandatoryFields = []string{
	"Title", "Date", "Plotname", "Flags", "No. Variables", "No. Points",
	"Offset", "Command",
}

// HeaderField is one "key: value" line of the preamble.
type HeaderField struct {
	Key   string
	Value string
}

// Header is the ordered field mapping of the preamble. Field order is
// preserved so a written file reproduces the original layout.
type Header struct {
	fields []HeaderField
}

// Get returns the value of the first field matching key (case-insensitive).
func (h *Header) Get(key string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the first field matching key, or appends a new one.
func (h *Header) Set(key, value string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Key, key) {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, HeaderField{Key: key, Value: value})
}

// Keys returns the field names in file order.
func (h *Header) Keys() []string {
	keys := make([]string, len(h.fields))
	for i, f := range h.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns the ordered key/value pairs.
func (h *Header) Fields() []HeaderField { return h.fields }

func (h *Header) getInt(key string) (int, error) {
	v, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing %q field", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
	}
	return n, nil
}

// flagSet is the parsed Flags line.
type flagSet struct {
	complexData bool
	fastAccess  bool
	stepped     bool
	forward     bool
	double      bool
}

func parseFlags(s string) flagSet {
	var fs flagSet
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		switch tok {
		case "complex":
			fs.complexData = true
		case "fastaccess":
			fs.fastAccess = true
		case "stepped":
			fs.stepped = true
		case "forward":
			fs.forward = true
		case "double":
			fs.double = true
		}
	}
	return fs
}

func (fs flagSet) encode(complexData bool, layout Layout, stepped bool) string {
	parts := []string{"real"}
	if complexData {
		parts[0] = "complex"
	}
	if fs.forward {
		parts = append(parts, "forward")
	}
	if stepped {
		parts = append(parts, "stepped")
	}
	if layout == LayoutFastAccess {
		parts = append(parts, "fastaccess")
	}
	return strings.Join(parts, " ")
}

// parseHeader splits the preamble lines into the ordered field mapping and
// the variable descriptor list. The "Variables:" line is a marker, not a
// field: everything after it is an ordinal/name/type descriptor line.
func parseHeader(lines []string) (*Header, []VarDecl, error) {
	h := &Header{}
	var decls []VarDecl
	inVars := false

	for _, line := range lines {
		if line == "" {
			continue
		}
		if !inVars {
			key, value, found := strings.Cut(line, ":")
			if !found {
				return nil, nil, fmt.Errorf("header line without colon: %q", line)
			}
			key = strings.TrimSpace(key)
			if strings.EqualFold(key, "Variables") {
				inVars = true
				continue
			}
			h.fields = append(h.fields, HeaderField{
				Key:   key,
				Value: strings.TrimSpace(value),
			})
			continue
		}

		decl, err := parseVarDecl(line)
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, decl)
	}

	if !inVars {
		return nil, nil, fmt.Errorf("header has no Variables block")
	}
	for _, key := range mandatoryFields {
		if _, ok := h.Get(key); !ok {
			return nil, nil, fmt.Errorf("header missing mandatory %q field", key)
		}
	}

	declared, err := h.getInt("No. Variables")
	if err != nil {
		return nil, nil, err
	}
	if declared != len(decls) {
		return nil, nil, fmt.Errorf("header declares %d variables but lists %d descriptors",
			declared, len(decls))
	}

	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		lower := strings.ToLower(d.Name)
		if seen[lower] {
			return nil, nil, fmt.Errorf("duplicate variable name %q", d.Name)
		}
		seen[lower] = true
	}
	return h, decls, nil
}

// parseVarDecl parses one "\t<ordinal>\t<name>\t<type>" descriptor line.
func parseVarDecl(line string) (VarDecl, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return VarDecl{}, fmt.Errorf("malformed variable descriptor: %q", line)
	}
	ord, err := strconv.Atoi(fields[0])
	if err != nil {
		return VarDecl{}, fmt.Errorf("variable descriptor ordinal %q: %w", fields[0], err)
	}
	return VarDecl{Ordinal: ord, Name: fields[1], Type: fields[2]}, nil
}
