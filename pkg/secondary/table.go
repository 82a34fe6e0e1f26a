// Package secondary predicts tides at secondary stations, which have no
// constituents of their own. Their tide is the tide of a reference primary
// station, shifted in time and scaled by amounts that vary between the
// values given for high water and for low water.
package secondary

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spencer-p/tidepredict/pkg/constituents"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

const fieldSep = "|"

// Params are the adjustments of one secondary station together with the
// constituents of its reference station.
type Params struct {
	ID               int
	ReferenceStation int

	// Time shifts in minutes applied at high and low water.
	MaxTimeOffset, MinTimeOffset int
	// Multiplicative height factors at high and low water.
	MaxScale, MinScale float64
	// Additive height adjustments. The table does not carry them, so they
	// are always zero.
	MaxAdditive, MinAdditive float64

	// Descriptive fields, not used in predictions.
	Name1, Name2 string
	Basin        string
	GridI, GridJ int
	Lat, Lon     float64

	Reference constituents.Set
}

// Loaded reports whether p is ready for predictions.
func (p *Params) Loaded() bool {
	return p.ID >= 1 && p.Reference.Loaded()
}

// Table looks up secondary stations in the pipe-delimited adjustment file
// and keeps the constituents of the current reference station in its own
// constituents.Store. It is not safe for concurrent use.
type Table struct {
	path   string
	store  *constituents.Store
	params Params
}

// NewTable reads secondary stations from path and their reference stations
// through store.
func NewTable(path string, store *constituents.Store) *Table {
	return &Table{
		path:   path,
		store:  store,
		params: Params{ID: -1, Reference: constituents.Unloaded()},
	}
}

// Load returns the parameters of secondary station id with its reference
// station loaded for year. The file is only scanned when id changes, but
// the reference constituents are always brought up to year.
func (t *Table) Load(year, id int) (Params, error) {
	if id < 1 {
		return Params{}, &tideerr.InvalidInputError{Field: "station", Msg: fmt.Sprintf("%d is not a station id", id)}
	}
	p := t.params
	if p.ID != id {
		var err error
		if p, err = t.scan(id); err != nil {
			return Params{}, err
		}
	}
	set, err := t.store.Load(year, p.ReferenceStation)
	if err != nil {
		return Params{}, fmt.Errorf("loading reference station %d of secondary station %d: %w", p.ReferenceStation, id, err)
	}
	p.Reference = set
	t.params = p
	return p, nil
}

func (t *Table) scan(id int) (Params, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return Params{}, fmt.Errorf("opening secondary stations: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		idStr, rest, ok := strings.Cut(line, fieldSep)
		if !ok {
			continue
		}
		found, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return Params{}, &tideerr.FormatError{Dataset: t.path, Line: n, Msg: "reading station id", Err: err}
		}
		if found != id {
			continue
		}
		p, err := parseParams(rest)
		if err != nil {
			return Params{}, &tideerr.FormatError{Dataset: t.path, Line: n, Msg: fmt.Sprintf("secondary station %d", id), Err: err}
		}
		p.ID = id
		return p, nil
	}
	if err := sc.Err(); err != nil {
		return Params{}, &tideerr.FormatError{Dataset: t.path, Line: n, Msg: "reading", Err: err}
	}
	return Params{}, &tideerr.LookupError{Dataset: t.path, Key: "secondary station", Value: id}
}

// parseParams decodes the fields after the id:
// name1|name2|basin|i|j|lat|lon|ref|HH:MM|HH:MM|maxScale|minScale
func parseParams(s string) (Params, error) {
	var p Params
	f := fields{rest: s}

	p.Name1 = strings.TrimSpace(f.next("name1"))
	p.Name2 = strings.TrimSpace(f.next("name2"))
	p.Basin = strings.TrimSpace(f.next("basin"))
	p.GridI = f.atoi("grid i")
	p.GridJ = f.atoi("grid j")
	p.Lat = f.parseFloat("latitude")
	p.Lon = f.parseFloat("longitude")
	p.ReferenceStation = f.atoi("reference station")
	p.MaxTimeOffset = f.minutes("max time")
	p.MinTimeOffset = f.minutes("min time")
	p.MaxScale = f.parseFloat("max scale")
	if f.err != nil {
		return p, f.err
	}
	minScale, err := strconv.ParseFloat(strings.TrimSpace(f.rest), 64)
	if err != nil {
		return p, fmt.Errorf("min scale: %w", err)
	}
	p.MinScale = minScale
	return p, nil
}

// fields consumes delimited fields, remembering the first error.
type fields struct {
	rest string
	err  error
}

func (f *fields) next(name string) string {
	if f.err != nil {
		return ""
	}
	field, rest, ok := strings.Cut(f.rest, fieldSep)
	if !ok {
		f.err = fmt.Errorf("%s: missing %q delimiter", name, fieldSep)
		return ""
	}
	f.rest = rest
	return field
}

func (f *fields) atoi(name string) int {
	s := f.next(name)
	if f.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f.err = fmt.Errorf("%s: %w", name, err)
	}
	return n
}

func (f *fields) parseFloat(name string) float64 {
	s := f.next(name)
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f.err = fmt.Errorf("%s: %w", name, err)
	}
	return v
}

// minutes reads an "HH:MM" field as hours*60 + minutes. A leading minus
// sign negates the whole offset, so "-0:10" is ten minutes early.
func (f *fields) minutes(name string) int {
	s := strings.TrimSpace(f.next(name))
	if f.err != nil {
		return 0
	}
	sign := 1
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = -1, rest
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		f.err = fmt.Errorf("%s: %q is not HH:MM", name, s)
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		f.err = fmt.Errorf("%s: %w", name, err)
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		f.err = fmt.Errorf("%s: %w", name, err)
		return 0
	}
	return sign * (h*60 + m)
}
