package constituents

import (
	"bufio"
	"io"
	"strings"

	"github.com/spencer-p/tidepredict/pkg/fixedwidth"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

// Yearly file: a block of five lines per year. Every line starts with the
// four digit year followed by four unused columns, then eight-character
// (node factor x1000, phase lead x10) pairs.
const (
	yearTagWidth   = 4
	yearLinePrefix = 8
	linesPerYear   = 5
)

const (
	stationIDWidth    = 3
	mllwWidth         = 6
	stationLinePrefix = 8
	speedLines        = 6

	// id line, MLLW line, six amplitude/epoch lines
	linesPerStation = 8
)

var (
	nodeFactorCol = fixedwidth.Column{Width: 4, Scale: 1000, Dest: 0}
	phaseLeadCol  = fixedwidth.Column{Width: 4, Scale: 10, Dest: 1}

	yearlyRecords = []fixedwidth.Record{
		{Skip: yearLinePrefix, Fields: fixedwidth.Span(0, 7, nodeFactorCol, phaseLeadCol)},
		{Skip: yearLinePrefix, Fields: fixedwidth.Span(8, 15, nodeFactorCol, phaseLeadCol)},
		{Skip: yearLinePrefix, Fields: fixedwidth.Span(16, 23, nodeFactorCol, phaseLeadCol)},
		{Skip: yearLinePrefix, Fields: fixedwidth.Span(24, 31, nodeFactorCol, phaseLeadCol)},
		{Skip: yearLinePrefix, Fields: fixedwidth.Span(32, 36, nodeFactorCol, phaseLeadCol)},
	}
)

// Station file: six lines of ten-character speeds (x1e7) shared by every
// station, then eight-line blocks per station.
var (
	speedCol     = fixedwidth.Column{Width: 10, Scale: 10000000, Dest: 0}
	amplitudeCol = fixedwidth.Column{Width: 5, Scale: 1000, Dest: 0}
	epochCol     = fixedwidth.Column{Width: 4, Scale: 10, Dest: 1}

	speedRecords     = sevens(0, speedCol)
	amplitudeRecords = sevens(stationLinePrefix, amplitudeCol, epochCol)
)

// sevens lays the constituents out seven to a line: 1-7, 8-14, ... 36-37.
func sevens(skip int, cols ...fixedwidth.Column) []fixedwidth.Record {
	var recs []fixedwidth.Record
	for first := 0; first < Count; first += 7 {
		last := first + 6
		if last >= Count {
			last = Count - 1
		}
		recs = append(recs, fixedwidth.Record{Skip: skip, Fields: fixedwidth.Span(first, last, cols...)})
	}
	return recs
}

// lineReader hands out lines and turns EOF into a FormatError.
type lineReader struct {
	name string
	sc   *bufio.Scanner
	n    int
}

func newLineReader(name string, r io.Reader) *lineReader {
	return &lineReader{name: name, sc: bufio.NewScanner(r)}
}

func (r *lineReader) next() (string, error) {
	if !r.sc.Scan() {
		err := r.sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", r.errorf(err, "unexpected end of input")
	}
	r.n++
	return strings.TrimRight(r.sc.Text(), "\r"), nil
}

// skipTo advances so that the next call to next returns line number n.
func (r *lineReader) skipTo(n int) error {
	for r.n < n-1 {
		if _, err := r.next(); err != nil {
			return err
		}
	}
	return nil
}

func (r *lineReader) errorf(err error, msg string) error {
	return &tideerr.FormatError{Dataset: r.name, Line: r.n, Msg: msg, Err: err}
}
