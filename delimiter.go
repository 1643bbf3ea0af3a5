package cytometry

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// delimiterSample is how much of a table is inspected to guess its
// delimiter.
const delimiterSample = 64 * 1024

const knownDelimiters = ",\t;|"

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	// Signs, hyphens in channel names and the like can look regular too
	for _, candidate := range delimiters {
		if len(candidate) > 0 && strings.ContainsRune(knownDelimiters, rune(candidate[0])) {
			return rune(candidate[0])
		}
	}

	return ','
}

// sniffDelimiter guesses the delimiter from the start of r without
// consuming it. The returned reader yields all of r.
func sniffDelimiter(r io.Reader) (rune, io.Reader, error) {
	br := bufio.NewReaderSize(r, delimiterSample)

	sample, err := br.Peek(delimiterSample)
	if err != nil && err != io.EOF {
		return 0, nil, err
	}

	// Drop a partial trailing line
	if cut := bytes.LastIndexByte(sample, '\n'); cut > 0 && err == nil {
		sample = sample[:cut+1]
	}

	return DetermineDelimiter(bytes.NewReader(sample)), br, nil
}
