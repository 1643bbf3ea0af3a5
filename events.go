// Package cytometry loads flow cytometry event tables and experiment
// manifests from disk. The experiment model itself lives in the experiment
// package; views live in the view package.
package cytometry

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ReadEventData loads a delimited event table: a header row of channel names
// followed by one row of numbers per event. The file may be compressed with
// any format MaybeDecompress understands, and may be delimited by commas,
// tabs, semicolons or pipes.
func ReadEventData(path string) (experiment.EventData, error) {
	f, err := os.Open(expandHomeDir(path))
	if err != nil {
		return experiment.EventData{}, pfx.Err(err)
	}
	defer f.Close()

	rc, dt, err := MaybeDecompress(f)
	if err != nil {
		return experiment.EventData{}, pfx.Err(err)
	}
	defer rc.Close()

	log.WithFields(log.Fields{"file": path, "compression": dt}).Debugln("Reading events")

	data, err := DecodeEventData(rc)
	if err != nil {
		return data, errors.Wrapf(err, "%s", path)
	}
	return data, nil
}

// DecodeEventData parses an uncompressed delimited event table from r.
func DecodeEventData(r io.Reader) (experiment.EventData, error) {
	delim, r, err := sniffDelimiter(r)
	if err != nil {
		return experiment.EventData{}, err
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return experiment.EventData{}, errors.Wrap(experiment.ErrInvalidEventData, "no header row")
	} else if err != nil {
		return experiment.EventData{}, err
	}

	channels := make([]string, len(header))
	for i, name := range header {
		channels[i] = strings.TrimSpace(name)
	}

	columns := make([][]float64, len(channels))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return experiment.EventData{}, errors.Wrapf(experiment.ErrInvalidEventData, "%v", err)
		}

		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return experiment.EventData{}, errors.Wrapf(experiment.ErrInvalidEventData, "line %d, channel %q: %q is not a number", line, channels[i], cell)
			}
			columns[i] = append(columns[i], v)
		}
	}

	byName := make(map[string][]float64, len(channels))
	for i, name := range channels {
		if _, dup := byName[name]; dup {
			return experiment.EventData{}, errors.Wrapf(experiment.ErrInvalidEventData, "channel %q appears twice", name)
		}
		byName[name] = columns[i]
		if byName[name] == nil {
			byName[name] = []float64{}
		}
	}

	return experiment.NewEventData(channels, byName)
}
