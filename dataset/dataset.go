// Package dataset loads bar and signal series from CSV files, with
// transparent decompression of .xz archives so historical datasets can be
// stored compressed.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/signal"
)

// LoadBars reads a bar series from a CSV file with a header row and columns
// time,open,high,low,close,volume. Timestamps are RFC3339 or unix seconds.
// The loaded series is validated before being returned.
func LoadBars(path string) ([]market.Bar, error) {
	rows, err := readCSV(path, 6)
	if err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(rows))
	for i, row := range rows {
		t, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		vals := make([]float64, 5)
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", path, i+2, j+2, err)
			}
			vals[j] = v
		}
		bars = append(bars, market.Bar{
			Time:   t,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	if err := market.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// LoadSignals reads a signal series from a CSV file with a header row and
// columns time,direction,strength.
func LoadSignals(path string) ([]signal.Signal, error) {
	rows, err := readCSV(path, 3)
	if err != nil {
		return nil, err
	}

	sigs := make([]signal.Signal, 0, len(rows))
	for i, row := range rows {
		t, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		dir, err := signal.ParseDirection(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		strength, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		sigs = append(sigs, signal.Signal{Time: t, Direction: dir, Strength: strength})
	}

	if err := signal.Validate(sigs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sigs, nil
}

// readCSV opens the file (decompressing .xz), skips the header, and returns
// data rows with at least wantCols columns each.
func readCSV(path string, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		src = xr
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", market.ErrInvalidInput, path)
	}

	rows := records[1:]
	for i, row := range rows {
		if len(row) < wantCols {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d",
				market.ErrInvalidInput, path, i+2, len(row), wantCols)
		}
	}
	return rows, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", market.ErrInvalidInput, s)
}
