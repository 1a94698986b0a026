package world

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const DefaultRosterPath = "npcs.txt"

// ErrRosterTruncated marks a load that stopped at a line it could not parse.
// Entities read before that line are still returned.
var ErrRosterTruncated = errors.New("roster truncated")

// SaveRoster writes one "<kind> <name> <x> <y>" line per alive record.
func SaveRoster(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if !rec.Alive {
			continue
		}

		if _, err := fmt.Fprintf(bw, "%s %s %d %d\n", rec.Kind, rec.Name, rec.X, rec.Y); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// LoadRoster rebuilds entities through the factory. A line that does not
// split into kind, name and two integers ends the load; a line that parses
// but fails validation fails the whole load.
func LoadRoster(r io.Reader, f *Factory) ([]*Entity, error) {
	var out []*Entity

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 4 {
			return out, fmt.Errorf("line %d: %w", lineNo, ErrRosterTruncated)
		}

		x, errX := strconv.Atoi(fields[2])
		y, errY := strconv.Atoi(fields[3])
		if errX != nil || errY != nil {
			return out, fmt.Errorf("line %d: %w", lineNo, ErrRosterTruncated)
		}

		e, err := f.Create(fields[0], fields[1], x, y)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, e)
	}

	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read roster: %w", err)
	}

	return out, nil
}

func SaveRosterFile(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roster %s: %w", path, err)
	}

	if err := SaveRoster(file, records); err != nil {
		file.Close()
		return fmt.Errorf("write roster %s: %w", path, err)
	}

	return file.Close()
}

func LoadRosterFile(path string, f *Factory) ([]*Entity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer file.Close()

	return LoadRoster(file, f)
}
