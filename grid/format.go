package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdrpinto/gridastar"
)

var (
	// ErrSyntax is returned by Parse for malformed map text.
	ErrSyntax = errors.New("grid syntax error")
	// ErrLossyFormat is returned by CheckFormat when the text form cannot hold g's costs.
	ErrLossyFormat = errors.New("grid costs do not fit the text format")
)

// Parse reads a grid in text form, one row per line:
//
//	.     open cell, cost 1
//	1..9  open cell with that cost
//	#     blocked cell
//	S, G  start and goal, cost 1
//
// Blank lines are skipped. Every row must have the same width and the map
// must contain exactly one S and one G.
func Parse(reader io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)

	rows := make([][]float64, 0)
	var start, goal *gridastar.Location
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		if len(rows) > 0 && len(line) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has width %d, want %d", ErrSyntax, lineNumber, len(line), len(rows[0]))
		}
		y := len(rows)
		row := make([]float64, len(line))
		for x, char := range line {
			switch {
			case char == '.':
				row[x] = 1
			case char == '#':
				row[x] = Blocked
			case char >= '1' && char <= '9':
				row[x] = float64(char - '0')
			case char == 'S' || char == 'G':
				row[x] = 1
				location := gridastar.NewLocation(x, y)
				target := &start
				if char == 'G' {
					target = &goal
				}
				if *target != nil {
					return nil, fmt.Errorf("%w: line %d: second %c", ErrSyntax, lineNumber, char)
				}
				*target = &location
			default:
				return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrSyntax, lineNumber, char)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrSyntax)
	}
	if start == nil || goal == nil {
		return nil, fmt.Errorf("%w: map needs one S and one G", ErrSyntax)
	}

	g, err := New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		copy(g.costs[y*g.Width:], row)
	}
	g.Start, g.Goal = *start, *goal
	return g, nil
}

// CheckFormat reports whether Format followed by Parse gives back g's costs
// exactly: start and goal must cost 1 and every other open cell a whole
// number from 1 to 9.
func (g *Grid) CheckFormat() error {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			location := gridastar.NewLocation(x, y)
			cost := g.Cost(location)
			switch {
			case location == g.Start || location == g.Goal:
				if cost != 1 {
					return fmt.Errorf("%w: %v costs %v, want 1", ErrLossyFormat, location, cost)
				}
			case cost == Blocked:
			case cost < 1 || cost > 9 || cost != math.Trunc(cost):
				return fmt.Errorf("%w: %v costs %v", ErrLossyFormat, location, cost)
			}
		}
	}
	return nil
}

// Format writes g in the text form read by Parse. Costs are rounded to the
// nearest of 1..9 and start and goal are written as cost 1; CheckFormat
// tells whether that loses anything.
func (g *Grid) Format(writer io.Writer) error {
	buffered := bufio.NewWriter(writer)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			location := gridastar.NewLocation(x, y)
			if err := buffered.WriteByte(g.cellChar(location)); err != nil {
				return err
			}
		}
		if err := buffered.WriteByte('\n'); err != nil {
			return err
		}
	}
	return buffered.Flush()
}

func (g *Grid) String() string {
	var builder strings.Builder
	_ = g.Format(&builder)
	return builder.String()
}

func (g *Grid) cellChar(location gridastar.Location) byte {
	switch {
	case location == g.Start:
		return 'S'
	case location == g.Goal:
		return 'G'
	}
	cost := g.Cost(location)
	if cost == Blocked {
		return '#'
	}
	rounded := int(math.Round(cost))
	switch {
	case rounded <= 1:
		return '.'
	case rounded > 9:
		return '9'
	default:
		return byte('0' + rounded)
	}
}
