package resultparser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const noClass = -1

// Parser consumes a result dump one line at a time. A dump starts with the
// team name, then repeats a path line (team\patient\image\...\Class) and a
// score line. Lines naming .mat files may sit between a path and its score.
//
// A Parser is not safe for concurrent use. After the first ParseError it
// returns that error for every further line.
type Parser struct {
	registry Registry

	state          State
	team           string
	currentClass   int
	currentPatient string
	currentImage   string

	scores *ScoreTable
	err    error
}

func New(registry Registry) *Parser {
	if registry.Separator == "" {
		registry.Separator = DefaultSeparator
	}

	return &Parser{
		registry:     registry,
		state:        AwaitingTeam,
		currentClass: noClass,
		scores:       NewScoreTable(),
	}
}

// ParseReader feeds every line of r, stripped of surrounding whitespace, to a
// new Parser. It stops at the first error, which carries the line number.
func ParseReader(r io.Reader, registry Registry) (*Parser, error) {
	p := New(registry)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.Parse(strings.TrimSpace(scanner.Text())); err != nil {
			return p, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return p, scanner.Err()
}

func (p *Parser) State() State {
	return p.state
}

func (p *Parser) Team() string {
	return p.team
}

// Scores is the table accumulated so far.
func (p *Parser) Scores() *ScoreTable {
	return p.scores
}

func (p *Parser) Registry() Registry {
	return p.registry
}

// Parse updates the state and the score table with one line. Empty lines are
// ignored in every state.
func (p *Parser) Parse(line string) error {
	if p.err != nil {
		return p.err
	}
	if line == "" {
		return nil
	}

	var err error
	switch p.state {
	case AwaitingTeam:
		p.parseTeam(line)
	case AwaitingClass:
		err = p.parseClass(line)
	case AwaitingScore:
		err = p.parseScore(line)
	default:
		err = &ParseError{State: p.state, Line: line, Message: "Couldn't find correct action"}
	}

	p.err = err
	return err
}

func (p *Parser) parseTeam(line string) {
	p.team = line
	p.currentClass = noClass
	p.state = AwaitingClass
}

func (p *Parser) parseClass(line string) error {
	parts := strings.Split(line, p.registry.Separator)

	segments := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		segments[part] = struct{}{}
	}

	// Classes are checked in registry order; the last one present in the
	// path wins, wherever it sits among the segments
	for i, class := range p.registry.Classes {
		if _, exists := segments[class]; exists {
			p.currentClass = i
		}
	}

	if p.currentClass == noClass {
		return &ParseError{State: p.state, Line: line, Message: "Couldn't find class", Kind: ErrUnparseableClass}
	}

	if len(parts) < 3 {
		p.currentClass = noClass
		return &ParseError{State: p.state, Line: line, Message: "Couldn't find patient and image", Kind: ErrUnparseableClass}
	}

	p.currentPatient = parts[1]
	p.currentImage = parts[2]
	p.state = AwaitingScore

	return nil
}

func (p *Parser) parseScore(line string) error {
	// Auxiliary filenames interleaved with the scores
	if strings.Contains(line, ".mat") {
		return nil
	}

	score, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return &ParseError{State: p.state, Line: line, Message: "Couldn't parse float", Kind: ErrUnparseableScore}
	}

	p.scores.Append(p.currentPatient, ScoreRecord{
		Image: p.currentImage,
		Class: p.currentClass,
		Score: score,
	})

	p.currentClass = noClass
	p.state = AwaitingClass

	return nil
}
