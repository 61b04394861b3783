package model

import (
	"context"
	"strings"
	"time"
)

// Unassigned is the slot index of a course when the slot sequence is empty
const Unassigned = -1

const NoSlotReason = "No available time slot without conflicts"

// Assignment maps a course id to its slot index
type Assignment map[string]int

type Conflict struct {
	CourseId string `json:"courseId"`
	Reason   string `json:"reason"`
}

// Timetabler produces a slot assignment from a conflict graph and a slot domain. Every course
// receives a slot (Unassigned only when there are no slots at all); courses that could not avoid a
// conflicting neighbor are reported as Conflicts. Implementations must honor the context's
// deadline by returning the best assignment found so far.
type Timetabler interface {
	Build(
		ctx context.Context,
		courses []Course,
		graph ConflictGraph,
		slots []TimeSlot,
	) (Assignment, []Conflict)
}

type Algorithm string

const (
	GraphColoring          Algorithm = "graph-coloring"
	ConstraintSatisfaction Algorithm = "csp"
	Genetic                Algorithm = "genetic"
)

// ParseAlgorithm falls back to GraphColoring for unrecognized names
func ParseAlgorithm(name string) Algorithm {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case ConstraintSatisfaction:
		return ConstraintSatisfaction
	case Genetic:
		return Genetic
	default:
		return GraphColoring
	}
}

type SearchOptions struct {
	Timeout        time.Duration
	MaxIterations  int     // Backtracks for csp, generations for genetic
	PopulationSize int     // genetic only
	MutationRate   float64 // genetic only, per gene
	Seed           uint64  // genetic only
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Timeout:        300 * time.Second,
		MaxIterations:  1000,
		PopulationSize: 50,
		MutationRate:   0.05,
		Seed:           1,
	}
}

func (options SearchOptions) withDefaults() SearchOptions {
	defaults := DefaultSearchOptions()
	if options.Timeout <= 0 {
		options.Timeout = defaults.Timeout
	}
	if options.MaxIterations <= 0 {
		options.MaxIterations = defaults.MaxIterations
	}
	if options.PopulationSize < 2 {
		options.PopulationSize = defaults.PopulationSize
	}
	if options.MutationRate < 0 || options.MutationRate > 1 {
		options.MutationRate = defaults.MutationRate
	}
	return options
}

var timetablers = map[Algorithm]func(SearchOptions) Timetabler{
	GraphColoring: func(SearchOptions) Timetabler {
		return NewGraphColoringTimetabler()
	},
	ConstraintSatisfaction: NewCspTimetabler,
	Genetic:                NewGeneticTimetabler,
}

func NewTimetabler(algorithm Algorithm, options SearchOptions) Timetabler {
	constructor, ok := timetablers[algorithm]
	if !ok {
		constructor = timetablers[GraphColoring]
	}
	return constructor(options.withDefaults())
}
