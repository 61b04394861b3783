package model

import (
	"slices"

	"github.com/samber/lo"
)

// ConflictGraph is an undirected graph over course ids where an edge forbids two courses from
// sharing a slot. It is built once per run and never mutated afterwards.
type ConflictGraph struct {
	neighbors map[string][]string
	edges     map[[2]string]bool
}

// BuildConflictGraph links every pair of distinct courses sharing department and year
func BuildConflictGraph(courses []Course) ConflictGraph {
	return buildConflictGraph(courses, newStandardPredicateEvaluator(0))
}

// BuildConflictGraphWith builds the graph from a custom predicate, e.g. a real enrollment intersection
func BuildConflictGraphWith(courses []Course, conflicting func(course1, course2 Course) bool) ConflictGraph {
	return buildConflictGraph(courses, predicateFunc(conflicting))
}

func buildConflictGraph(courses []Course, evaluator conflictEvaluator) ConflictGraph {
	graph := ConflictGraph{
		neighbors: make(map[string][]string, len(courses)),
		edges:     make(map[[2]string]bool),
	}

	// Every course has an entry, even when it conflicts with nothing
	for _, course := range courses {
		graph.neighbors[course.Id] = []string{}
	}

	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			course1, course2 := courses[i], courses[j]
			if course1.Id == course2.Id || !evaluator.Conflicting(course1, course2) {
				continue
			}
			graph.neighbors[course1.Id] = append(graph.neighbors[course1.Id], course2.Id)
			graph.neighbors[course2.Id] = append(graph.neighbors[course2.Id], course1.Id)
			graph.edges[edgeKey(course1.Id, course2.Id)] = true
		}
	}

	return graph
}

func edgeKey(course1, course2 string) [2]string {
	if course1 > course2 {
		course1, course2 = course2, course1
	}
	return [2]string{course1, course2}
}

// Neighbors returns the conflicting courses in input order. The returned slice is a copy.
func (graph ConflictGraph) Neighbors(course string) []string {
	return slices.Clone(graph.neighbors[course])
}

func (graph ConflictGraph) Degree(course string) int {
	return len(graph.neighbors[course])
}

func (graph ConflictGraph) Conflicting(course1, course2 string) bool {
	return graph.edges[edgeKey(course1, course2)]
}

func (graph ConflictGraph) Contains(course string) bool {
	_, ok := graph.neighbors[course]
	return ok
}

func (graph ConflictGraph) Edges() int {
	return len(graph.edges)
}

// Adjacency returns a copy of the whole adjacency mapping
func (graph ConflictGraph) Adjacency() map[string][]string {
	return lo.MapValues(graph.neighbors, func(neighbors []string, _ string) []string {
		return slices.Clone(neighbors)
	})
}
