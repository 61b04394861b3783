package model

import (
	"context"
	"math/rand/v2"
	"slices"
)

const (
	tournamentSize = 3
	repairRate     = 0.5
)

// geneticTimetabler evolves full assignments scored by the number of conflicting edges. The greedy
// coloring seeds the population and elitism keeps the best individual, so the result is never
// worse than greedy. Runs are deterministic for a given seed.
type geneticTimetabler struct {
	options SearchOptions
}

func NewGeneticTimetabler(options SearchOptions) Timetabler {
	return &geneticTimetabler{
		options: options.withDefaults(),
	}
}

type individual struct {
	genes   []int // Slot index per course, in degree order
	fitness int   // Conflicting edges, lower is better
}

func (timetabler *geneticTimetabler) Build(
	ctx context.Context,
	courses []Course,
	graph ConflictGraph,
	slots []TimeSlot,
) (Assignment, []Conflict) {
	//** Incumbent
	incumbent, incumbentConflicts := NewGraphColoringTimetabler().Build(ctx, courses, graph, slots)
	if len(incumbentConflicts) == 0 || len(slots) == 0 {
		return incumbent, incumbentConflicts
	}

	ctx, cancel := context.WithTimeout(ctx, timetabler.options.Timeout)
	defer cancel()

	ordered := orderByDegree(courses, graph)
	search := newGeneticSearch(ordered, graph, len(slots), timetabler.options)

	//** Initial population
	seed := make([]int, len(ordered))
	for i, course := range ordered {
		seed[i] = incumbent[course.Id]
	}
	population := search.populate(seed)

	//** Evolve
	for generation := 0; generation < timetabler.options.MaxIterations; generation++ {
		if ctx.Err() != nil || population[0].fitness == 0 {
			break
		}
		population = search.nextGeneration(population)
	}

	//** Decode best individual
	best := population[0]
	assignment := make(Assignment, len(ordered))
	for i, course := range ordered {
		assignment[course.Id] = best.genes[i]
	}
	conflicts := reportConflicts(ordered, graph, assignment)
	if len(conflicts) < len(incumbentConflicts) {
		return assignment, conflicts
	}
	return incumbent, incumbentConflicts
}

type geneticSearch struct {
	edges      [][2]int
	genes      int
	totalSlots int
	options    SearchOptions
	random     *rand.Rand
}

func newGeneticSearch(ordered []Course, graph ConflictGraph, totalSlots int, options SearchOptions) *geneticSearch {
	index := make(map[string]int, len(ordered))
	for i, course := range ordered {
		index[course.Id] = i
	}

	edges := make([][2]int, 0, graph.Edges())
	for i, course := range ordered {
		for _, neighbor := range graph.neighbors[course.Id] {
			if j, ok := index[neighbor]; ok && i < j {
				edges = append(edges, [2]int{i, j})
			}
		}
	}

	return &geneticSearch{
		edges:      edges,
		genes:      len(ordered),
		totalSlots: totalSlots,
		options:    options,
		random:     rand.New(rand.NewPCG(options.Seed, options.Seed^0x9E3779B97F4A7C15)),
	}
}

// populate returns a population sorted by fitness containing seed and random individuals
func (search *geneticSearch) populate(seed []int) []individual {
	population := make([]individual, 0, search.options.PopulationSize)
	population = append(population, search.evaluate(slices.Clone(seed)))
	for len(population) < search.options.PopulationSize {
		genes := make([]int, search.genes)
		for i := range genes {
			genes[i] = search.random.IntN(search.totalSlots)
		}
		population = append(population, search.evaluate(genes))
	}
	search.sort(population)
	return population
}

func (search *geneticSearch) nextGeneration(population []individual) []individual {
	elites := max(1, len(population)/10)
	next := make([]individual, 0, len(population))
	next = append(next, population[:elites]...)

	for len(next) < len(population) {
		parent1, parent2 := search.tournament(population), search.tournament(population)
		child := search.crossover(parent1, parent2)
		search.mutate(child)
		next = append(next, search.evaluate(child))
	}

	search.sort(next)
	return next
}

func (search *geneticSearch) tournament(population []individual) individual {
	best := population[search.random.IntN(len(population))]
	for range tournamentSize - 1 {
		contender := population[search.random.IntN(len(population))]
		if contender.fitness < best.fitness {
			best = contender
		}
	}
	return best
}

// crossover is uniform: each gene comes from either parent with equal probability
func (search *geneticSearch) crossover(parent1, parent2 individual) []int {
	genes := make([]int, search.genes)
	for i := range genes {
		if search.random.IntN(2) == 0 {
			genes[i] = parent1.genes[i]
		} else {
			genes[i] = parent2.genes[i]
		}
	}
	return genes
}

func (search *geneticSearch) mutate(genes []int) {
	for i := range genes {
		if search.random.Float64() < search.options.MutationRate {
			genes[i] = search.random.IntN(search.totalSlots)
		}
	}

	// Move one endpoint of a random conflicting edge
	if search.random.Float64() >= repairRate {
		return
	}
	clashes := make([][2]int, 0)
	for _, edge := range search.edges {
		if genes[edge[0]] == genes[edge[1]] {
			clashes = append(clashes, edge)
		}
	}
	if len(clashes) == 0 {
		return
	}
	edge := clashes[search.random.IntN(len(clashes))]
	genes[edge[search.random.IntN(2)]] = search.random.IntN(search.totalSlots)
}

func (search *geneticSearch) evaluate(genes []int) individual {
	fitness := 0
	for _, edge := range search.edges {
		if genes[edge[0]] == genes[edge[1]] {
			fitness++
		}
	}
	return individual{genes: genes, fitness: fitness}
}

func (search *geneticSearch) sort(population []individual) {
	slices.SortStableFunc(population, func(individual1, individual2 individual) int {
		return individual1.fitness - individual2.fitness
	})
}
