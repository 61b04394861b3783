package model

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs one scheduling pass per call over an immutable snapshot of its inputs. It keeps no
// state between calls, so a single Scheduler may serve concurrent runs.
type Scheduler struct {
	allocator RoomAllocator
	options   SearchOptions
	logger    *zap.Logger
}

func NewScheduler(allocator RoomAllocator, options SearchOptions, logger *zap.Logger) *Scheduler {
	if allocator == nil {
		allocator = NewFirstFitAllocator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		allocator: allocator,
		options:   options.withDefaults(),
		logger:    logger,
	}
}

// GenerateSchedule validates the inputs, then colors the conflict graph with the selected algorithm
// and allocates rooms. Reaching the timeout or a cancellation of ctx is not an error: the best
// complete assignment found so far is returned.
func (scheduler *Scheduler) GenerateSchedule(
	ctx context.Context,
	courses []Course,
	rooms []Room,
	constraints Constraints,
	algorithm Algorithm,
) (Schedule, error) {
	//** Validation
	if err := constraints.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := ValidateCourses(courses); err != nil {
		return Schedule{}, err
	}
	if err := ValidateRooms(rooms); err != nil {
		return Schedule{}, err
	}
	algorithm = ParseAlgorithm(string(algorithm))

	ctx, cancel := context.WithTimeout(ctx, scheduler.options.Timeout)
	defer cancel()
	started := time.Now()

	//** Model
	slots := GenerateTimeSlots(constraints)
	graph := BuildConflictGraph(courses)
	scheduler.logger.Debug("scheduling model built",
		zap.Int("slots", len(slots)),
		zap.Int("edges", graph.Edges()),
		zap.String("algorithm", string(algorithm)),
	)

	//** Slots
	timetabler := NewTimetabler(algorithm, scheduler.options)
	assignment, unresolved := timetabler.Build(ctx, courses, graph, slots)

	//** Rooms
	schedule, err := assemble(courses, assignment, unresolved, slots, rooms, scheduler.allocator)
	if err != nil {
		return Schedule{}, err
	}
	schedule.Algorithm = algorithm
	schedule.SpacingWarnings = spacingWarnings(
		courses,
		graph,
		assignment,
		slots,
		newStandardPredicateEvaluator(constraints.SpacingDays),
		constraints.SpacingDays,
	)

	scheduler.logger.Info("schedule generated",
		zap.String("algorithm", string(algorithm)),
		zap.Int("courses", len(courses)),
		zap.Int("conflicts", len(schedule.Conflicts)),
		zap.Int("unroomed", schedule.Unroomed()),
		zap.Int("spacingWarnings", len(schedule.SpacingWarnings)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return schedule, nil
}

// Generate runs a decoded input document
func (scheduler *Scheduler) Generate(ctx context.Context, input ModelInput) (Schedule, error) {
	return scheduler.GenerateSchedule(ctx, input.Courses, input.Rooms, input.Constraints, input.Algorithm)
}

// GenerateSchedule runs with first-fit rooms, default search options and no logging
func GenerateSchedule(courses []Course, rooms []Room, constraints Constraints, algorithm Algorithm) (Schedule, error) {
	return NewScheduler(nil, DefaultSearchOptions(), nil).GenerateSchedule(context.Background(), courses, rooms, constraints, algorithm)
}
