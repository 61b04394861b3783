package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const resultsFile = "benchmark_results.csv"

type ResultType int

const (
	conflictFree ResultType = iota
	withConflicts
	invalid
)

var resultTypes = map[ResultType]string{
	conflictFree:  "conflict-free",
	withConflicts: "with-conflicts",
	invalid:       "invalid",
}

// InstanceMetadata describes a synthetic instance. Its name has the form
// "departments=4,years=3,courses=60,days=5,slots=2".
type InstanceMetadata struct {
	Name        string
	Departments int
	Years       int
	Courses     int
	Days        int
	DailySlots  int
}

type instance struct {
	metadata    InstanceMetadata
	courses     []model.Course
	rooms       []model.Room
	constraints model.Constraints
}

type BenchmarkResult struct {
	Algorithm       string `csv:"Algorithm"`
	Instance        string `csv:"Instance"`
	Courses         int    `csv:"Courses"`
	Edges           int    `csv:"Edges"`
	Slots           int    `csv:"Slots"`
	Duration        int64  `csv:"Duration(ms)"`
	Conflicts       int    `csv:"Conflicts"`
	Unroomed        int    `csv:"Unroomed"`
	SpacingWarnings int    `csv:"SpacingWarnings"`
	Result          string `csv:"Result"`
}

func main() {
	instancesFlag := flag.String("instances", strings.Join(defaultInstances, ";"), "semicolon separated instance names")
	seedFlag := flag.Uint64("seed", 1, "instance generator seed")
	timeoutFlag := flag.Duration("timeout", 5*time.Second, "search timeout per run")
	flag.Parse()

	instances := lo.Map(strings.Split(*instancesFlag, ";"), func(name string, _ int) instance {
		metadata, err := parseInstanceName(name)
		if err != nil {
			log.Fatalf("cannot parse instance: %v", err)
		}
		return generateInstance(metadata, *seedFlag)
	})

	options := model.DefaultSearchOptions()
	options.Timeout = *timeoutFlag
	results, err := run(context.Background(), instances, getAlgorithms(), options)
	if err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}

	toCsv(results)
}

var defaultInstances = []string{
	"departments=2,years=2,courses=20,days=5,slots=2",
	"departments=4,years=3,courses=60,days=5,slots=2",
	"departments=6,years=4,courses=150,days=10,slots=3",
	"departments=1,years=1,courses=12,days=2,slots=4",
}

func getAlgorithms() []model.Algorithm {
	return []model.Algorithm{model.GraphColoring, model.ConstraintSatisfaction, model.Genetic}
}

// run benchmarks every algorithm on every instance. Instances are measured one at a time while
// their algorithms run concurrently.
func run(ctx context.Context, instances []instance, algorithms []model.Algorithm, options model.SearchOptions) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(instances)*len(algorithms))
	scheduler := model.NewScheduler(nil, options, nil)

	for _, instance := range instances {
		fmt.Printf("Benchmarking instance \"%v\"\n", instance.metadata.Name)
		graph := model.BuildConflictGraph(instance.courses)
		slots := len(model.GenerateTimeSlots(instance.constraints))

		instanceResults := make([]BenchmarkResult, len(algorithms))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, algorithm := range algorithms {
			group.Go(func() error {
				started := time.Now()
				schedule, err := scheduler.GenerateSchedule(groupCtx, instance.courses, instance.rooms, instance.constraints, algorithm)
				if err != nil {
					return fmt.Errorf("%v on \"%v\": %w", algorithm, instance.metadata.Name, err)
				}
				duration := time.Since(started).Milliseconds()

				result := conflictFree
				if err := model.Verify(schedule, instance.courses, instance.rooms, graph); err != nil {
					result = invalid
				} else if len(schedule.Conflicts) > 0 {
					result = withConflicts
				}

				instanceResults[i] = BenchmarkResult{
					Algorithm:       string(algorithm),
					Instance:        instance.metadata.Name,
					Courses:         len(instance.courses),
					Edges:           graph.Edges(),
					Slots:           slots,
					Duration:        duration,
					Conflicts:       len(schedule.Conflicts),
					Unroomed:        schedule.Unroomed(),
					SpacingWarnings: len(schedule.SpacingWarnings),
					Result:          resultTypes[result],
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		results = append(results, instanceResults...)
	}

	return results, nil
}

func parseInstanceName(name string) (InstanceMetadata, error) {
	metadata := InstanceMetadata{Name: name}
	fields := map[string]*int{
		"departments": &metadata.Departments,
		"years":       &metadata.Years,
		"courses":     &metadata.Courses,
		"days":        &metadata.Days,
		"slots":       &metadata.DailySlots,
	}

	for _, pair := range strings.Split(name, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return InstanceMetadata{}, fmt.Errorf("malformed pair %q in %q", pair, name)
		}
		field, ok := fields[key]
		if !ok {
			return InstanceMetadata{}, fmt.Errorf("unknown key %q in %q", key, name)
		}
		number, err := strconv.Atoi(value)
		if err != nil || number < 1 {
			return InstanceMetadata{}, fmt.Errorf("%v must be a positive integer in %q", key, name)
		}
		*field = number
		delete(fields, key)
	}
	if len(fields) > 0 {
		return InstanceMetadata{}, fmt.Errorf("missing keys %v in %q", lo.Keys(fields), name)
	}
	return metadata, nil
}

// generateInstance spreads courses round-robin over the department-year groups and draws
// enrollments and difficulties from a seeded source. Equal seeds yield equal instances.
func generateInstance(metadata InstanceMetadata, seed uint64) instance {
	random := rand.New(rand.NewPCG(seed, uint64(metadata.Courses)))
	difficulties := []model.Difficulty{model.Easy, model.Medium, model.Hard}

	courses := lo.Times(metadata.Courses, func(i int) model.Course {
		group := i % (metadata.Departments * metadata.Years)
		department := fmt.Sprintf("D%d", group/metadata.Years+1)
		year := uint64(group%metadata.Years + 1)
		return model.Course{
			Id:         fmt.Sprintf("%v-%d-%03d", department, year, i+1),
			Name:       fmt.Sprintf("Course %d", i+1),
			Department: department,
			Year:       year,
			Students:   uint64(10 + random.IntN(190)),
			Difficulty: difficulties[random.IntN(len(difficulties))],
		}
	})

	rooms := lo.Times(max(1, metadata.Courses/metadata.Days), func(i int) model.Room {
		return model.Room{
			Id:        fmt.Sprintf("R%03d", i+1),
			Name:      fmt.Sprintf("Room %d", i+1),
			Capacity:  uint64(30 + random.IntN(170)),
			Available: random.IntN(10) > 0,
		}
	})

	// Weekdays only, starting on a Monday
	start := time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC)
	end := start
	for weekdays := 1; weekdays < metadata.Days; {
		end = end.AddDate(0, 0, 1)
		if end.Weekday() != time.Saturday && end.Weekday() != time.Sunday {
			weekdays++
		}
	}

	return instance{
		metadata: metadata,
		courses:  courses,
		rooms:    rooms,
		constraints: model.Constraints{
			StartDate:    start,
			EndDate:      end,
			DailySlots:   metadata.DailySlots,
			SlotDuration: 3,
			SpacingDays:  1,
			DayStartHour: model.DefaultDayStartHour,
			BreakHours:   model.DefaultBreakHours,
		},
	}
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create(resultsFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		log.Panicf("cannot write CSV records: %v", err)
	}
}
