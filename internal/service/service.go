package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/limaJavier/examtabling/internal/export"
	"github.com/limaJavier/examtabling/internal/store"
	"github.com/limaJavier/examtabling/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repository is the persistence the service reads snapshots from and archives runs into
type Repository interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	ReplaceCourses(ctx context.Context, courses []model.Course) error
	ListRooms(ctx context.Context) ([]model.Room, error)
	ReplaceRooms(ctx context.Context, rooms []model.Room) error
	SetRoomAvailability(ctx context.Context, id string, available bool) error
	SaveSchedule(ctx context.Context, courses []model.Course, rooms []model.Room, schedule model.Schedule) (store.ArchivedSchedule, error)
	GetSchedule(ctx context.Context, id string) (store.ArchivedSchedule, error)
}

type GenerateRequest struct {
	Algorithm   string               `json:"algorithm"`
	Constraints model.RawConstraints `json:"constraints"`
}

type Comparison struct {
	Algorithm       model.Algorithm `json:"algorithm"`
	Conflicts       int             `json:"conflicts"`
	Unroomed        int             `json:"unroomed"`
	SpacingWarnings int             `json:"spacingWarnings"`
	Elapsed         time.Duration   `json:"elapsed"`
}

type ExportedFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

type ScheduleService interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	ReplaceCourses(ctx context.Context, courses []model.Course) error
	ListRooms(ctx context.Context) ([]model.Room, error)
	ReplaceRooms(ctx context.Context, rooms []model.Room) error
	SetRoomAvailability(ctx context.Context, id string, available bool) error

	// Generate runs the engine over the stored courses and rooms and archives the result
	Generate(ctx context.Context, request GenerateRequest) (store.ArchivedSchedule, error)
	Compare(ctx context.Context, constraints model.RawConstraints, algorithms []model.Algorithm) ([]Comparison, error)
	GetSchedule(ctx context.Context, id string) (store.ArchivedSchedule, error)
	Export(ctx context.Context, id, format, department string) (ExportedFile, error)
}

type scheduleService struct {
	repository Repository
	scheduler  *model.Scheduler
	algorithm  model.Algorithm // Used when a request names none
	logger     *zap.Logger
}

func NewScheduleService(repository Repository, scheduler *model.Scheduler, algorithm model.Algorithm, logger *zap.Logger) ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scheduleService{
		repository: repository,
		scheduler:  scheduler,
		algorithm:  model.ParseAlgorithm(string(algorithm)),
		logger:     logger,
	}
}

//** Catalog

func (service *scheduleService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return service.repository.ListCourses(ctx)
}

func (service *scheduleService) ReplaceCourses(ctx context.Context, courses []model.Course) error {
	if err := model.ValidateCourses(courses); err != nil {
		return err
	}
	return service.repository.ReplaceCourses(ctx, courses)
}

func (service *scheduleService) ListRooms(ctx context.Context) ([]model.Room, error) {
	return service.repository.ListRooms(ctx)
}

func (service *scheduleService) ReplaceRooms(ctx context.Context, rooms []model.Room) error {
	if err := model.ValidateRooms(rooms); err != nil {
		return err
	}
	return service.repository.ReplaceRooms(ctx, rooms)
}

func (service *scheduleService) SetRoomAvailability(ctx context.Context, id string, available bool) error {
	return service.repository.SetRoomAvailability(ctx, id, available)
}

//** Scheduling

func (service *scheduleService) snapshot(ctx context.Context) ([]model.Course, []model.Room, error) {
	courses, err := service.repository.ListCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read courses: %w", err)
	}
	rooms, err := service.repository.ListRooms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read rooms: %w", err)
	}
	return courses, rooms, nil
}

func (service *scheduleService) resolveAlgorithm(names ...string) model.Algorithm {
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			return model.ParseAlgorithm(name)
		}
	}
	return service.algorithm
}

func (service *scheduleService) Generate(ctx context.Context, request GenerateRequest) (store.ArchivedSchedule, error) {
	constraints, err := model.ParseConstraints(request.Constraints)
	if err != nil {
		return store.ArchivedSchedule{}, err
	}
	courses, rooms, err := service.snapshot(ctx)
	if err != nil {
		return store.ArchivedSchedule{}, err
	}

	algorithm := service.resolveAlgorithm(request.Algorithm, request.Constraints.Algorithm)
	schedule, err := service.scheduler.GenerateSchedule(ctx, courses, rooms, constraints, algorithm)
	if err != nil {
		return store.ArchivedSchedule{}, err
	}

	archived, err := service.repository.SaveSchedule(ctx, courses, rooms, schedule)
	if err != nil {
		return store.ArchivedSchedule{}, fmt.Errorf("cannot archive schedule: %w", err)
	}
	service.logger.Info("schedule archived",
		zap.String("id", archived.Id),
		zap.String("algorithm", string(schedule.Algorithm)),
		zap.Int("conflicts", len(schedule.Conflicts)),
	)
	return archived, nil
}

// Compare runs every algorithm concurrently over the same snapshot without archiving anything
func (service *scheduleService) Compare(ctx context.Context, rawConstraints model.RawConstraints, algorithms []model.Algorithm) ([]Comparison, error) {
	constraints, err := model.ParseConstraints(rawConstraints)
	if err != nil {
		return nil, err
	}
	courses, rooms, err := service.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(algorithms) == 0 {
		algorithms = []model.Algorithm{model.GraphColoring, model.ConstraintSatisfaction, model.Genetic}
	}

	comparisons := make([]Comparison, len(algorithms))
	group, ctx := errgroup.WithContext(ctx)
	for i, algorithm := range algorithms {
		group.Go(func() error {
			started := time.Now()
			schedule, err := service.scheduler.GenerateSchedule(ctx, courses, rooms, constraints, algorithm)
			if err != nil {
				return err
			}
			comparisons[i] = Comparison{
				Algorithm:       schedule.Algorithm,
				Conflicts:       len(schedule.Conflicts),
				Unroomed:        schedule.Unroomed(),
				SpacingWarnings: len(schedule.SpacingWarnings),
				Elapsed:         time.Since(started),
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return comparisons, nil
}

func (service *scheduleService) GetSchedule(ctx context.Context, id string) (store.ArchivedSchedule, error) {
	return service.repository.GetSchedule(ctx, id)
}

//** Export

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (service *scheduleService) Export(ctx context.Context, id, format, department string) (ExportedFile, error) {
	archived, err := service.repository.GetSchedule(ctx, id)
	if err != nil {
		return ExportedFile{}, err
	}
	rows := export.FilterDepartment(export.Rows(archived.Courses, archived.Schedule), department)

	var buffer bytes.Buffer
	switch strings.ToLower(format) {
	case "", "csv":
		if err := export.WriteCSV(&buffer, rows); err != nil {
			return ExportedFile{}, err
		}
		return ExportedFile{Content: buffer.Bytes(), ContentType: csvContentType, Filename: fmt.Sprintf("schedule_%v.csv", id)}, nil
	case "xlsx":
		if err := export.WriteXLSX(&buffer, rows, archived.Schedule.Conflicts); err != nil {
			return ExportedFile{}, err
		}
		return ExportedFile{Content: buffer.Bytes(), ContentType: xlsxContentType, Filename: fmt.Sprintf("schedule_%v.xlsx", id)}, nil
	default:
		return ExportedFile{}, model.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q, expected csv or xlsx", format)}
	}
}
