package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// ArchivedSchedule is a stored run along with the courses and rooms it was computed from
type ArchivedSchedule struct {
	Id        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Courses   []model.Course `json:"courses"`
	Rooms     []model.Room   `json:"rooms"`
	Schedule  model.Schedule `json:"schedule"`
}

// Store keeps the course and room repositories and the schedule archive in SQLite
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Open connects to the SQLite database at dsn (":memory:" is accepted) and creates missing tables
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// SQLite allows a single writer; an in-memory database also lives in a single connection
	sqlDB.SetMaxOpenConns(1)

	store := &Store{
		db:  bun.NewDB(sqlDB, sqlitedialect.New()),
		now: time.Now,
	}
	if err := store.migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func (store *Store) migrate(ctx context.Context) error {
	models := []any{(*courseRecord)(nil), (*roomRecord)(nil), (*scheduleRecord)(nil)}
	for _, record := range models {
		if _, err := store.db.NewCreateTable().Model(record).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("cannot create table: %w", err)
		}
	}
	return nil
}

func (store *Store) Close() error {
	return store.db.Close()
}

func (store *Store) Ping(ctx context.Context) error {
	return store.db.PingContext(ctx)
}

//** Courses

// ReplaceCourses swaps the whole course list in one transaction, keeping the given order
func (store *Store) ReplaceCourses(ctx context.Context, courses []model.Course) error {
	records := lo.Map(courses, func(course model.Course, i int) courseRecord { return courseToRecord(course, i) })
	return store.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*courseRecord)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("cannot delete courses: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
			return fmt.Errorf("cannot insert courses: %w", err)
		}
		return nil
	})
}

func (store *Store) ListCourses(ctx context.Context) ([]model.Course, error) {
	var records []courseRecord
	if err := store.db.NewSelect().Model(&records).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("cannot list courses: %w", err)
	}

	courses := make([]model.Course, 0, len(records))
	for _, record := range records {
		course, err := recordToCourse(record)
		if err != nil {
			return nil, fmt.Errorf("corrupted course %q: %w", record.Id, err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

//** Rooms

func (store *Store) ReplaceRooms(ctx context.Context, rooms []model.Room) error {
	records := lo.Map(rooms, func(room model.Room, i int) roomRecord { return roomToRecord(room, i) })
	return store.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*roomRecord)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("cannot delete rooms: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
			return fmt.Errorf("cannot insert rooms: %w", err)
		}
		return nil
	})
}

func (store *Store) ListRooms(ctx context.Context) ([]model.Room, error) {
	var records []roomRecord
	if err := store.db.NewSelect().Model(&records).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("cannot list rooms: %w", err)
	}
	return lo.Map(records, func(record roomRecord, _ int) model.Room { return recordToRoom(record) }), nil
}

// SetRoomAvailability toggles a room between runs
func (store *Store) SetRoomAvailability(ctx context.Context, id string, available bool) error {
	result, err := store.db.NewUpdate().
		Model((*roomRecord)(nil)).
		Set("available = ?", available).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cannot update room %q: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("room %q: %w", id, ErrNotFound)
	}
	return nil
}

//** Schedules

// SaveSchedule archives a run under a fresh UUID
func (store *Store) SaveSchedule(ctx context.Context, courses []model.Course, rooms []model.Room, schedule model.Schedule) (ArchivedSchedule, error) {
	archived := ArchivedSchedule{
		Id:        uuid.NewString(),
		CreatedAt: store.now().UTC(),
		Courses:   courses,
		Rooms:     rooms,
		Schedule:  schedule,
	}

	payload, err := json.Marshal(archivePayload{Courses: courses, Rooms: rooms, Schedule: schedule})
	if err != nil {
		return ArchivedSchedule{}, fmt.Errorf("cannot encode schedule: %w", err)
	}
	record := scheduleRecord{
		Id:        archived.Id,
		Algorithm: string(schedule.Algorithm),
		CreatedAt: archived.CreatedAt,
		Payload:   string(payload),
	}
	if _, err := store.db.NewInsert().Model(&record).Exec(ctx); err != nil {
		return ArchivedSchedule{}, fmt.Errorf("cannot insert schedule: %w", err)
	}
	return archived, nil
}

func (store *Store) GetSchedule(ctx context.Context, id string) (ArchivedSchedule, error) {
	var record scheduleRecord
	err := store.db.NewSelect().Model(&record).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ArchivedSchedule{}, fmt.Errorf("schedule %q: %w", id, ErrNotFound)
	} else if err != nil {
		return ArchivedSchedule{}, fmt.Errorf("cannot get schedule %q: %w", id, err)
	}

	var payload archivePayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return ArchivedSchedule{}, fmt.Errorf("corrupted schedule %q: %w", id, err)
	}
	return ArchivedSchedule{
		Id:        record.Id,
		CreatedAt: record.CreatedAt,
		Courses:   payload.Courses,
		Rooms:     payload.Rooms,
		Schedule:  payload.Schedule,
	}, nil
}
