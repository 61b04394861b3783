package store

import (
	"time"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/uptrace/bun"
)

type courseRecord struct {
	bun.BaseModel `bun:"table:courses"`
	Id            string `bun:"id,pk"`
	Position      int    `bun:"position,notnull"`
	Name          string `bun:"name"`
	Department    string `bun:"department"`
	Year          uint64 `bun:"year"`
	Students      uint64 `bun:"students"`
	Difficulty    string `bun:"difficulty"`
}

type roomRecord struct {
	bun.BaseModel `bun:"table:rooms"`
	Id            string `bun:"id,pk"`
	Position      int    `bun:"position,notnull"`
	Name          string `bun:"name"`
	Capacity      uint64 `bun:"capacity"`
	HasProjector  bool   `bun:"has_projector"`
	HasComputers  bool   `bun:"has_computers"`
	Available     bool   `bun:"available"`
}

// scheduleRecord archives one run together with the snapshot it was computed from
type scheduleRecord struct {
	bun.BaseModel `bun:"table:schedules"`
	Id            string    `bun:"id,pk"`
	Algorithm     string    `bun:"algorithm"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	Payload       string    `bun:"payload"` // JSON encoded archivePayload
}

type archivePayload struct {
	Courses  []model.Course `json:"courses"`
	Rooms    []model.Room   `json:"rooms"`
	Schedule model.Schedule `json:"schedule"`
}

func courseToRecord(course model.Course, position int) courseRecord {
	return courseRecord{
		Id:         course.Id,
		Position:   position,
		Name:       course.Name,
		Department: course.Department,
		Year:       course.Year,
		Students:   course.Students,
		Difficulty: course.Difficulty.String(),
	}
}

func recordToCourse(record courseRecord) (model.Course, error) {
	difficulty, err := model.ParseDifficulty(record.Difficulty)
	if err != nil {
		return model.Course{}, err
	}
	return model.Course{
		Id:         record.Id,
		Name:       record.Name,
		Department: record.Department,
		Year:       record.Year,
		Students:   record.Students,
		Difficulty: difficulty,
	}, nil
}

func roomToRecord(room model.Room, position int) roomRecord {
	return roomRecord{
		Id:           room.Id,
		Position:     position,
		Name:         room.Name,
		Capacity:     room.Capacity,
		HasProjector: room.HasProjector,
		HasComputers: room.HasComputers,
		Available:    room.Available,
	}
}

func recordToRoom(record roomRecord) model.Room {
	return model.Room{
		Id:           record.Id,
		Name:         record.Name,
		Capacity:     record.Capacity,
		HasProjector: record.HasProjector,
		HasComputers: record.HasComputers,
		Available:    record.Available,
	}
}
