package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repositories bundles the per-entity repositories over one gorm connection.
type Repositories struct {
	Meetings     MeetingRepository
	Participants ParticipantRepository
	VideoServer  VideoServerRepository
	Waiting      WaitingRepository
	Recordings   RecordingRepository
}

type repo struct {
	db *gorm.DB
}

func NewRepositories(db *sql.DB) *Repositories {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	r := &repo{db: gormDB}
	return &Repositories{
		Meetings:     r,
		Participants: r,
		VideoServer:  r,
		Waiting:      r,
		Recordings:   r,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

// IsDuplicate reports whether err is a unique-constraint violation. The
// room orchestrator relies on this to detect a concurrent creator.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
