package task_created

import (
	"context"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/students"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// Initializer materializes a student's missing schedules for a domain.
type Initializer interface {
	InitializeSchedules(ctx context.Context, studentID uuid.UUID, domain string) (int, error)
}

type Pipeline struct {
	log         *logger.Logger
	students    students.Directory
	schedules   Initializer
	concurrency int
}

func New(baseLog *logger.Logger, dir students.Directory, schedules Initializer, concurrency int) *Pipeline {
	if concurrency < 1 {
		concurrency = 8
	}
	return &Pipeline{
		log:         baseLog.With("job", domainagg.JobTypeTaskCreated),
		students:    dir,
		schedules:   schedules,
		concurrency: concurrency,
	}
}

func (p *Pipeline) Type() string { return domainagg.JobTypeTaskCreated }
