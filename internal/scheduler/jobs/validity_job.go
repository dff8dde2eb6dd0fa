package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cermakludek/legislative-enums-sub000/internal/event"
	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
)

const validitySweepWindow = 24 * time.Hour

// ValidityJob finds classification nodes whose validity ended since the last
// sweep and announces them on the event bus. Expired nodes stay in the
// codelist; consumers decide what an expired entry means for them.
type ValidityJob struct {
	classificationRepo repository.ClassificationRepository
	bus                *event.Bus
	logger             *zap.Logger
}

func NewValidityJob(
	classificationRepo repository.ClassificationRepository,
	bus *event.Bus,
	logger *zap.Logger,
) *ValidityJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ValidityJob{
		classificationRepo: classificationRepo,
		bus:                bus,
		logger:             logger,
	}
}

func (j *ValidityJob) SweepExpired() {
	if j == nil || j.classificationRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	expired, err := j.classificationRepo.FindExpiredBetween(ctx, now.Add(-validitySweepWindow), now)
	if err != nil {
		j.logger.Error("validity sweep query failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, node := range expired {
		j.announceExpired(node)
	}

	j.logger.Info("validity sweep finished",
		zap.Int("expired", len(expired)),
	)
}

func (j *ValidityJob) announceExpired(node *model.ClassificationNode) {
	if node == nil || node.ValidTo == nil {
		return
	}

	j.logger.Warn("classification node validity ended",
		zap.Int64("node_id", node.ID),
		zap.String("code", node.Code),
		zap.Time("valid_to", *node.ValidTo),
	)

	if j.bus != nil {
		j.bus.Publish(event.EventClassificationExpired, event.ExpiredPayload{
			EntityID:   node.ID,
			EntityCode: node.Code,
			ValidTo:    *node.ValidTo,
		})
	}
}
