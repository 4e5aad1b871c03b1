package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type activityService struct {
	uow      db.UnitOfWork
	recorder Recorder
	now      func() time.Time
	observer UseCaseObserver
}

func NewActivityService(uow db.UnitOfWork, recorder Recorder, observers ...UseCaseObserver) ActivityService {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &activityService{
		uow:      uow,
		recorder: recorder,
		now:      time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

// UpdateStatus reads the plan inside the transaction, applies the change
// and writes it back, so concurrent updates to one plan serialize.
func (s *activityService) UpdateStatus(ctx context.Context, planID, ownerID, activityID string, status domain.ActivityStatus, completedAt *time.Time) (res *domain.StatusResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan_id": planID, "activity_id": activityID, "status": string(status)}
	defer func() { observe(ctx, s.observer, "update-activity-status", startedAt, fields, err) }()

	if !status.Valid() {
		return nil, domain.NewValidationError("update activity status", "invalid status "+string(status))
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLitePlanRepo(tx)

		plan, err := txPlans.Get(ctx, planID, ownerID)
		if err != nil {
			return err
		}
		r, err := plan.UpdateActivityStatus(activityID, status, completedAt, s.now().UTC())
		if err != nil {
			return err
		}
		if err := txPlans.Save(ctx, plan); err != nil {
			return domain.NewPersistenceError("save plan", err)
		}
		res = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.ActivityUpdated(status)
	fields["progress_percentage"] = res.ProgressPercentage
	return res, nil
}
