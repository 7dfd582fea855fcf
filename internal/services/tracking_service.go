package services

import (
	"context"
	"errors"
	"time"

	"github.com/clearbrook/driplog/internal/measure"
	"github.com/clearbrook/driplog/internal/models"
	"github.com/google/uuid"
)

var (
	ErrGoalLoadFailed     = errors.New("load goal failed")
	ErrProgressLoadFailed = errors.New("load progress failed")
	ErrStoreCommit        = errors.New("store commit failed")
)

// TrackingStore is the persistence contract the tracking service
// needs. Transact stages every mutation issued through tx on a single
// transaction and commits them as one unit when the callback returns
// nil; any error discards the staged work.
type TrackingStore interface {
	FindGoalByDayRange(dayStart time.Time, dayEnd time.Time) (models.Goal, bool, error)
	CreateGoal(goal *models.Goal) error
	UpdateGoalQuantity(goalID uint, quantityOz float64) error
	CreateIntake(intake *models.Intake) error
	SetIntakeExternalID(intakeID uint, externalID uuid.UUID) error
	SumIntakeQuantities(goalID uint) (float64, error)
	Transact(fn func(tx TrackingStore) error) error
}

// HealthGateway is the permission-gated external mirror for intake
// samples. Writes are best-effort; the tracking service issues at most
// one per intake.
type HealthGateway interface {
	CanRequestPermission() bool
	IsAuthorized() bool
	RequestAuthorization(ctx context.Context) (bool, error)
	WriteSample(ctx context.Context, volume measure.Volume, at time.Time) (uuid.UUID, error)
}

// ProgressTotals is today's intake measured against today's goal.
// Progress may exceed 1.0; a zero-quantity goal yields progress 0.
type ProgressTotals struct {
	Progress            float64
	Goal                measure.Volume
	ProgressMeasurement measure.Volume
}

type TrackingService struct {
	store    TrackingStore
	gateway  HealthGateway
	location *time.Location
	now      func() time.Time
}

func NewTrackingService(store TrackingStore, gateway HealthGateway, location *time.Location) *TrackingService {
	return &TrackingService{
		store:    store,
		gateway:  gateway,
		location: location,
		now:      time.Now,
	}
}

// GoalForToday reports today's goal in the base unit, or false when no
// goal row exists yet for the current local day.
func (service *TrackingService) GoalForToday() (measure.Volume, bool, error) {
	dayStart, dayEnd := DayRange(service.now(), service.location)
	goal, found, err := service.store.FindGoalByDayRange(dayStart, dayEnd)
	if err != nil {
		return measure.Volume{}, false, ErrGoalLoadFailed
	}
	if !found {
		return measure.Volume{}, false, nil
	}
	return measure.FluidOuncesOf(goal.QuantityOz), true, nil
}

// SetGoalForToday overwrites today's goal quantity, creating the goal
// row first if this is the day's first reference. A commit failure is
// fatal to the operation and surfaced to the caller.
func (service *TrackingService) SetGoalForToday(goal measure.Volume) error {
	quantityOz := goal.FluidOunces()
	dayStart, dayEnd := DayRange(service.now(), service.location)

	err := service.store.Transact(func(tx TrackingStore) error {
		existing, found, err := tx.FindGoalByDayRange(dayStart, dayEnd)
		if err != nil {
			return err
		}
		if !found {
			return tx.CreateGoal(&models.Goal{Date: dayStart, QuantityOz: quantityOz})
		}
		return tx.UpdateGoalQuantity(existing.ID, quantityOz)
	})
	if err != nil {
		return ErrStoreCommit
	}
	return nil
}

// ProgressForToday aggregates today's intakes against today's goal, or
// reports false when no goal exists yet.
func (service *TrackingService) ProgressForToday() (ProgressTotals, bool, error) {
	dayStart, dayEnd := DayRange(service.now(), service.location)
	goal, found, err := service.store.FindGoalByDayRange(dayStart, dayEnd)
	if err != nil {
		return ProgressTotals{}, false, ErrProgressLoadFailed
	}
	if !found {
		return ProgressTotals{}, false, nil
	}

	total, err := service.store.SumIntakeQuantities(goal.ID)
	if err != nil {
		return ProgressTotals{}, false, ErrProgressLoadFailed
	}

	progress := 0.0
	if goal.QuantityOz > 0 {
		progress = total / goal.QuantityOz
	}
	return ProgressTotals{
		Progress:            progress,
		Goal:                measure.FluidOuncesOf(goal.QuantityOz),
		ProgressMeasurement: measure.FluidOuncesOf(total),
	}, true, nil
}

// RecordIntake logs one intake against today's goal and mirrors it
// best-effort into the health gateway. The local row is authoritative:
// a denied, failed, or skipped mirror still records the intake, and
// only a store commit failure reaches the caller. The goal reference
// acquired here is kept even if midnight passes before the commit.
func (service *TrackingService) RecordIntake(ctx context.Context, volume measure.Volume) (models.Intake, error) {
	quantityOz := volume.FluidOunces()
	dayStart, dayEnd := DayRange(service.now(), service.location)

	recorded := models.Intake{}
	err := service.store.Transact(func(tx TrackingStore) error {
		goal, found, err := tx.FindGoalByDayRange(dayStart, dayEnd)
		if err != nil {
			return err
		}
		if !found {
			// Placeholder quantity; the UI normally sets a real goal
			// first, but recording must not depend on it.
			goal = models.Goal{Date: dayStart}
			if err := tx.CreateGoal(&goal); err != nil {
				return err
			}
		}

		intake := models.Intake{GoalID: goal.ID, QuantityOz: quantityOz}
		if err := tx.CreateIntake(&intake); err != nil {
			return err
		}

		if externalID, mirrored := service.mirrorSample(ctx, volume); mirrored {
			if err := tx.SetIntakeExternalID(intake.ID, externalID); err != nil {
				return err
			}
			intake.ExternalSampleID = &externalID
		}

		recorded = intake
		return nil
	})
	if err != nil {
		return models.Intake{}, ErrStoreCommit
	}
	return recorded, nil
}

// RecordIntakeAsync runs RecordIntake on its own goroutine and
// completes through the caller-supplied callbacks. Callers must not
// assume same-goroutine completion.
func (service *TrackingService) RecordIntakeAsync(ctx context.Context, volume measure.Volume, onSuccess func(models.Intake), onError func(error)) {
	go func() {
		intake, err := service.RecordIntake(ctx, volume)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(intake)
		}
	}()
}

// mirrorSample resolves the sync decision in priority order:
// authorized gateways get the write immediately, an undetermined
// gateway gets one consent request first, and everything else (denial,
// unavailability, consent failure, write failure) falls back to
// local-only.
func (service *TrackingService) mirrorSample(ctx context.Context, volume measure.Volume) (uuid.UUID, bool) {
	gateway := service.gateway
	if gateway == nil {
		return uuid.UUID{}, false
	}

	switch {
	case gateway.IsAuthorized():
	case gateway.CanRequestPermission():
		granted, err := gateway.RequestAuthorization(ctx)
		if err != nil || !granted {
			return uuid.UUID{}, false
		}
	default:
		return uuid.UUID{}, false
	}

	externalID, err := gateway.WriteSample(ctx, volume, service.now())
	if err != nil {
		return uuid.UUID{}, false
	}
	return externalID, true
}
