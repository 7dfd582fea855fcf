package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/clearbrook/driplog/internal/measure"
	"github.com/clearbrook/driplog/internal/models"
	"github.com/google/uuid"
)

type trackingStoreStub struct {
	goals        map[uint]models.Goal
	intakes      map[uint]models.Intake
	nextGoalID   uint
	nextIntakeID uint

	findErr         error
	createGoalErr   error
	createIntakeErr error
	commitErr       error
}

func newTrackingStoreStub() *trackingStoreStub {
	return &trackingStoreStub{
		goals:        make(map[uint]models.Goal),
		intakes:      make(map[uint]models.Intake),
		nextGoalID:   1,
		nextIntakeID: 1,
	}
}

func (stub *trackingStoreStub) FindGoalByDayRange(dayStart time.Time, dayEnd time.Time) (models.Goal, bool, error) {
	if stub.findErr != nil {
		return models.Goal{}, false, stub.findErr
	}

	best := models.Goal{}
	found := false
	for _, goal := range stub.goals {
		if goal.Date.Before(dayStart) || !goal.Date.Before(dayEnd) {
			continue
		}
		if !found || goal.ID < best.ID {
			best = goal
			found = true
		}
	}
	return best, found, nil
}

func (stub *trackingStoreStub) CreateGoal(goal *models.Goal) error {
	if stub.createGoalErr != nil {
		return stub.createGoalErr
	}
	goal.ID = stub.nextGoalID
	stub.nextGoalID++
	stub.goals[goal.ID] = *goal
	return nil
}

func (stub *trackingStoreStub) UpdateGoalQuantity(goalID uint, quantityOz float64) error {
	goal, ok := stub.goals[goalID]
	if !ok {
		return errors.New("goal not found")
	}
	goal.QuantityOz = quantityOz
	stub.goals[goalID] = goal
	return nil
}

func (stub *trackingStoreStub) CreateIntake(intake *models.Intake) error {
	if stub.createIntakeErr != nil {
		return stub.createIntakeErr
	}
	intake.ID = stub.nextIntakeID
	stub.nextIntakeID++
	stub.intakes[intake.ID] = *intake
	return nil
}

func (stub *trackingStoreStub) SetIntakeExternalID(intakeID uint, externalID uuid.UUID) error {
	intake, ok := stub.intakes[intakeID]
	if !ok {
		return errors.New("intake not found")
	}
	intake.ExternalSampleID = &externalID
	stub.intakes[intakeID] = intake
	return nil
}

func (stub *trackingStoreStub) SumIntakeQuantities(goalID uint) (float64, error) {
	total := 0.0
	for _, intake := range stub.intakes {
		if intake.GoalID == goalID {
			total += intake.QuantityOz
		}
	}
	return total, nil
}

func (stub *trackingStoreStub) Transact(fn func(tx TrackingStore) error) error {
	goalsSnapshot := make(map[uint]models.Goal, len(stub.goals))
	for id, goal := range stub.goals {
		goalsSnapshot[id] = goal
	}
	intakesSnapshot := make(map[uint]models.Intake, len(stub.intakes))
	for id, intake := range stub.intakes {
		intakesSnapshot[id] = intake
	}
	nextGoalID, nextIntakeID := stub.nextGoalID, stub.nextIntakeID

	err := fn(stub)
	if err == nil {
		err = stub.commitErr
	}
	if err != nil {
		stub.goals, stub.intakes = goalsSnapshot, intakesSnapshot
		stub.nextGoalID, stub.nextIntakeID = nextGoalID, nextIntakeID
		return err
	}
	return nil
}

type healthGatewayStub struct {
	authorized     bool
	canRequest     bool
	grantOnRequest bool
	requestErr     error
	writeID        uuid.UUID
	writeErr       error

	requestCalls int
	writeCalls   int
}

func (stub *healthGatewayStub) CanRequestPermission() bool {
	return stub.canRequest
}

func (stub *healthGatewayStub) IsAuthorized() bool {
	return stub.authorized
}

func (stub *healthGatewayStub) RequestAuthorization(ctx context.Context) (bool, error) {
	stub.requestCalls++
	stub.canRequest = false
	if stub.requestErr != nil {
		return false, stub.requestErr
	}
	stub.authorized = stub.grantOnRequest
	return stub.grantOnRequest, nil
}

func (stub *healthGatewayStub) WriteSample(ctx context.Context, volume measure.Volume, at time.Time) (uuid.UUID, error) {
	stub.writeCalls++
	if stub.writeErr != nil {
		return uuid.UUID{}, stub.writeErr
	}
	return stub.writeID, nil
}

func newTestService(store *trackingStoreStub, gateway HealthGateway) *TrackingService {
	service := NewTrackingService(store, gateway, time.UTC)
	service.now = func() time.Time {
		return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	}
	return service
}

func TestSetGoalForTodayOverwritesWithoutDuplicating(t *testing.T) {
	store := newTrackingStoreStub()
	service := newTestService(store, &healthGatewayStub{})

	if err := service.SetGoalForToday(measure.FluidOuncesOf(64)); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if err := service.SetGoalForToday(measure.Volume{Value: 2, Unit: measure.Quarts}); err != nil {
		t.Fatalf("overwrite goal: %v", err)
	}

	if len(store.goals) != 1 {
		t.Fatalf("goal rows = %d, want 1", len(store.goals))
	}

	goal, found, err := service.GoalForToday()
	if err != nil || !found {
		t.Fatalf("goal lookup: found=%v err=%v", found, err)
	}
	if goal.Value != 64 || goal.Unit != measure.FluidOunces {
		t.Fatalf("goal = %v %s, want 64 fl_oz", goal.Value, goal.Unit)
	}
}

func TestGoalForTodayAbsent(t *testing.T) {
	service := newTestService(newTrackingStoreStub(), &healthGatewayStub{})

	_, found, err := service.GoalForToday()
	if err != nil {
		t.Fatalf("goal lookup: %v", err)
	}
	if found {
		t.Fatal("expected no goal for today")
	}
}

func TestProgressForTodayAggregatesIntakes(t *testing.T) {
	store := newTrackingStoreStub()
	service := newTestService(store, &healthGatewayStub{})

	if err := service.SetGoalForToday(measure.FluidOuncesOf(64)); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	for _, quantity := range []float64{16, 24} {
		if _, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(quantity)); err != nil {
			t.Fatalf("record %v oz: %v", quantity, err)
		}
	}

	totals, found, err := service.ProgressForToday()
	if err != nil || !found {
		t.Fatalf("progress lookup: found=%v err=%v", found, err)
	}
	if math.Abs(totals.Progress-0.625) > 1e-9 {
		t.Fatalf("progress = %v, want 0.625", totals.Progress)
	}
	if math.Abs(totals.ProgressMeasurement.Value-40) > 1e-9 {
		t.Fatalf("consumed = %v, want 40", totals.ProgressMeasurement.Value)
	}
	if math.Abs(totals.Goal.Value-64) > 1e-9 {
		t.Fatalf("goal = %v, want 64", totals.Goal.Value)
	}
}

func TestProgressForTodayAbsentWithoutGoal(t *testing.T) {
	service := newTestService(newTrackingStoreStub(), &healthGatewayStub{})

	_, found, err := service.ProgressForToday()
	if err != nil {
		t.Fatalf("progress lookup: %v", err)
	}
	if found {
		t.Fatal("expected no progress without a goal")
	}
}

func TestRecordIntakeWithoutGoalCreatesPlaceholder(t *testing.T) {
	store := newTrackingStoreStub()
	service := newTestService(store, &healthGatewayStub{})

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(8))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}

	goal, ok := store.goals[intake.GoalID]
	if !ok {
		t.Fatal("expected a goal row to be created")
	}
	if goal.QuantityOz != 0 {
		t.Fatalf("placeholder goal quantity = %v, want 0", goal.QuantityOz)
	}

	totals, found, err := service.ProgressForToday()
	if err != nil || !found {
		t.Fatalf("progress lookup: found=%v err=%v", found, err)
	}
	if totals.Progress != 0 {
		t.Fatalf("progress = %v, want 0 for zero-quantity goal", totals.Progress)
	}
	if totals.ProgressMeasurement.Value != 8 {
		t.Fatalf("consumed = %v, want 8", totals.ProgressMeasurement.Value)
	}
}

func TestRecordIntakeDeniedGatewaySavesLocally(t *testing.T) {
	store := newTrackingStoreStub()
	gateway := &healthGatewayStub{}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(12))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if intake.ExternalSampleID != nil {
		t.Fatal("expected no external sample ID")
	}
	if gateway.writeCalls != 0 {
		t.Fatalf("write calls = %d, want 0", gateway.writeCalls)
	}
}

func TestRecordIntakeAuthorizedMirrorsSample(t *testing.T) {
	store := newTrackingStoreStub()
	externalID := uuid.New()
	gateway := &healthGatewayStub{authorized: true, writeID: externalID}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(12))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if intake.ExternalSampleID == nil || *intake.ExternalSampleID != externalID {
		t.Fatalf("external sample ID = %v, want %v", intake.ExternalSampleID, externalID)
	}
	if gateway.writeCalls != 1 {
		t.Fatalf("write calls = %d, want 1", gateway.writeCalls)
	}

	stored := store.intakes[intake.ID]
	if stored.ExternalSampleID == nil || *stored.ExternalSampleID != externalID {
		t.Fatal("expected external sample ID staged on the stored intake")
	}
}

func TestRecordIntakeSwallowsWriteFailure(t *testing.T) {
	store := newTrackingStoreStub()
	gateway := &healthGatewayStub{authorized: true, writeErr: errors.New("vault down")}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(12))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if intake.ExternalSampleID != nil {
		t.Fatal("expected no external sample ID after failed write")
	}
	if len(store.intakes) != 1 {
		t.Fatalf("intake rows = %d, want 1", len(store.intakes))
	}
}

func TestRecordIntakeRequestsConsentWhenUndetermined(t *testing.T) {
	store := newTrackingStoreStub()
	externalID := uuid.New()
	gateway := &healthGatewayStub{canRequest: true, grantOnRequest: true, writeID: externalID}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(10))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if gateway.requestCalls != 1 {
		t.Fatalf("consent requests = %d, want 1", gateway.requestCalls)
	}
	if intake.ExternalSampleID == nil || *intake.ExternalSampleID != externalID {
		t.Fatal("expected sample mirrored after granted consent")
	}
}

func TestRecordIntakeConsentDeniedFallsBackToLocal(t *testing.T) {
	store := newTrackingStoreStub()
	gateway := &healthGatewayStub{canRequest: true, grantOnRequest: false}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(10))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if intake.ExternalSampleID != nil {
		t.Fatal("expected no external sample ID after denial")
	}
	if gateway.writeCalls != 0 {
		t.Fatalf("write calls = %d, want 0", gateway.writeCalls)
	}
}

func TestRecordIntakeConsentErrorFallsBackToLocal(t *testing.T) {
	store := newTrackingStoreStub()
	gateway := &healthGatewayStub{canRequest: true, requestErr: errors.New("dialog failed")}
	service := newTestService(store, gateway)

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(10))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	if intake.ExternalSampleID != nil {
		t.Fatal("expected no external sample ID after consent error")
	}
	if len(store.intakes) != 1 {
		t.Fatalf("intake rows = %d, want 1", len(store.intakes))
	}
}

func TestRecordIntakeCommitFailureSurfacedAndRolledBack(t *testing.T) {
	store := newTrackingStoreStub()
	store.commitErr = errors.New("disk full")
	service := newTestService(store, &healthGatewayStub{})

	_, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(8))
	if !errors.Is(err, ErrStoreCommit) {
		t.Fatalf("err = %v, want ErrStoreCommit", err)
	}
	if len(store.intakes) != 0 || len(store.goals) != 0 {
		t.Fatal("expected staged mutations to be discarded")
	}
}

func TestSetGoalCommitFailureSurfaced(t *testing.T) {
	store := newTrackingStoreStub()
	store.commitErr = errors.New("disk full")
	service := newTestService(store, &healthGatewayStub{})

	if err := service.SetGoalForToday(measure.FluidOuncesOf(64)); !errors.Is(err, ErrStoreCommit) {
		t.Fatalf("err = %v, want ErrStoreCommit", err)
	}
}

func TestRecordIntakeKeepsGoalAcrossMidnight(t *testing.T) {
	store := newTrackingStoreStub()
	service := NewTrackingService(store, &healthGatewayStub{}, time.UTC)

	current := time.Date(2026, time.March, 14, 23, 59, 0, 0, time.UTC)
	service.now = func() time.Time { return current }

	intake, err := service.RecordIntake(context.Background(), measure.FluidOuncesOf(8))
	if err != nil {
		t.Fatalf("record intake: %v", err)
	}
	recordedGoalID := intake.GoalID

	// Day rolls over; the recorded intake stays with yesterday's goal.
	current = current.Add(2 * time.Minute)

	if _, found, err := service.ProgressForToday(); err != nil || found {
		t.Fatalf("expected no progress for the new day, found=%v err=%v", found, err)
	}
	if store.intakes[intake.ID].GoalID != recordedGoalID {
		t.Fatal("intake was re-bucketed to a different goal")
	}
}

func TestRecordIntakeAsyncCompletesViaCallbacks(t *testing.T) {
	store := newTrackingStoreStub()
	service := newTestService(store, &healthGatewayStub{})

	done := make(chan models.Intake, 1)
	service.RecordIntakeAsync(context.Background(), measure.FluidOuncesOf(8), func(intake models.Intake) {
		done <- intake
	}, func(err error) {
		t.Errorf("unexpected error: %v", err)
		close(done)
	})

	select {
	case intake := <-done:
		if intake.QuantityOz != 8 {
			t.Fatalf("quantity = %v, want 8", intake.QuantityOz)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	store.commitErr = errors.New("disk full")
	failed := make(chan error, 1)
	service.RecordIntakeAsync(context.Background(), measure.FluidOuncesOf(8), func(models.Intake) {
		t.Error("unexpected success")
		failed <- nil
	}, func(err error) {
		failed <- err
	})

	select {
	case err := <-failed:
		if !errors.Is(err, ErrStoreCommit) {
			t.Fatalf("err = %v, want ErrStoreCommit", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error callback never fired")
	}
}
