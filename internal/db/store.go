package db

import (
	"time"

	"github.com/clearbrook/driplog/internal/models"
	"github.com/clearbrook/driplog/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the durable home of goals and intakes. Mutations issued
// through a Transact callback are staged on one transaction and
// flushed atomically when the callback returns nil; any error rolls
// the staged work back, leaving prior durable state untouched.
type Store struct {
	database *gorm.DB
}

func NewStore(database *gorm.DB) *Store {
	return &Store{database: database}
}

// FindGoalByDayRange returns the goal whose date falls in
// [dayStart, dayEnd). Ordering makes the result deterministic even if
// duplicates ever slip in: the earliest row wins.
func (store *Store) FindGoalByDayRange(dayStart time.Time, dayEnd time.Time) (models.Goal, bool, error) {
	goal := models.Goal{}
	result := store.database.
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Order("date ASC, id ASC").
		Limit(1).
		Find(&goal)
	if result.Error != nil {
		return models.Goal{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Goal{}, false, nil
	}
	return goal, true, nil
}

// CreateGoal inserts without checking day uniqueness; callers confirm
// absence first via FindGoalByDayRange.
func (store *Store) CreateGoal(goal *models.Goal) error {
	return store.database.Create(goal).Error
}

func (store *Store) UpdateGoalQuantity(goalID uint, quantityOz float64) error {
	return store.database.Model(&models.Goal{}).
		Where("id = ?", goalID).
		Update("quantity_oz", quantityOz).Error
}

func (store *Store) CreateIntake(intake *models.Intake) error {
	return store.database.Create(intake).Error
}

func (store *Store) SetIntakeExternalID(intakeID uint, externalID uuid.UUID) error {
	return store.database.Model(&models.Intake{}).
		Where("id = ?", intakeID).
		Update("external_sample_id", externalID).Error
}

func (store *Store) SumIntakeQuantities(goalID uint) (float64, error) {
	var total float64
	err := store.database.Model(&models.Intake{}).
		Where("goal_id = ?", goalID).
		Select("COALESCE(SUM(quantity_oz), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (store *Store) Transact(fn func(tx services.TrackingStore) error) error {
	return store.database.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
