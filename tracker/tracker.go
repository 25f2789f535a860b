package tracker

import (
	"context"
	"errors"
	"log"
	"time"

	"food-delivery-engine/models"

	"gorm.io/gorm"
)

var (
	ErrRiderNotFound = errors.New("rider not found")
	ErrNotApproved   = errors.New("rider is not approved")
)

// Events receives a notification for every stored sample.
type Events interface {
	RiderLocation(sample *models.RiderLocation)
}

// Tracker ingests rider position samples: each one is appended to the
// history table and then copied onto the rider's profile projection.
// The projection write is last-write-wins on purpose; position data is
// inherently stale and eventually consistent.
type Tracker struct {
	db     *gorm.DB
	events Events
}

func New(db *gorm.DB, events Events) *Tracker {
	return &Tracker{db: db, events: events}
}

type Sample struct {
	RiderID      uint     `json:"rider_id"`
	OrderID      *uint    `json:"order_id"`
	Lat          float64  `json:"lat" binding:"required"`
	Lng          float64  `json:"lng" binding:"required"`
	Accuracy     *float64 `json:"accuracy"`
	Heading      *float64 `json:"heading"`
	Speed        *float64 `json:"speed"`
	BatteryLevel *int     `json:"battery_level"`
}

// Record appends the sample and overwrites the profile projection.
func (t *Tracker) Record(ctx context.Context, s Sample) (*models.RiderLocation, error) {
	profile, err := t.profile(ctx, s.RiderID)
	if err != nil {
		return nil, err
	}

	sample := models.RiderLocation{
		RiderID:      s.RiderID,
		OrderID:      s.OrderID,
		Lat:          s.Lat,
		Lng:          s.Lng,
		Accuracy:     s.Accuracy,
		Heading:      s.Heading,
		Speed:        s.Speed,
		BatteryLevel: s.BatteryLevel,
		IsOnline:     profile.IsOnline,
	}
	if err := t.db.WithContext(ctx).Create(&sample).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	if err := t.db.WithContext(ctx).Model(&models.RiderProfile{}).
		Where("user_id = ?", s.RiderID).
		Updates(map[string]interface{}{
			"current_lat":      s.Lat,
			"current_lng":      s.Lng,
			"last_location_at": &now,
		}).Error; err != nil {
		// Last-write-wins: the sample is stored, the projection catches up
		// on the next one. Leave a trace so a stale Latest is explainable.
		log.Printf("tracker: projection update for rider %d failed: %v", s.RiderID, err)
	}

	if t.events != nil {
		t.events.RiderLocation(&sample)
	}
	return &sample, nil
}

// SetOnline flips the rider's availability flag. Only approved riders may
// go online.
func (t *Tracker) SetOnline(ctx context.Context, riderID uint, online bool) (*models.RiderProfile, error) {
	profile, err := t.profile(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if err := t.db.WithContext(ctx).Model(&models.RiderProfile{}).
		Where("user_id = ?", riderID).
		Update("is_online", online).Error; err != nil {
		return nil, err
	}
	profile.IsOnline = online
	return profile, nil
}

// Latest returns the rider's current-position projection.
func (t *Tracker) Latest(ctx context.Context, riderID uint) (*models.RiderProfile, error) {
	var profile models.RiderProfile
	err := t.db.WithContext(ctx).Where("user_id = ?", riderID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRiderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// HistoryForOrder returns the position trail recorded against one order,
// oldest first.
func (t *Tracker) HistoryForOrder(ctx context.Context, orderID uint) ([]models.RiderLocation, error) {
	var samples []models.RiderLocation
	err := t.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at asc, id asc").Find(&samples).Error
	return samples, err
}

func (t *Tracker) profile(ctx context.Context, riderID uint) (*models.RiderProfile, error) {
	var profile models.RiderProfile
	err := t.db.WithContext(ctx).Where("user_id = ?", riderID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRiderNotFound
	}
	if err != nil {
		return nil, err
	}
	if profile.ApprovalStatus != models.RiderApproved {
		return nil, ErrNotApproved
	}
	return &profile, nil
}
