// Package data archives prediction runs in postgres.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spencer-p/tidepredict/pkg/tide"
)

// Run is one answered request.
type Run struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Mode      string    `json:"mode"`
	Station   int       `gorm:"index" json:"station"`
	Secondary bool      `json:"secondary"`
	Start     time.Time `json:"start"`
	Hours     int       `json:"hours"`
	Step      float64   `json:"step"`
	Baseline  float64   `json:"baseline"`
	AddMLLW   bool      `json:"mllw"`
	Seasonal  bool      `json:"seasonal"`

	Datum   float64  `json:"datum"`
	Samples []Sample `gorm:"constraint:OnDelete:CASCADE" json:"samples"`
}

// Sample is one predicted height of a Run.
type Sample struct {
	ID     uint      `gorm:"primaryKey" json:"-"`
	RunID  uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Seq    int       `json:"-"`
	Time   time.Time `json:"t"`
	Height float64   `json:"v"`
}

// NewRun records req and its result under id.
func NewRun(id uuid.UUID, req tide.Request, res tide.Result) Run {
	run := Run{
		ID:        id,
		Mode:      string(req.Mode),
		Station:   req.Station,
		Secondary: req.Secondary,
		Start:     req.Start,
		Hours:     req.Hours,
		Step:      req.Step,
		Baseline:  req.Baseline,
		AddMLLW:   req.AddMLLW,
		Seasonal:  req.Seasonal,
		Datum:     res.Datum,
		Samples:   make([]Sample, len(res.Predictions)),
	}
	for i, p := range res.Predictions {
		run.Samples[i] = Sample{
			RunID:  id,
			Seq:    i,
			Time:   time.Time(p.Time),
			Height: float64(p.Height),
		}
	}
	return run
}

// Open connects to the database at dsn and migrates the archive tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &Sample{}); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}
	return db, nil
}

// Archive saves runs to a database.
type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// Save stores run and its samples in one transaction.
func (a *Archive) Save(ctx context.Context, run Run) error {
	if err := a.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("archiving run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns the latest runs for station, newest first, with their
// samples.
func (a *Archive) Recent(ctx context.Context, station, limit int) ([]Run, error) {
	var runs []Run
	err := a.db.WithContext(ctx).
		Preload("Samples", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Where("station = ?", station).
		Order("created_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("listing runs of station %d: %w", station, err)
	}
	return runs, nil
}
