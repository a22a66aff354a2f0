package database

import (
	"fmt"
	"log"
	"time"

	"momo/internal/models"

	"gorm.io/gorm"
)

// SchemaMigration records an applied migration.
type SchemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"type:varchar(100)"`
	AppliedAt time.Time
}

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// Tables created by an older deployment are kept as they are; only missing
// pieces are added.
var migrations = []migration{
	{1, "create_users", createTableIfAbsent(&models.User{})},
	{2, "add_users_address", func(tx *gorm.DB) error {
		if tx.Migrator().HasColumn(&models.User{}, "Address") {
			return nil
		}
		return tx.Migrator().AddColumn(&models.User{}, "Address")
	}},
	{3, "create_orders", createTableIfAbsent(&models.Order{})},
	{4, "create_contacts", createTableIfAbsent(&models.Contact{})},
}

func createTableIfAbsent(model interface{}) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(model) {
			return nil
		}
		return tx.Migrator().CreateTable(model)
	}
}

// LatestVersion is the version of the newest known migration.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every migration that has not been recorded yet, in order.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	var applied []SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: m.version, Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		log.Printf("Applied migration %d (%s)", m.version, m.name)
	}
	return nil
}

// AppliedVersions lists recorded migration versions in ascending order.
func AppliedVersions(db *gorm.DB) ([]int, error) {
	var versions []int
	if err := db.Model(&SchemaMigration{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return versions, nil
}
