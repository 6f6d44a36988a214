package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(
		ctx,
		bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").InsertOne(ctx, bson.M{
		"version":    version,
		"applied_at": time.Now(),
	})
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create ride indexes",
			Up: func(db *mongo.Database) error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				indexes := []mongo.IndexModel{
					{Keys: bson.D{{Key: "created_at", Value: -1}}},
					{Keys: bson.D{{Key: "passenger_email", Value: 1}, {Key: "created_at", Value: -1}}},
					{Keys: bson.D{{Key: "driver_email", Value: 1}, {Key: "status", Value: 1}}},
					{Keys: bson.D{{Key: "status", Value: 1}}},
				}

				_, err := db.Collection("rides").Indexes().CreateMany(ctx, indexes)
				return err
			},
		},
		{
			Version:     2,
			Description: "Create user indexes",
			Up: func(db *mongo.Database) error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				indexes := []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "email", Value: 1}},
						Options: options.Index().SetUnique(true),
					},
					{Keys: bson.D{{Key: "role", Value: 1}}},
				}

				_, err := db.Collection("users").Indexes().CreateMany(ctx, indexes)
				return err
			},
		},
	}
}
