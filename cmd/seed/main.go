package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/edufy-app/roster-api/internal/repository"
	"github.com/edufy-app/roster-api/pkg/config"
	"github.com/edufy-app/roster-api/pkg/database"
	"github.com/edufy-app/roster-api/pkg/logger"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	email    TEXT NOT NULL,
	role     TEXT NOT NULL,
	name     TEXT NOT NULL,
	password TEXT,
	subjects TEXT[] NOT NULL DEFAULT '{}',
	UNIQUE (email, role)
)`

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS class_sessions (
	id           TEXT PRIMARY KEY,
	student_id   TEXT NOT NULL,
	teacher_id   TEXT NOT NULL,
	student_name TEXT NOT NULL,
	teacher_name TEXT NOT NULL,
	subject      TEXT NOT NULL,
	day          TEXT NOT NULL,
	date         TEXT NOT NULL,
	"time"       TEXT NOT NULL
)`

const insertUser = `
INSERT INTO users (id, email, role, name, password, subjects)
VALUES (:id, :email, :role, :name, :password, :subjects)
ON CONFLICT (id) DO NOTHING`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Database.Configured() {
		log.Fatal("seeding requires live database credentials; set DB_HOST and DB_PASSWORD")
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		logr.Fatal("failed to create users table", zap.Error(err))
	}
	if _, err := db.ExecContext(ctx, sessionsSchema); err != nil {
		logr.Fatal("failed to create class_sessions table", zap.Error(err))
	}

	users := repository.SeedUsers()
	for _, user := range users {
		if _, err := db.NamedExecContext(ctx, insertUser, user); err != nil {
			logr.Fatal("failed to seed user", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	sessions := repository.SeedSessions()
	if err := repository.NewScheduleRepository(db).BulkInsert(ctx, sessions); err != nil {
		logr.Fatal("failed to seed class sessions", zap.Error(err))
	}

	logr.Info("seed complete", zap.Int("users", len(users)), zap.Int("class_sessions", len(sessions)))
}
