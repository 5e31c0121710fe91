package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hiroki-koketsu/tasklists/internal/config"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
	"github.com/hiroki-koketsu/tasklists/internal/repository/dsstore"
	"github.com/hiroki-koketsu/tasklists/internal/repository/memory"
	"github.com/hiroki-koketsu/tasklists/internal/repository/sqlstore"
)

// storage is the pair of repositories selected by database.driver.
type storage struct {
	lists repository.TaskListRepository
	tasks repository.TaskRepository
	close func() error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return &storage{
			lists: memory.NewTaskListRepository(),
			tasks: memory.NewTaskRepository(),
			close: func() error { return nil },
		}, nil

	case config.DriverSQLite, config.DriverPostgres:
		if cfg.Database.Driver == config.DriverSQLite && cfg.Database.DSN != ":memory:" {
			dir := filepath.Dir(cfg.Database.DSN)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
			}
		}
		db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &storage{
			lists: sqlstore.NewTaskListRepository(db),
			tasks: sqlstore.NewTaskRepository(db),
			close: db.Close,
		}, nil

	case config.DriverDatastore:
		client, err := dsstore.NewClient(ctx, cfg.Datastore.ProjectID)
		if err != nil {
			return nil, err
		}
		return &storage{
			lists: dsstore.NewTaskListRepository(client),
			tasks: dsstore.NewTaskRepository(client),
			close: client.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
