package migrator

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/ghuser/itemtracker/pkg/database"
	"github.com/ghuser/itemtracker/pkg/logger"
)

const createWidgets = `-- +goose Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY);

-- +goose Down
DROP TABLE widgets;
`

func TestRunMigrations_AppliesAndIsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:", logger.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close() //nolint:errcheck

	files := fstest.MapFS{
		"00001_create_widgets.sql": &fstest.MapFile{Data: []byte(createWidgets)},
	}

	if err := RunMigrations(db.DB(), files); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(db.DB(), files); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if _, err := db.DB().Exec(`INSERT INTO widgets (id) VALUES (1)`); err != nil {
		t.Fatalf("expected widgets table to exist: %v", err)
	}
}

func TestRunMigrations_InvalidSQL(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:", logger.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close() //nolint:errcheck

	files := fstest.MapFS{
		"00001_broken.sql": &fstest.MapFile{Data: []byte("-- +goose Up\nCREATE TABLEX nope;\n")},
	}
	if err := RunMigrations(db.DB(), files); err == nil {
		t.Fatal("expected error for invalid migration")
	}
}
