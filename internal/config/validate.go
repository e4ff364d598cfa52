package config

import (
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is usable. All problems are reported
// together as criterio field errors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.HTTP.Addr == "" {
		errs = errs.Append("http.addr", fmt.Errorf("cannot be empty"))
	}
	if err := positive(c.HTTP.ShutdownTimeout); err != nil {
		errs = errs.Append("http.shutdown_timeout", err)
	}
	if err := positive(c.Board.RefreshInterval); err != nil {
		errs = errs.Append("board.refresh_interval", err)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = errs.Append("store.path", fmt.Errorf("required for driver %s", DriverSQLite))
		}
	case DriverMySQL:
		if c.Store.DSN == "" {
			errs = errs.Append("store.dsn", fmt.Errorf("required for driver %s", DriverMySQL))
		}
	case DriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			errs = errs.Append("store.firestore.project_id", fmt.Errorf("required for driver %s", DriverFirestore))
		}
		if c.Store.Firestore.Collection == "" {
			errs = errs.Append("store.firestore.collection", fmt.Errorf("cannot be empty"))
		}
	default:
		errs = errs.Append("store.driver", fmt.Errorf("unknown driver %q (want %s, %s or %s)",
			c.Store.Driver, DriverSQLite, DriverMySQL, DriverFirestore))
	}

	if c.Gemini.MinTasks < 1 {
		errs = errs.Append("gemini.min_tasks", fmt.Errorf("must be at least 1"))
	}
	if c.Gemini.MaxTasks < c.Gemini.MinTasks {
		errs = errs.Append("gemini.max_tasks", fmt.Errorf("must be >= min_tasks (%d)", c.Gemini.MinTasks))
	}

	return errs.ToError()
}

func positive(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}
