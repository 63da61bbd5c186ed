package docstore

import "fmt"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFS     = "fs"
)

// Open returns the Store for driver; path is the database file for sqlite
// and the root directory for fs.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverFS:
		return NewFS(path)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", driver)
	}
}
