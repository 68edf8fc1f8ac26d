package service

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"inkpost/app/config"
	"inkpost/app/repositories"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

var errInMemory = errors.New("maintenance commands need an on-disk database; unset IN_MEMORY")

// openStore opens the on-disk database the configuration points at. Badger's
// own chatter is left out of command output.
func openStore(cfg *config.Config) (*repositories.Store, error) {
	if cfg.InMemory {
		return nil, errInMemory
	}
	return repositories.Open(repositories.StoreOptions{Path: cfg.DataDir})
}

// databaseExists reports whether dir holds anything.
func databaseExists(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// confirm asks a yes/no question on stdin unless assumeYes is set.
func confirm(question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return strings.EqualFold(response, "y")
}

// hasFlag removes every occurrence of the given flags from args and reports
// whether any was present.
func hasFlag(args []string, names ...string) ([]string, bool) {
	found := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		matched := false
		for _, name := range names {
			if arg == name {
				matched = true
				break
			}
		}
		if matched {
			found = true
			continue
		}
		rest = append(rest, arg)
	}
	return rest, found
}
