package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inkpost/app/config"
	"inkpost/app/services"
)

// commands maps each subcommand to its implementation. Every command receives
// the loaded configuration and the arguments following its name.
var commands = map[string]func(cfg *config.Config, args []string) int{
	"serve": func(cfg *config.Config, _ []string) int { return serve(cfg) },
	"init":  func(cfg *config.Config, _ []string) int { return initDb(cfg) },
	"clean": func(cfg *config.Config, args []string) int {
		_, yes := hasFlag(args, "-y", "--yes")
		return clean(cfg, yes)
	},
	"backup": func(cfg *config.Config, args []string) int {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return backup(cfg, target)
	},
	"restore": func(cfg *config.Config, args []string) int {
		rest, yes := hasFlag(args, "-y", "--yes")
		if len(rest) < 1 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, rest[0], yes)
	},
	"seed": func(cfg *config.Config, _ []string) int { return seed(cfg) },
}

// HandleCommand runs a subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}
	if args[0] == "help" {
		PrintHelp()
		return 0
	}

	run, ok := commands[args[0]]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", args[0])
		PrintHelp()
		return 1
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	return run(cfg, args[1:])
}

// PrintHelp prints usage for every subcommand.
func PrintHelp() {
	helpText := `Usage: inkpost <command> [options]

Commands:
  serve                     Run the blog API server
  init                      Initialize a new empty database
  clean [-y]                Remove the database
  backup [file]             Create a backup of the database
  restore [-y] <file>       Restore the database from a backup
  seed                      Create the default categories
  version                   Show version information
  help                      Display this help message

Configuration is read from the environment, optionally layered over the YAML
file named by INKPOST_CONFIG.
`
	fmt.Println(helpText)
}

// initDb creates a new empty database.
func initDb(cfg *config.Config) int {
	if databaseExists(cfg.DataDir) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// clean removes the database directory.
func clean(cfg *config.Config, yes bool) int {
	if !databaseExists(cfg.DataDir) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.", yes) {
		fmt.Println("Operation cancelled")
		return 0
	}

	if err := os.RemoveAll(cfg.DataDir); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// backup writes a full backup to target, or to a timestamped file in a
// backups directory beside the database when target is empty.
func backup(cfg *config.Config, target string) int {
	if !databaseExists(cfg.DataDir) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if target == "" {
		backupDir := filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "backups")
		target = filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Create(target)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", target)
	return 0
}

// restore replaces the database with the contents of backupFile.
func restore(cfg *config.Config, backupFile string, yes bool) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if databaseExists(cfg.DataDir) {
		if !confirm("Existing database found. Do you want to replace it?", yes) {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Restore(f)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// seed creates the default categories, skipping names that already exist.
func seed(cfg *config.Config) int {
	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	categories := services.NewCategoryService(store.Categories, cfg.StoreTimeout)
	created, err := categories.Seed(context.Background(), services.DefaultCategories)
	if err != nil {
		fmt.Printf("Failed to seed categories: %v\n", err)
		return 1
	}

	fmt.Printf("Seeded %d categories (%d already present)\n", created, len(services.DefaultCategories)-created)
	return 0
}
