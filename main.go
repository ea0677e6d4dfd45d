package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"recipe-service/config"
	"recipe-service/database"
	"recipe-service/server"
	"recipe-service/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start, migrate, wait-for-db, create-superuser, create-migration")
	nameFlag := flag.String("name", "", "Migration name for create-migration, display name for create-superuser")
	dirFlag := flag.String("dir", "./database/migrations", "Target directory for the new .sql file")
	emailFlag := flag.String("email", "", "Superuser email")
	passwordFlag := flag.String("password", "", "Superuser password")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	server.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer(cfg)
	case "wait-for-db":
		dbConn, err := database.WaitForDatabase(context.Background(), cfg.Database)
		if err != nil {
			logger.Error("Database unavailable", zap.Error(err))
			os.Exit(1)
		}
		dbConn.Close()
	case "migrate":
		dbConn := database.InitializeDatabase(cfg.Database)
		dbConn.Close()
	case "create-superuser":
		dbConn := database.InitializeDatabase(cfg.Database)
		defer dbConn.Close()

		user, err := store.New(dbConn).CreateSuperuser(context.Background(), *emailFlag, *passwordFlag, *nameFlag)
		if err != nil {
			logger.Error("Failed to create superuser", zap.Error(err))
			dbConn.Close()
			os.Exit(1)
		}
		logger.Info("Superuser created", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	case "create-migration":
		if err := database.CreateMigration(*nameFlag, *dirFlag); err != nil {
			logger.Error("Failed to create migration", zap.Error(err))
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}
