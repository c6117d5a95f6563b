package main

import (
	"os"

	"electrician-be/internal/model"
	"electrician-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		color.White("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn, false, database.DefaultPoolConfig())
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting chat schema migration...")

	color.Yellow("Step 1: Running AutoMigrate for %d tables...", len(model.All()))
	if err := db.AutoMigrate(model.All()...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// Constraints AutoMigrate cannot express through struct tags.
	color.Yellow("Step 2: Adding check constraints...")
	postMigrationSQL := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_chat_rooms_participant_order') THEN
		   ALTER TABLE chat_rooms ADD CONSTRAINT chk_chat_rooms_participant_order CHECK (participant_low < participant_high);
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_messages_message_type') THEN
		   ALTER TABLE messages ADD CONSTRAINT chk_messages_message_type CHECK (message_type IN ('TEXT', 'IMAGE', 'FILE', 'SYSTEM'));
		 END IF; END $$;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Magenta("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("Success: Database migration completed.")
}
