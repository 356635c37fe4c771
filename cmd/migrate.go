package cmd

import (
	"fmt"
	"log"

	"resonate/config"
	"resonate/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Connect to MySQL and create the schema: raw SQL tables plus the GORM-managed message and notification tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.DB.Close()

		if err := db.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		fmt.Println("SQL schema OK")

		// ConnectGormDB runs AutoMigrate for the GORM-managed tables.
		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to migrate gorm tables: %v", err)
		}
		defer db.CloseGormDB()
		fmt.Println("GORM schema OK")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
