package cmd

import (
	"fmt"
	"log"

	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/noticehub/noticehub/pkg/seed"
	"github.com/noticehub/noticehub/pkg/store"
)

var (
	dbCommandName = "db"
	dbCmd         = &cobra.Command{
		Use:   dbCommandName,
		Short: "Database operations",
	}
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize database if it does not yet exist",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Initializing database...")
			var st, err = store.NewStore(dbPath)
			if err != nil {
				log.Fatal(err)
				return
			}
			defer st.CloseDB()
			err = st.InitializeDB()
			if err != nil {
				log.Fatal(err)
				return
			}
			fmt.Println("Database has been initialized")
		},
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty database",
		Run: func(cmd *cobra.Command, args []string) {
			var st, err = store.NewStore(dbPath)
			if err != nil {
				log.Fatal(err)
				return
			}
			defer st.CloseDB()
			if err := st.InitializeDB(); err != nil {
				log.Fatal(err)
				return
			}
			if err := seed.Seed(stdr.New(log.Default()), st); err != nil {
				log.Fatal(err)
				return
			}
		},
	}
)

func init() {
	initCmd.Flags().StringVar(&dbPath, "db-file", "./data.db", "Path of the SQLite DB file")
	seedCmd.Flags().StringVar(&dbPath, "db-file", "./data.db", "Path of the SQLite DB file")

	dbCmd.AddCommand(initCmd)
	dbCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(dbCmd)
}
