package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/noticehub/noticehub/pkg/api"
	"github.com/noticehub/noticehub/pkg/impact"
	"github.com/noticehub/noticehub/pkg/metrics"
	"github.com/noticehub/noticehub/pkg/notify"
	"github.com/noticehub/noticehub/pkg/pipeline"
	"github.com/noticehub/noticehub/pkg/store"
	"github.com/noticehub/noticehub/pkg/tracker"
	"github.com/noticehub/noticehub/pkg/types"
)

var (
	serverCommandName = "serve"
	serverConfig      = api.ApiServerConfig{}
	dbPath            string
	dedupWindow       time.Duration
	maxDepth          int
	serveCmd          = &cobra.Command{
		Use:   serverCommandName,
		Short: "Serve API endpoints",
		Long:  "Serve API endpoints",
		Run: func(cmd *cobra.Command, args []string) {
			logger := stdr.New(log.Default())
			serverConfig.Logger = &logger

			st, err := store.NewStore(dbPath)
			if err != nil {
				log.Fatal(err)
				return
			}
			defer st.CloseDB()

			g, err := st.LoadGraph()
			if err != nil {
				log.Fatal(err)
				return
			}

			m := metrics.New()
			openNotifications, err := st.ListNotifications(types.NotificationOpen)
			if err != nil {
				log.Fatal(err)
				return
			}
			m.SetNotificationsOpen(len(openNotifications))

			tr := tracker.New(st, g, dedupWindow)
			eng := impact.New(g, maxDepth)
			gen := notify.New(st)
			p := pipeline.New(tr, eng, gen, m)

			stores := api.Stores{
				Catalog:       st,
				Events:        st,
				Notifications: st,
			}
			var server = api.NewApiServer(serverConfig, stores, g, p, tr, m.Handler())
			logger.Info("Starting API server")

			go func() {
				err = server.Start()
				if err != nil {
					log.Fatal(err)
				}
				logger.Info("Stopped serving new connections")
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownRelease()

			if err := server.Stop(shutdownCtx); err != nil {
				log.Fatalf("HTTP shutdown error: %v", err)
			}
			logger.Info("Graceful shutdown complete")
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serverConfig.AuthUser, "auth-user", "admin", "Username for authenticating with the API")
	serveCmd.Flags().StringVar(&serverConfig.AuthPass, "auth-pass", "", "Password for authenticating with the API")
	serveCmd.Flags().StringVar(&dbPath, "db-file", "./data.db", "Path of the SQLite DB file")
	serveCmd.Flags().IntVar(&serverConfig.Port, "port", 8080, "Port at which to serve API")
	serveCmd.Flags().StringVar(&serverConfig.Host, "host", "0.0.0.0", "Host address to bind")
	serveCmd.Flags().DurationVar(&dedupWindow, "dedup-window", tracker.DefaultDedupWindow, "Window within which facts for the same service merge into one event")
	serveCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum dependency traversal depth, 0 for unbounded")

	rootCmd.AddCommand(serveCmd)
}
