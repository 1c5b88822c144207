package main

import (
	"time"

	"github.com/noticehub/noticehub/pkg/cmd"
)

var (
	// these variables are populated by Goreleaser when releasing
	version = "unknown"
	commit  = "-dirty-"
	date    = time.Now().Format("2006-01-02")

	appName     = "noticehub"
	appLongName = "NoticeHub downtime tracking"
)

func main() {
	cmd.Execute()
}
