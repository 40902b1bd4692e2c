package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/daybreakhq/wakeup/config"
	"github.com/daybreakhq/wakeup/journal"
	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/roles"
	"github.com/daybreakhq/wakeup/routes"
	"github.com/daybreakhq/wakeup/store"
	"github.com/daybreakhq/wakeup/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Durable user record store
	_ = os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755)
	st := store.New(cfg.DataFile)
	st.Load()

	// External journal (best-effort; nil db disables it)
	var sink journal.Sink
	if db := config.InitJournalDB(&models.CheckInLog{}); db != nil {
		sink = journal.NewGormSink(db)
	}
	appender := journal.NewAppender(sink, cfg.JournalMaxAttempts, time.Duration(cfg.JournalBackoffBaseMS)*time.Millisecond)

	// Membership role sync (best-effort; disabled without a base URL)
	var roleClient roles.Client
	if cfg.RolesBaseURL != "" {
		roleClient = roles.NewHTTPClient(cfg.RolesBaseURL, cfg.RolesToken)
	}
	tiers := make([]roles.Tier, len(cfg.RoleTiers))
	for i, t := range cfg.RoleTiers {
		tiers[i] = roles.Tier{Threshold: t.Threshold, Name: t.Name}
	}
	projector := roles.NewProjector(roleClient, tiers)

	r := routes.SetupRouter(st, appender, projector)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, st.Close); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
