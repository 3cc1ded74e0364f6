package main

import (
	"context"
	"net/http"
	"notamind/notamind/config"
	"notamind/notamind/controllers"
	"notamind/notamind/middlewares"
	"notamind/notamind/routes"
	"notamind/notamind/services/tags"
	"notamind/notamind/sources/psql"
	"notamind/notamind/sources/psql/dao"
	"notamind/notamind/sources/storage"
	"notamind/notamind/utils/logging"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.AppLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	noteDAO := dao.NewNoteDAO(db.DB)

	attachmentStore, err := storage.NewAttachmentStore(cfg)
	if err != nil {
		logging.AppLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	generator := tags.NewGenerator(cfg)

	notesCtrl := controllers.NewNotesController(noteDAO, generator, attachmentStore, cfg.MaxNotes)
	attachmentsCtrl := controllers.NewAttachmentsController(noteDAO, attachmentStore, cfg.MaxAttachments)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/notes", routes.NotesRoutes(notesCtrl, attachmentsCtrl))

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.AppLogger.Error("server listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("server started", zap.String("addr", cfg.ServerAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.AppLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
