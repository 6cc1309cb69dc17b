package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"attendcam/internal/camera"
	"attendcam/internal/capture"
	"attendcam/internal/config"
	"attendcam/internal/display"
	"attendcam/internal/frame"
	"attendcam/internal/logger"
	"attendcam/internal/presentation"
	"attendcam/internal/recognition"
	"attendcam/internal/repository"
	"attendcam/internal/repository/sqlite"
	"attendcam/internal/route"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	attendance *sqlite.AttendanceRepository
	journal    *repository.Journal
	hub        *display.Hub
	recognizer *recognition.Client
	loop       *capture.Loop

	mu     sync.Mutex
	camera io.Closer
}

// NewApp wires the kiosk: journal, display hub, recognition client and capture loop.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open attendance journal: %w", err)
	}

	a := &App{
		config:     cfg,
		logger:     log,
		db:         db,
		attendance: sqlite.NewAttendanceRepository(db),
		hub:        display.NewHub(log),
		recognizer: recognition.NewClient(cfg.ServiceURL, cfg.RequestTimeout),
	}
	a.journal = repository.NewJournal(a.attendance, repository.WithReattendanceInterval(cfg.Reattendance))

	presenter := presentation.New(a.fields())
	a.loop = capture.New(
		capture.AcquirerFunc(a.acquireCamera),
		frame.NewEncoder(cfg.JPEGQuality),
		a.recognizer,
		presenter,
		capture.WithInterval(cfg.CaptureInterval),
		capture.WithResolution(cfg.CameraWidth, cfg.CameraHeight),
		capture.WithJournal(a.journal),
		capture.WithLogger(log),
	)

	return a, nil
}

// fields renders every display field into the hub; status changes also go to the log.
func (a *App) fields() presentation.Fields {
	fields := make(presentation.Fields, len(presentation.AllFields))
	for _, id := range presentation.AllFields {
		fields[id] = display.Sink(a.hub, id)
	}
	fields[presentation.FieldStatus] = presentation.Tee(
		fields[presentation.FieldStatus],
		presentation.SinkFunc(func(value string) { a.logger.Info("Status: %s", value) }),
	)
	return fields
}

func (a *App) acquireCamera(ctx context.Context, width, height int) (frame.Source, error) {
	src, err := camera.Device{Index: a.config.CameraDevice}.Acquire(ctx, width, height)
	if err != nil {
		return nil, err
	}
	if r, ok := src.(interface{ Resolution() (int, int) }); ok {
		w, h := r.Resolution()
		a.logger.Info("Camera %d opened at %dx%d", a.config.CameraDevice, w, h)
	}

	if c, ok := src.(io.Closer); ok {
		a.mu.Lock()
		a.camera = c
		a.mu.Unlock()
	}
	return src, nil
}

// Run serves the kiosk screen and drives the capture loop until ctx is done. A camera
// that cannot be acquired leaves the failure on screen and the server running; its
// error is returned once ctx ends.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", a.config.Port),
		Handler: route.SetupRoutes(route.Deps{
			Config:     a.config,
			Logger:     a.logger,
			Hub:        a.hub,
			Attendance: a.attendance,
			SessionID:  a.journal.SessionID(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("🚀 Attendance kiosk")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("🧠 Recognition service: %s", a.config.ServiceURL)
	a.logger.Info("🗂  Journal: %s (session %s)", a.config.DatabasePath, a.journal.SessionID())

	if err := a.recognizer.HealthCheck(ctx); err != nil {
		a.logger.Warning("Recognition service not healthy yet: %v", err)
	}

	var cameraErr error
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := a.loop.Run(gctx)
		if errors.Is(err, capture.ErrCameraUnavailable) {
			a.logger.Error("Capture stopped: %v", err)
			cameraErr = err
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return cameraErr
}

// Close releases the camera and the journal. The logger belongs to the caller.
func (a *App) Close() error {
	a.mu.Lock()
	handle := a.camera
	a.camera = nil
	a.mu.Unlock()

	var errs []error
	if handle != nil {
		errs = append(errs, handle.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}
