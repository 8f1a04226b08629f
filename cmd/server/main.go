package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoGogDBD/profile-views/internal/config"
	"github.com/RoGogDBD/profile-views/internal/config/db"
	"github.com/RoGogDBD/profile-views/internal/handler"
	"github.com/RoGogDBD/profile-views/internal/palette"
	"github.com/RoGogDBD/profile-views/internal/render"
	"github.com/RoGogDBD/profile-views/internal/repository"
	"github.com/RoGogDBD/profile-views/internal/service"
	"github.com/RoGogDBD/profile-views/internal/version"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	version.PrintBuildInfo()
	if err := run(); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}

func run() error {
	logger, err := config.Initialize("info")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dsnFlag := flag.String(config.FlagDatabaseDSN, "", "PostgreSQL DSN")
	storeIntervalFlag := flag.Int(config.FlagStoreInterval, 300, "Snapshot interval in seconds")
	fileStorageFlag := flag.String(config.FlagStoreFile, "counters.json", "Counters snapshot path")
	restoreFlag := flag.Bool(config.FlagRestore, true, "Restore counters from disk at startup")
	templateFlag := flag.String(config.FlagTemplatePath, "assets/badge.svg", "Badge template path")
	paletteFlag := flag.String(config.FlagPalettePath, "assets/colors.txt", "Palette file path")
	maxViewsFlag := flag.Uint64(config.FlagMaxViews, palette.DefaultMaxViews, "View count at which the accent color peaks")
	configFlag := flag.String(config.FlagConfig, "", "JSON config file path")
	addr := config.ParseAddressFlag()
	flag.Parse()

	jsonCfg, err := config.LoadServerJSONConfig(config.GetConfigFilePathWithFlag(*configFlag))
	if err != nil {
		return err
	}

	dsn := config.GetEnvOrFlagString(config.EnvDatabaseDSN, *dsnFlag)
	storeInterval := config.GetEnvOrFlagInt(config.EnvStoreInterval, *storeIntervalFlag)
	fileStoragePath := config.GetEnvOrFlagString(config.EnvStoreFile, *fileStorageFlag)
	restore := config.GetEnvOrFlagBool(config.EnvRestore, *restoreFlag)
	templatePath := config.GetEnvOrFlagString(config.EnvTemplatePath, *templateFlag)
	palettePath := config.GetEnvOrFlagString(config.EnvPalettePath, *paletteFlag)
	maxViews := config.GetEnvOrFlagUint64(config.EnvMaxViews, *maxViewsFlag)

	// JSON-файл заполняет только значения, не заданные ни флагом, ни
	// переменной окружения. Явно переданный флаг со значением по умолчанию
	// удерживает своё значение.
	fromJSON := func(flagName, envKey string) bool {
		return !config.FlagPassed(flag.CommandLine, flagName) && os.Getenv(envKey) == ""
	}
	if jsonCfg.Address != "" && fromJSON(config.FlagAddress, config.EnvAddress) {
		if err := addr.Set(jsonCfg.Address); err != nil {
			return err
		}
	}
	if jsonCfg.DatabaseDSN != "" && fromJSON(config.FlagDatabaseDSN, config.EnvDatabaseDSN) {
		dsn = jsonCfg.DatabaseDSN
	}
	if jsonCfg.Restore != nil && fromJSON(config.FlagRestore, config.EnvRestore) {
		restore = *jsonCfg.Restore
	}
	if jsonCfg.StoreInterval != "" && fromJSON(config.FlagStoreInterval, config.EnvStoreInterval) {
		storeInterval, err = config.ParseDuration(jsonCfg.StoreInterval)
		if err != nil {
			return err
		}
	}
	if jsonCfg.StoreFile != "" && fromJSON(config.FlagStoreFile, config.EnvStoreFile) {
		fileStoragePath = jsonCfg.StoreFile
	}
	if jsonCfg.TemplatePath != "" && fromJSON(config.FlagTemplatePath, config.EnvTemplatePath) {
		templatePath = jsonCfg.TemplatePath
	}
	if jsonCfg.PalettePath != "" && fromJSON(config.FlagPalettePath, config.EnvPalettePath) {
		palettePath = jsonCfg.PalettePath
	}
	if jsonCfg.MaxViews != nil && fromJSON(config.FlagMaxViews, config.EnvMaxViews) {
		maxViews = *jsonCfg.MaxViews
	}

	// Палитра и шаблон загружаются до старта: без них сервер не должен принимать трафик.
	pal, err := palette.LoadFile(palettePath, maxViews)
	if err != nil {
		return err
	}
	tmpl, err := render.ParseFile(templatePath)
	if err != nil {
		return err
	}
	renderer := render.NewRenderer(tmpl, pal)

	var dbPool *pgxpool.Pool
	var storage repository.Storage
	var snap service.Snapshotter
	if dsn != "" {
		dbPool, err = db.InitDB(context.Background(), dsn)
		if err != nil {
			return err
		}
		storage = repository.NewPgStorage(dbPool)
	} else {
		log.Println("No DSN provided, using file storage")
		fileStorage, err := repository.NewFileStorage(fileStoragePath, restore)
		if err != nil {
			return err
		}
		storage = fileStorage
		snap = fileStorage
	}

	h := handler.NewHandler(storage, renderer, dbPool)

	routerCtx, stopSnapshots := context.WithCancel(context.Background())
	defer stopSnapshots()
	r := service.NewRouter(routerCtx, h, snap, storeInterval, logger)

	if err := config.EnvServer(addr, config.EnvAddress); err != nil {
		return err
	}

	log.Printf("Using address: %s\n", addr.String())
	fmt.Println("Server started")

	srv := &http.Server{Addr: addr.String(), Handler: r}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	// Останавливаем фоновую компактизацию до закрытия журнала.
	stopSnapshots()
	return storage.Close()
}
