package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/RoGogDBD/profile-views/internal/config"
	"github.com/RoGogDBD/profile-views/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Snapshotter — хранилище, умеющее компактизировать журнал в снапшот.
// Для хранилищ без снапшотов (Postgres) передаётся nil.
type Snapshotter interface {
	SaveSnapshot() error
}

// NewRouter создает и настраивает HTTP-роутер сервиса бейджей.
// В зависимости от значения storeInterval, роутер либо пишет снапшот после каждого запроса бейджа,
// либо запускает отдельную горутину для периодической компактизации.
//
// Параметры:
//   - ctx: контекст жизни фоновой компактизации; отмена останавливает горутину
//     до закрытия хранилища
//   - h: обработчик запросов (handler.Handler)
//   - snap: хранилище со снапшотами или nil
//   - storeInterval: интервал компактизации (в секундах); если 0 — снапшот после каждого запроса бейджа
//   - logger: логгер для логирования запросов
//
// Возвращает:
//   - *chi.Mux: настроенный роутер
func NewRouter(ctx context.Context, h *handler.Handler, snap Snapshotter, storeInterval int, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)         // Добавляет уникальный идентификатор запроса
	r.Use(middleware.RealIP)            // Определяет реальный IP клиента
	r.Use(config.RequestLogger(logger)) // Логирует запросы с помощью zap
	r.Use(middleware.Recoverer)          // Восстанавливает после паники
	r.Use(config.GzipResponseMiddleware) // Сжимает SVG, HTML и JSON ответы

	if snap != nil && storeInterval == 0 {
		// Если storeInterval == 0, компактизирует журнал после каждого запроса бейджа
		r.Get("/badge/{key}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleBadge(w, r)
			if err := snap.SaveSnapshot(); err != nil {
				log.Printf("Failed to save snapshot: %v", err)
			}
		})
	} else {
		if snap != nil {
			// Если storeInterval > 0, запускает периодическую компактизацию в отдельной горутине
			go func() {
				ticker := time.NewTicker(time.Duration(storeInterval) * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := snap.SaveSnapshot(); err != nil {
							log.Printf("Failed to save snapshot: %v", err)
						}
					}
				}
			}()
		}
		r.Get("/badge/{key}", h.HandleBadge)
	}

	// Роуты для чтения счётчиков и служебные эндпоинты
	r.Get("/count/{key}", h.HandleGetCount)
	r.Post("/value", h.HandleCountJSON)
	r.Post("/value/", h.HandleCountJSON)
	r.Get("/ping", h.HandlePing)
	r.Get("/healthz", h.HandleHealth)
	r.Get("/", h.HandleStatsPage)

	return r
}
