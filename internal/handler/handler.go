package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	models "github.com/RoGogDBD/profile-views/internal/model"
	"github.com/RoGogDBD/profile-views/internal/render"
	"github.com/RoGogDBD/profile-views/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// storageTimeout ограничивает шаг сохранения инкремента.
const storageTimeout = 3 * time.Second

type Handler struct {
	storage  repository.Storage
	renderer *render.Renderer
	db       *pgxpool.Pool
	started  time.Time
}

func NewHandler(storage repository.Storage, renderer *render.Renderer, db *pgxpool.Pool) *Handler {
	return &Handler{
		storage:  storage,
		renderer: renderer,
		db:       db,
		started:  time.Now(),
	}
}

// storageStatus переводит ошибку хранилища в HTTP-статус.
func storageStatus(err error) int {
	if errors.Is(err, repository.ErrInvalidKey) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusOK)
	_, err = w.Write(body)
	return err
}

// HandleBadge обрабатывает запрос бейджа: инкрементирует счётчик ключа
// и возвращает SVG с новым значением.
func (h *Handler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	views, err := h.storage.IncrementAndGet(ctx, key)
	if err != nil {
		http.Error(w, err.Error(), storageStatus(err))
		return
	}

	mode := render.ParseFillMode(r.URL.Query().Get("fill_mode"))
	svg := h.renderer.RenderMode(uint64(views), mode)

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "max-age=0, no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg); err != nil {
		log.Printf("Failed to write badge: %v", err)
	}
}

// HandleGetCount возвращает текущее значение счётчика без инкремента.
func (h *Handler) HandleGetCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	key := chi.URLParam(r, "key")

	views, ok, err := h.storage.GetCount(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), storageStatus(err))
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if _, err := w.Write([]byte(strconv.FormatInt(views, 10))); err != nil {
		log.Printf("Failed to write count: %v", err)
	}
}

// HandleCountJSON возвращает счётчик в формате JSON по телу {"id": key}.
func (h *Handler) HandleCountJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CounterRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	views, ok, err := h.storage.GetCount(r.Context(), req.ID)
	if err != nil {
		http.Error(w, err.Error(), storageStatus(err))
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	resp := models.CounterRecord{ID: req.ID, Views: views}
	if err := h.writeJSON(w, resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// HandleStatsPage отдаёт HTML-страницу со всеми счётчиками.
func (h *Handler) HandleStatsPage(w http.ResponseWriter, r *http.Request) {
	records, err := h.storage.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	builder := strings.Builder{}
	builder.WriteString("<html><body><h1>Profile views</h1><ul>")
	for _, rec := range records {
		builder.WriteString("<li>" + rec.ID + ": " + strconv.FormatInt(rec.Views, 10) + "</li>")
	}
	builder.WriteString("</ul></body></html>")

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(builder.String())); err != nil {
		log.Printf("Failed to write stats page: %v", err)
	}
}

// HandlePing проверяет доступность базы данных.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "database not configured", http.StatusInternalServerError)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		http.Error(w, "database not reachable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// healthReport — тело ответа /healthz.
type healthReport struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	CPUPercent     float64 `json:"cpu_percent"`
}

// HandleHealth возвращает состояние процесса и хоста.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := healthReport{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemUsedPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report.CPUPercent = percents[0]
	}

	if err := h.writeJSON(w, report); err != nil {
		log.Printf("Failed to write health report: %v", err)
	}
}
