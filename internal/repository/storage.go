package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	models "github.com/RoGogDBD/profile-views/internal/model"
)

var (
	// ErrInvalidKey возвращается для пустого или недопустимого ключа профиля.
	// Хранилище при этом не затрагивается.
	ErrInvalidKey = errors.New("invalid profile key")
	// ErrStoreUnavailable возвращается при отказе шага сохранения.
	// Счётчик в этом случае не считается увеличенным.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// maxKeyLen — максимальная длина ключа профиля.
const maxKeyLen = 64

// Storage определяет интерфейс для работы с хранилищем счётчиков просмотров.
//
// Все операции безопасны для конкурентного вызова. Инкременты одного ключа
// линеаризуемы; инкременты разных ключей не блокируют друг друга.
type Storage interface {
	// IncrementAndGet атомарно увеличивает счётчик ключа key на 1 и возвращает новое значение.
	// Новое значение надёжно сохранено до возврата из метода.
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	// GetCount возвращает текущее значение счётчика и флаг наличия ключа, без инкремента.
	GetCount(ctx context.Context, key string) (int64, bool, error)
	// GetAll возвращает срез всех счётчиков в виде CounterRecord.
	GetAll(ctx context.Context) ([]models.CounterRecord, error)
	// Close освобождает ресурсы хранилища.
	Close() error
}

// ValidateKey проверяет ключ профиля.
//
// Допустимы 1..64 символов из множества [A-Za-z0-9_.-].
// Возвращает ErrInvalidKey при нарушении.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > maxKeyLen {
		return ErrInvalidKey
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '.' || c == '-':
		default:
			return ErrInvalidKey
		}
	}
	return nil
}

// entry — счётчик одного ключа со своим мьютексом.
//
// Мьютекс сериализует только писателей (инкремент плюс шаг сохранения);
// читатели берут значение атомарно и не блокируются. Благодаря этому
// снапшот может идти параллельно с инкрементом, ожидающим журнал.
type entry struct {
	mu    sync.Mutex
	views atomic.Int64
}

// MemStorage реализует интерфейс Storage в памяти, без персистентности.
//
// Внешний RW-мьютекс защищает только map; сам инкремент и шаг сохранения
// выполняются под мьютексом entry конкретного ключа.
type MemStorage struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewMemStorage создаёт и возвращает новый экземпляр MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		entries: make(map[string]*entry),
	}
}

// getEntry возвращает entry ключа, лениво создавая его при первом обращении.
func (s *MemStorage) getEntry(key string) *entry {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[key]; ok {
		return e
	}
	e = &entry{}
	s.entries[key] = e
	return e
}

// increment выполняет инкремент под мьютексом entry.
//
// persist, если задан, вызывается с новым значением и функцией commit,
// фиксирующей значение в памяти. Слой персистентности обязан вызвать
// commit в момент, когда запись уже на диске, но ресурс записи ещё
// заблокирован: тогда компактизация не может прочитать устаревшее
// значение после того, как инкремент подтверждён. При ошибке сохранения
// commit не вызывается и значение в памяти не меняется.
func (s *MemStorage) increment(key string, persist func(next int64, commit func()) error) (int64, error) {
	e := s.getEntry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.views.Load() + 1
	commit := func() { e.views.Store(next) }
	if persist == nil {
		commit()
		return next, nil
	}
	if err := persist(next, commit); err != nil {
		return 0, err
	}
	return next, nil
}

// set устанавливает значение счётчика ключа. Используется при восстановлении.
func (s *MemStorage) set(key string, views int64) {
	e := s.getEntry(key)
	e.mu.Lock()
	e.views.Store(views)
	e.mu.Unlock()
}

// IncrementAndGet атомарно увеличивает счётчик ключа key на 1 и возвращает новое значение.
//
// Первый вызов для нового ключа возвращает 1.
func (s *MemStorage) IncrementAndGet(_ context.Context, key string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	return s.increment(key, nil)
}

// GetCount возвращает текущее значение счётчика ключа и флаг наличия.
func (s *MemStorage) GetCount(_ context.Context, key string) (int64, bool, error) {
	if err := ValidateKey(key); err != nil {
		return 0, false, err
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	return e.views.Load(), true, nil
}

// GetAll возвращает срез всех счётчиков.
func (s *MemStorage) GetAll(_ context.Context) ([]models.CounterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.CounterRecord, 0, len(s.entries))
	for k, e := range s.entries {
		result = append(result, models.CounterRecord{ID: k, Views: e.views.Load()})
	}
	return result, nil
}

// Close для хранилища в памяти не делает ничего.
func (s *MemStorage) Close() error {
	return nil
}
