package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	models "github.com/RoGogDBD/profile-views/internal/model"
)

// JournalSuffix — суффикс файла журнала рядом с файлом снапшота.
const JournalSuffix = ".journal"

// FileStorage реализует Storage с долговременным хранением на диске.
//
// Схема: инкремент фиксируется в журнале (fsync) до подтверждения вызывающему,
// снапшот периодически компактизирует журнал. Восстановление после рестарта —
// загрузка снапшота и воспроизведение журнала поверх него.
type FileStorage struct {
	mem          *MemStorage
	journal      *Journal
	snapshotPath string
}

// NewFileStorage создаёт файловое хранилище счётчиков.
//
// snapshotPath — путь к файлу снапшота; журнал создаётся рядом
// с суффиксом JournalSuffix. При restore == true состояние
// восстанавливается с диска.
//
// Возвращает указатель на FileStorage или ошибку.
func NewFileStorage(snapshotPath string, restore bool) (*FileStorage, error) {
	journal, err := OpenJournal(snapshotPath + JournalSuffix)
	if err != nil {
		return nil, err
	}

	s := &FileStorage{
		mem:          NewMemStorage(),
		journal:      journal,
		snapshotPath: snapshotPath,
	}

	if restore {
		if err := s.restore(); err != nil {
			_ = journal.Close()
			return nil, err
		}
	}

	return s, nil
}

// restore загружает снапшот и воспроизводит журнал поверх него.
func (s *FileStorage) restore() error {
	data, err := os.ReadFile(s.snapshotPath)
	switch {
	case err == nil:
		var records []models.CounterRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}
		for _, r := range records {
			s.mem.set(r.ID, r.Views)
		}
	case os.IsNotExist(err):
		// Первый запуск, снапшота ещё нет.
	default:
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	return s.journal.Replay(func(r models.CounterRecord) {
		s.mem.set(r.ID, r.Views)
	})
}

// IncrementAndGet атомарно увеличивает счётчик ключа key и возвращает новое значение.
//
// Новое значение записано в журнал и сброшено на диск до возврата.
// Фиксация в памяти происходит внутри Append, пока журнал заблокирован,
// поэтому компактизация видит значение не позже, чем усечёт его строку.
// При ошибке записи счётчик в памяти не меняется и возвращается
// ErrStoreUnavailable.
func (s *FileStorage) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	views, err := s.mem.increment(key, func(next int64, commit func()) error {
		return s.journal.Append(ctx, models.CounterRecord{ID: key, Views: next}, commit)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return views, nil
}

// GetCount возвращает текущее значение счётчика ключа и флаг наличия.
func (s *FileStorage) GetCount(ctx context.Context, key string) (int64, bool, error) {
	return s.mem.GetCount(ctx, key)
}

// GetAll возвращает срез всех счётчиков.
func (s *FileStorage) GetAll(ctx context.Context) ([]models.CounterRecord, error) {
	return s.mem.GetAll(ctx)
}

// SaveSnapshot записывает снапшот всех счётчиков и компактизирует журнал.
//
// Снапшот пишется во временный файл и заменяет старый атомарным rename,
// поэтому на диске всегда есть целый снапшот.
func (s *FileStorage) SaveSnapshot() error {
	return s.journal.Compact(func() error {
		records, err := s.mem.GetAll(context.Background())
		if err != nil {
			return err
		}

		tmp := s.snapshotPath + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return fmt.Errorf("failed to create snapshot file: %w", err)
		}

		enc := json.NewEncoder(f)
		if err := enc.Encode(records); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to sync snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		return os.Rename(tmp, s.snapshotPath)
	})
}

// Close сохраняет снапшот и закрывает журнал.
func (s *FileStorage) Close() error {
	if err := s.SaveSnapshot(); err != nil {
		_ = s.journal.Close()
		return err
	}
	return s.journal.Close()
}
