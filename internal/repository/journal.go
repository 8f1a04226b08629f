package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	models "github.com/RoGogDBD/profile-views/internal/model"
)

// Journal — журнал инкрементов в формате JSON Lines.
//
// Каждая запись — CounterRecord с абсолютным значением счётчика после
// инкремента, поэтому воспроизведение журнала идемпотентно: побеждает
// последняя запись ключа. Append дожидается fsync, так что подтверждённый
// инкремент переживает падение процесса.
//
// Поля:
//   - filePath: путь к файлу журнала
//   - file: открытый файл для дозаписи
//   - mu: мьютекс, сериализующий запись и компактизацию
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// OpenJournal открывает журнал для дозаписи, создавая файл и директорию при необходимости.
//
// filePath — путь к файлу журнала.
//
// Возвращает указатель на Journal или ошибку.
func OpenJournal(filePath string) (*Journal, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Journal{filePath: filePath, file: file}, nil
}

// Append дозаписывает запись в журнал и дожидается fsync.
//
// onDurable, если задан, вызывается после успешного fsync, но до снятия
// блокировки журнала: всё, что колбэк делает видимым, гарантированно
// увидит следующая компактизация. Без этого Compact мог бы между fsync
// и фиксацией в памяти записать устаревший снапшот и стереть уже
// подтверждённую строку журнала.
//
// Возвращает ошибку контекста или ошибку записи; в обоих случаях
// запись не считается сохранённой и onDurable не вызывается.
func (j *Journal) Append(ctx context.Context, record models.CounterRecord, onDurable func()) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal record: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	if onDurable != nil {
		onDurable()
	}
	return nil
}

// Replay читает журнал с начала и вызывает fn для каждой записи.
//
// Повреждённые строки (например, хвост после падения посреди записи)
// пропускаются. Отсутствие файла журнала не является ошибкой.
func (j *Journal) Replay(fn func(record models.CounterRecord)) error {
	f, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open journal for replay: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record models.CounterRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		fn(record)
	}
	return scanner.Err()
}

// Compact выполняет компактизацию: под блокировкой журнала вызывает save
// (запись снапшота) и при успехе обнуляет файл журнала.
//
// Пока Compact держит блокировку, параллельные Append ждут, поэтому
// записи не теряются между снапшотом и усечением.
func (j *Journal) Compact(save func() error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := save(); err != nil {
		return err
	}

	// Файл открыт с O_APPEND, после усечения запись продолжится с начала.
	if err := j.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}
	return nil
}

// Close закрывает файл журнала.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
