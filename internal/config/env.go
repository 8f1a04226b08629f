package config

import (
	"fmt"
	"os"
	"strconv"
)

// AddrSetter определяет интерфейс для установки адреса из строки.
type AddrSetter interface {
	Set(string) error
}

// EnvServer устанавливает адрес сервера из переменной окружения.
//
// Если переменная окружения с именем envKey присутствует, функция вызывает метод Set интерфейса AddrSetter
// с её значением. В случае ошибки возвращает ошибку с описанием.
//
// addr   — объект, реализующий интерфейс AddrSetter.
// envKey — имя переменной окружения.
//
// Возвращает ошибку, если значение некорректно, иначе nil.
func EnvServer(addr AddrSetter, envKey string) error {
	if envVal, ok := os.LookupEnv(envKey); ok {
		if err := addr.Set(envVal); err != nil {
			return fmt.Errorf("invalid %s: %w", envKey, err)
		}
	}
	return nil
}

// EnvString возвращает значение переменной окружения как строку.
//
// key — имя переменной окружения.
//
// Если переменная не задана или пуста, возвращает пустую строку.
func EnvString(key string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return ""
}

// GetEnvOrFlagInt возвращает значение переменной окружения envKey как int,
// либо значение флага flagVal, если переменная не задана или некорректна.
func GetEnvOrFlagInt(envKey string, flagVal int) int {
	if v := os.Getenv(envKey); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return flagVal
}

// GetEnvOrFlagString возвращает значение переменной окружения envKey,
// либо значение флага flagVal, если переменная не задана.
func GetEnvOrFlagString(envKey string, flagVal string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return flagVal
}

// GetEnvOrFlagBool возвращает значение переменной окружения envKey как bool,
// либо значение флага flagVal, если переменная не задана.
func GetEnvOrFlagBool(envKey string, flagVal bool) bool {
	if v := os.Getenv(envKey); v != "" {
		return v == "true"
	}
	return flagVal
}

// GetEnvOrFlagUint64 возвращает значение переменной окружения envKey как uint64,
// либо значение флага flagVal, если переменная не задана или некорректна.
func GetEnvOrFlagUint64(envKey string, flagVal uint64) uint64 {
	if v := os.Getenv(envKey); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return flagVal
}
