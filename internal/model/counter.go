package models

// CounterRecord представляет счётчик просмотров профиля для сериализации в JSON.
//
// Одна и та же структура используется на всех границах хранилища:
// строка журнала, элемент снапшота и тело ответа эндпоинта /value.
//
// Поля:
//   - ID: ключ профиля (например, имя пользователя)
//   - Views: текущее количество просмотров
type CounterRecord struct {
	ID    string `json:"id"`
	Views int64  `json:"views"`
}
