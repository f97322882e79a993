package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSON-экспорт завершенных интервью рядом с базой: удобно забрать результат
// одним файлом, не открывая SQLite.

// SaveExport сохраняет запись интервью в JSON файл
func SaveExport(dir string, record *InterviewRecord) error {
	// Создаем директорию если её нет
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	// Формируем имя файла
	filename := fmt.Sprintf("interview_%s.json", record.ID)
	path := filepath.Join(dir, filename)

	// Сериализуем результат в JSON с отступами
	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации результата: %w", err)
	}

	// Записываем в файл
	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return nil
}

// LoadExport загружает запись интервью из JSON файла
func LoadExport(dir, recordID string) (*InterviewRecord, error) {
	filename := fmt.Sprintf("interview_%s.json", recordID)
	path := filepath.Join(dir, filename)

	// Читаем файл
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	// Десериализуем JSON
	var record InterviewRecord
	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &record, nil
}

// ListExports возвращает список ID всех экспортированных интервью
func ListExports(dir string) ([]string, error) {
	// Проверяем существование директории
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	// Читаем содержимое директории
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", dir, err)
	}

	var results []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "interview_") {
			recordID := strings.TrimSuffix(strings.TrimPrefix(name, "interview_"), ".json")
			results = append(results, recordID)
		}
	}

	return results, nil
}
