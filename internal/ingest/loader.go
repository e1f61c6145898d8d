package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// OfficeRow — строка выгрузки отделений
type OfficeRow struct {
	Name      string
	Address   string
	Latitude  *float64
	Longitude *float64
}

// ManagerRow — строка выгрузки менеджеров; отделение задано именем
type ManagerRow struct {
	Name        string
	Position    string
	OfficeName  string
	Skills      []string
	CurrentLoad int
}

// readCSV читает файл, определяет разделитель (экспорт Excel RU часто
// использует ';'), нормализует заголовки и возвращает строки-словари.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimPrefix(string(raw), "\ufeff")
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = NormalizeColumnName(col)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = CleanString(record[i])
			}
		}
		rows = append(rows, row)
	}

	log.Printf("📄 Загружено %d строк из %s (колонки: %v)", len(rows), path, header)
	return rows, nil
}

// sniffDelimiter выбирает разделитель по первой строке файла
func sniffDelimiter(content string) rune {
	firstLine, _, _ := strings.Cut(content, "\n")
	best, bestCount := ',', strings.Count(firstLine, ",")
	for _, d := range []rune{';', '\t'} {
		if c := strings.Count(firstLine, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

// firstOf возвращает первое непустое значение из перечисленных колонок
func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

// LoadOffices читает выгрузку отделений (business_units.csv использует
// колонки «Офис» / «Адрес»)
func LoadOffices(path string) ([]OfficeRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	offices := make([]OfficeRow, 0, len(rows))
	for _, row := range rows {
		office := OfficeRow{
			Name:    firstOf(row, "офис", "название", "name"),
			Address: firstOf(row, "адрес", "address"),
		}
		if f, ok := parseFloat(firstOf(row, "широта", "latitude")); ok {
			office.Latitude = &f
		}
		if f, ok := parseFloat(firstOf(row, "долгота", "longitude")); ok {
			office.Longitude = &f
		}
		offices = append(offices, office)
	}
	log.Printf("🏢 Распознано %d отделений", len(offices))
	return offices, nil
}

// LoadManagers читает выгрузку менеджеров
func LoadManagers(path string) ([]ManagerRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	managers := make([]ManagerRow, 0, len(rows))
	for _, row := range rows {
		load := 0
		if f, ok := parseFloat(firstOf(row, "количество_обращений_в_работе", "current_load", "load")); ok {
			load = int(f)
		}
		managers = append(managers, ManagerRow{
			Name:        firstOf(row, "фио", "имя", "name"),
			Position:    firstOf(row, "должность", "position"),
			OfficeName:  firstOf(row, "филиал", "офис", "филиал_офис", "office"),
			Skills:      ParseSkills(firstOf(row, "навыки", "skills")),
			CurrentLoad: load,
		})
	}
	log.Printf("👥 Распознано %d менеджеров", len(managers))
	return managers, nil
}

// LoadTickets читает выгрузку обращений; строки без GUID получают новый
// uuid, чтобы не терять обращение.
func LoadTickets(path string) ([]*models.Ticket, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	tickets := make([]*models.Ticket, 0, len(rows))
	for _, row := range rows {
		guid := firstOf(row, "guid_клиента", "guid", "id", "№")
		if guid == "" {
			guid = uuid.New().String()
		}

		segment := firstOf(row, "сегмент_клиента", "сегмент", "segment")
		if segment == "" {
			segment = string(models.SegmentMass)
		}

		ticket := &models.Ticket{
			GUID:        guid,
			Gender:      firstOf(row, "пол_клиента", "пол", "gender"),
			Description: firstOf(row, "описание", "description"),
			Attachments: firstOf(row, "вложения", "attachments"),
			Segment:     models.ParseSegment(segment),
			Country:     firstOf(row, "страна", "country"),
			Region:      firstOf(row, "область", "регион", "region"),
			City:        firstOf(row, "населённый_пункт", "населенный_пункт", "город", "city"),
			Street:      firstOf(row, "улица", "street"),
			Building:    NormalizeBuilding(firstOf(row, "дом", "building")),
			GeoStatus:   models.GeoPending,
		}
		if bd := firstOf(row, "дата_рождения", "birth_date"); bd != "" {
			if parsed, err := parseDate(bd); err == nil {
				ticket.BirthDate = &parsed
			}
		}
		tickets = append(tickets, ticket)
	}
	log.Printf("🎫 Распознано %d обращений", len(tickets))
	return tickets, nil
}

// parseDate принимает даты в ISO и российском форматах
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02.01.2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}
