package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOfficesSemicolonDelimiter(t *testing.T) {
	// Экспорт Excel RU: точка с запятой и BOM
	path := writeFile(t, t.TempDir(), "business_units.csv",
		"\ufeffОфис;Адрес;Широта;Долгота\n"+
			"ЦО Алматы;пр. Аль-Фараби 17;43,2389;76,9455\n"+
			"ЦО Караганда;ул. Бухар Жырау 1;;\n")

	offices, err := LoadOffices(path)
	require.NoError(t, err)
	require.Len(t, offices, 2)

	assert.Equal(t, "ЦО Алматы", offices[0].Name)
	require.NotNil(t, offices[0].Latitude)
	assert.InDelta(t, 43.2389, *offices[0].Latitude, 1e-6)

	assert.Equal(t, "ЦО Караганда", offices[1].Name)
	assert.Nil(t, offices[1].Latitude)
}

func TestLoadManagers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "managers.csv",
		"ФИО,Должность,Филиал,Навыки,Количество обращений в работе\n"+
			"Айгерим Санду,Главный специалист,ЦО Алматы,\"VIP, KZ\",4\n"+
			"Иван Петров,Специалист,ЦО Алматы,,0\n")

	managers, err := LoadManagers(path)
	require.NoError(t, err)
	require.Len(t, managers, 2)

	assert.Equal(t, "Айгерим Санду", managers[0].Name)
	assert.Equal(t, "Главный специалист", managers[0].Position)
	assert.Equal(t, []string{"VIP", "KZ"}, managers[0].Skills)
	assert.Equal(t, 4, managers[0].CurrentLoad)

	assert.Empty(t, managers[1].Skills)
	assert.Zero(t, managers[1].CurrentLoad)
}

func TestLoadTicketsBackfillsGUID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tickets.csv",
		"GUID клиента,Описание,Сегмент клиента,Страна,Населённый пункт,Дом\n"+
			"t-1,Не работает приложение,VIP,Казахстан,Алматы,9.0\n"+
			",Вопрос по тарифам,,Казахстан,Астана,\n")

	tickets, err := LoadTickets(path)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.Equal(t, "t-1", tickets[0].GUID)
	assert.Equal(t, models.SegmentVIP, tickets[0].Segment)
	assert.Equal(t, "9", tickets[0].Building)
	assert.Equal(t, models.GeoPending, tickets[0].GeoStatus)

	// Пустой GUID заменяется новым uuid, пустой сегмент — Mass
	assert.NotEmpty(t, tickets[1].GUID)
	assert.Equal(t, models.SegmentMass, tickets[1].Segment)
}

func TestSeedIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, officesFile,
		"Офис,Адрес,Широта,Долгота\nЦО Алматы,пр. Аль-Фараби 17,43.2389,76.9455\n")
	writeFile(t, dir, managersFile,
		"ФИО,Должность,Филиал,Навыки\nИван Петров,Специалист,ЦО Алматы,VIP\n")
	writeFile(t, dir, ticketsFile,
		"GUID клиента,Описание,Сегмент клиента\nt-1,Вопрос,Mass\n")

	store := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store, dir))
	require.NoError(t, Seed(ctx, store, dir))

	offices, err := store.GetAllOffices(ctx)
	require.NoError(t, err)
	assert.Len(t, offices, 1)

	managers, err := store.GetAllManagers(ctx)
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.True(t, managers[0].HasSkill("VIP"))
	assert.Equal(t, offices[0].ID, managers[0].OfficeID)

	tickets, err := store.GetAllTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestSeedUnknownOfficeFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, officesFile, "Офис,Адрес\nЦО Алматы,адрес\n")
	writeFile(t, dir, managersFile, "ФИО,Должность,Филиал\nИван,Специалист,ЦО Марс\n")
	writeFile(t, dir, ticketsFile, "GUID клиента,Описание\n")

	err := Seed(context.Background(), storage.NewMemoryStore(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown office")
}
