package policy

import (
	"errors"
	"sort"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// ErrNoCandidates — round-robin по пустому списку: ошибка программиста
var ErrNoCandidates = errors.New("cannot pick from an empty candidate list")

// PickNext — детерминированный round-robin по отсортированным кандидатам.
//
//  1. Сортируем по (current_load ASC, id ASC) — стабильный порядок.
//  2. Индекс = counter mod len.
//  3. Возвращаем выбранного и счётчик+1.
func PickNext(candidates []*models.Manager, counter int64) (*models.Manager, int64, error) {
	if len(candidates) == 0 {
		return nil, counter, ErrNoCandidates
	}

	sorted := SortByLoad(candidates)
	chosen := sorted[counter%int64(len(sorted))]
	return chosen, counter + 1, nil
}

// SortByLoad возвращает копию списка, отсортированную по
// (current_load ASC, id ASC). Исходный срез не меняется.
func SortByLoad(managers []*models.Manager) []*models.Manager {
	sorted := make([]*models.Manager, len(managers))
	copy(sorted, managers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CurrentLoad != sorted[j].CurrentLoad {
			return sorted[i].CurrentLoad < sorted[j].CurrentLoad
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
