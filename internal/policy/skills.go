// Package policy содержит чистые функции распределения: требования к
// навыкам, выбор отделения и round-robin между кандидатами. Пакет не
// обращается к БД и внешним сервисам — все решения детерминированы.
package policy

import "github.com/freedom-fire/ticketrouter/internal/models"

// SkillRequirement — что обязан иметь менеджер, чтобы взять обращение
type SkillRequirement struct {
	RequiredSkills map[string]struct{}
	MinPosition    models.Position // пустая строка = любая должность
}

// DetermineRequiredSkills выводит требования из атрибутов обращения.
//
// Правила (аддитивные — VIP-обращение на казахском требует и "VIP", и "KZ"):
//  1. Сегмент VIP/Priority → навык "VIP".
//  2. Тип «Смена данных» → только главный специалист.
//  3. Язык KZ → навык "KZ"; язык ENG → навык "ENG"; RU — без навыка.
func DetermineRequiredSkills(
	segment models.Segment,
	ticketType models.TicketType,
	language models.Language,
) SkillRequirement {
	skills := make(map[string]struct{})
	var minPosition models.Position

	if segment == models.SegmentVIP || segment == models.SegmentPriority {
		skills["VIP"] = struct{}{}
	}

	if ticketType == models.TypeDataChange {
		minPosition = models.PositionChiefSpecialist
	}

	switch language {
	case models.LangKZ:
		skills["KZ"] = struct{}{}
	case models.LangENG:
		skills["ENG"] = struct{}{}
	}

	return SkillRequirement{
		RequiredSkills: skills,
		MinPosition:    minPosition,
	}
}

// RequiresVIP сообщает, входит ли "VIP" в требуемые навыки
func (r SkillRequirement) RequiresVIP() bool {
	_, ok := r.RequiredSkills["VIP"]
	return ok
}

// RequiresChief сообщает, требуется ли главный специалист
func (r SkillRequirement) RequiresChief() bool {
	return r.MinPosition == models.PositionChiefSpecialist
}

// ManagerSatisfies проверяет, удовлетворяет ли менеджер требованиям:
// все требуемые навыки присутствуют и должность не ниже требуемой.
func ManagerSatisfies(
	skills map[string]struct{},
	position models.Position,
	requirement SkillRequirement,
) bool {
	for code := range requirement.RequiredSkills {
		if _, ok := skills[code]; !ok {
			return false
		}
	}

	if requirement.RequiresChief() && position != models.PositionChiefSpecialist {
		return false
	}

	return true
}
