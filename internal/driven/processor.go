// Package driven — оркестрация конвейера распределения: классификация →
// геокодирование → выбор отделения → фильтр по навыкам → round-robin →
// долговечная запись назначения.
package driven

import (
	"context"
	"fmt"
	"log"

	"github.com/freedom-fire/ticketrouter/internal/geocoder"
	"github.com/freedom-fire/ticketrouter/internal/llm"
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/policy"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

// Ключ счётчика fallback-распределения 50/50 между хабами
const fallbackCounterKey = "office-fallback-50-50"

// ProcessingResult — итог обработки одного обращения
type ProcessingResult struct {
	TicketID        int64    `json:"ticket_id"`
	TicketGUID      string   `json:"ticket_guid"`
	AssignedManager string   `json:"assigned_manager,omitempty"`
	AssignedOffice  string   `json:"assigned_office,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	FallbackUsed    bool     `json:"fallback_used"`
	Error           string   `json:"error,omitempty"`
}

// TicketProcessor прогоняет обращение через весь конвейер распределения.
// Ошибки не всплывают наверх — все они, включая сбои хранилища,
// записываются в ProcessingResult.
type TicketProcessor struct {
	classifier llm.Classifier
	geocoder   geocoder.Geocoder
	store      storage.Backend
}

// NewTicketProcessor создаёт конвейер из портов
func NewTicketProcessor(
	classifier llm.Classifier,
	geo geocoder.Geocoder,
	store storage.Backend,
) *TicketProcessor {
	return &TicketProcessor{
		classifier: classifier,
		geocoder:   geo,
		store:      store,
	}
}

// Process обрабатывает одно обращение от классификации до записи назначения.
//
// Шаги:
//  1. Классификация (аналитика пишется до любого назначения).
//  2. Геокодирование адреса клиента.
//  3. Выбор отделения: ближайшее либо fallback 50/50.
//  4. Фильтр менеджеров по навыкам/должности с расширением поиска.
//  5. Шорт-лист: два наименее загруженных.
//  6. Продвижение счётчика + round-robin.
//  7. Атомарная запись: счётчик, назначение, инкремент нагрузки.
//
// Повторный вызов для уже назначенного обращения возвращает сохранённый
// результат и ничего не пишет.
func (p *TicketProcessor) Process(ctx context.Context, ticket *models.Ticket) ProcessingResult {
	result := ProcessingResult{TicketID: ticket.ID, TicketGUID: ticket.GUID}

	// Идемпотентность: назначение уже существует
	if existing, err := p.store.GetAssignmentByTicket(ctx, ticket.ID); err != nil {
		result.Error = err.Error()
		return result
	} else if existing != nil {
		return p.existingResult(ctx, ticket, existing)
	}

	// Шаг 1: классификация. Аналитика может уже существовать, если прошлый
	// запуск оборвался между её записью и назначением — тогда переиспользуем.
	analysis, err := p.store.GetAnalysisByTicket(ctx, ticket.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if analysis == nil {
		analysis = p.classifier.AnalyzeTicket(ctx, ticket.Description, ticket.Attachments)
		analysis.TicketID = ticket.ID
		if err := p.store.SaveAnalysis(ctx, analysis); err != nil {
			result.Error = err.Error()
			return result
		}
	}
	log.Printf("🔵 Обращение %s: тип=%s, язык=%s, приоритет=%d",
		ticket.GUID, analysis.TicketType, analysis.Language, analysis.PriorityScore)

	// Спам не распределяется, но учитывается в аналитике
	if analysis.TicketType == models.TypeSpam {
		log.Printf("⚪️ Обращение %s — спам, пропускаем распределение", ticket.GUID)
		return result
	}

	// Шаг 2: геокодирование
	if !ticket.IsAddressKnown() {
		if err := p.resolveLocation(ctx, ticket); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	// Шаг 3: выбор отделения
	offices, err := p.store.GetAllOffices(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var officeSel policy.OfficeSelection
	if ticket.IsAddressKnown() {
		officeSel, err = policy.SelectNearestOffice(*ticket.Location, offices)
	} else {
		var fallbackCounter int64
		fallbackCounter, err = p.store.AdvanceCounter(ctx, fallbackCounterKey)
		if err == nil {
			officeSel, err = policy.SelectFallbackOffice(fallbackCounter, offices)
		}
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.FallbackUsed = officeSel.FallbackUsed
	log.Printf("🏢 Обращение %s: отделение %s (%s)", ticket.GUID, officeSel.Office.Name, officeSel.Reason)

	// Шаг 4: фильтр кандидатов
	requirement := policy.DetermineRequiredSkills(ticket.Segment, analysis.TicketType, analysis.Language)
	eligible, err := p.findEligible(ctx, ticket, officeSel.Office.ID, requirement)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(eligible) == 0 {
		result.Error = "No eligible managers found"
		return result
	}

	// Шаг 5: шорт-лист — два наименее загруженных кандидата, чтобы счётчик
	// не гулял по всему отделу
	shortlist := policy.SortByLoad(eligible)
	if len(shortlist) > 2 {
		shortlist = shortlist[:2]
	}

	// Шаги 6-7: продвижение счётчика, выбор и запись — одна транзакция,
	// иначе счётчик и вставка могут разъехаться
	rrKey := buildRRKey(officeSel.Office.ID, requirement, analysis)

	var chosen *models.Manager
	err = p.store.InTx(ctx, func(tx storage.Repository) error {
		counter, err := tx.AdvanceCounter(ctx, rrKey)
		if err != nil {
			return err
		}

		chosen, _, err = policy.PickNext(shortlist, counter)
		if err != nil {
			return err
		}

		assignment := &models.Assignment{
			TicketID:     ticket.ID,
			ManagerID:    chosen.ID,
			OfficeID:     officeSel.Office.ID,
			DistanceKm:   officeSel.DistanceKm,
			Reason:       officeSel.Reason,
			FallbackUsed: officeSel.FallbackUsed,
		}
		if err := tx.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
		return tx.IncrementManagerLoad(ctx, chosen.ID)
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.AssignedManager = chosen.Name
	result.AssignedOffice = officeSel.Office.Name
	result.DistanceKm = officeSel.DistanceKm

	log.Printf("✅ Обращение %s → %s (отделение: %s)", ticket.GUID, chosen.Name, officeSel.Office.Name)
	return result
}

// resolveLocation — шаг 2: определяем координаты клиента и статус геокода
func (p *TicketProcessor) resolveLocation(ctx context.Context, ticket *models.Ticket) error {
	addressStr := ticket.BuildAddressString()

	switch {
	case ticket.IsDomestic() && addressStr != "":
		if point := p.geocoder.Geocode(ctx, addressStr); point != nil {
			ticket.Location = point
			ticket.GeoStatus = models.GeoResolved
		} else {
			ticket.GeoStatus = models.GeoFailed
		}
	case !ticket.IsDomestic() && ticket.Country != "":
		ticket.GeoStatus = models.GeoAbroad
	default:
		ticket.GeoStatus = models.GeoFailed
	}

	return p.store.UpdateTicketGeo(ctx, ticket)
}

// findEligible — шаг 4 с расширением поиска: отделение → все менеджеры →
// только должность (или вообще все, если должность не требуется).
func (p *TicketProcessor) findEligible(
	ctx context.Context,
	ticket *models.Ticket,
	officeID int64,
	requirement policy.SkillRequirement,
) ([]*models.Manager, error) {
	officeManagers, err := p.store.GetManagersByOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}
	eligible := filterManagers(officeManagers, requirement)
	if len(eligible) > 0 {
		return eligible, nil
	}

	log.Printf("⚠️ Обращение %s: в отделении нет подходящих менеджеров, расширяем поиск", ticket.GUID)
	allManagers, err := p.store.GetAllManagers(ctx)
	if err != nil {
		return nil, err
	}
	eligible = filterManagers(allManagers, requirement)
	if len(eligible) > 0 {
		return eligible, nil
	}

	// Последний рубеж: ослабляем навыки, оставляем только требование к должности
	log.Printf("⚠️ Обращение %s: нет менеджеров с нужными навыками, оставляем только должность", ticket.GUID)
	if requirement.RequiresChief() {
		var chiefs []*models.Manager
		for _, m := range allManagers {
			if m.IsChiefSpecialist() {
				chiefs = append(chiefs, m)
			}
		}
		return chiefs, nil
	}
	return allManagers, nil
}

func filterManagers(managers []*models.Manager, requirement policy.SkillRequirement) []*models.Manager {
	var eligible []*models.Manager
	for _, m := range managers {
		if policy.ManagerSatisfies(m.Skills, m.Position, requirement) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

// buildRRKey кодирует все измерения, которым нужна независимая очередь:
// отделение × VIP × язык × тип × требование главного специалиста.
func buildRRKey(officeID int64, requirement policy.SkillRequirement, analysis *models.Analysis) string {
	vip, chief := 0, 0
	if requirement.RequiresVIP() {
		vip = 1
	}
	if requirement.RequiresChief() {
		chief = 1
	}
	return fmt.Sprintf("office-%d|vip-%d|lang-%s|type-%s|chief-%d",
		officeID, vip, analysis.Language, analysis.TicketType, chief)
}

// existingResult восстанавливает результат из сохранённого назначения
func (p *TicketProcessor) existingResult(
	ctx context.Context,
	ticket *models.Ticket,
	assignment *models.Assignment,
) ProcessingResult {
	result := ProcessingResult{
		TicketID:     ticket.ID,
		TicketGUID:   ticket.GUID,
		DistanceKm:   assignment.DistanceKm,
		FallbackUsed: assignment.FallbackUsed,
	}
	if m, err := p.store.GetManagerByID(ctx, assignment.ManagerID); err == nil && m != nil {
		result.AssignedManager = m.Name
	}
	if o, err := p.store.GetOfficeByID(ctx, assignment.OfficeID); err == nil && o != nil {
		result.AssignedOffice = o.Name
	}
	return result
}
