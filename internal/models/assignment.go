package models

import "time"

// Assignment — итог маршрутизации: одно обращение → один менеджер в одном
// отделении. Запись неизменяема после создания.
type Assignment struct {
	ID           int64
	TicketID     int64
	ManagerID    int64
	OfficeID     int64
	DistanceKm   *float64 // nil при fallback-распределении
	Reason       string
	FallbackUsed bool
	AssignedAt   time.Time
}

// Analysis — результат AI-классификации обращения (одна запись на обращение)
type Analysis struct {
	ID            int64
	TicketID      int64
	TicketType    TicketType
	Sentiment     Sentiment
	PriorityScore int // 1..10
	Language      Language
	Summary       string
	ModelTag      string
	ProcessedAt   time.Time
}
