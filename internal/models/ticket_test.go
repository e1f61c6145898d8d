package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAddressString(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   string
	}{
		{
			name: "full address joins street and building",
			ticket: Ticket{
				Country: "Казахстан", Region: "Алматинская", City: "Алматы",
				Street: "ул. Абая", Building: "10",
			},
			want: "Казахстан, Алматинская, Алматы, ул. Абая 10",
		},
		{
			name:   "missing country defaults to Kazakhstan",
			ticket: Ticket{City: "Астана"},
			want:   "Казахстан, Астана",
		},
		{
			name:   "country alone is not an address",
			ticket: Ticket{Country: "Казахстан"},
			want:   "",
		},
		{
			name:   "blank components are skipped",
			ticket: Ticket{Country: "  ", City: " Тараз ", Street: ""},
			want:   "Казахстан, Тараз",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ticket.BuildAddressString())
		})
	}
}

func TestIsDomestic(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{name: "explicit Kazakhstan", ticket: Ticket{Country: "Казахстан"}, want: true},
		{name: "case insensitive country", ticket: Ticket{Country: "казахстан"}, want: true},
		{name: "foreign country", ticket: Ticket{Country: "Россия", City: "Алматы"}, want: false},
		{name: "no country but known city", ticket: Ticket{City: "Алматы"}, want: true},
		{name: "no country but translit city", ticket: Ticket{City: "Almaty"}, want: true},
		{name: "no country but known region", ticket: Ticket{Region: "Мангистауская обл."}, want: true},
		{name: "nothing known", ticket: Ticket{City: "Минск"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ticket.IsDomestic())
		})
	}
}

func TestRequiresVIPHandling(t *testing.T) {
	assert.False(t, (&Ticket{Segment: SegmentMass}).RequiresVIPHandling())
	assert.True(t, (&Ticket{Segment: SegmentVIP}).RequiresVIPHandling())
	assert.True(t, (&Ticket{Segment: SegmentPriority}).RequiresVIPHandling())
}

func TestParseEnumsFallBackToDefaults(t *testing.T) {
	assert.Equal(t, TypeConsultation, ParseTicketType("что-то неизвестное"))
	assert.Equal(t, SentimentNeutral, ParseSentiment(""))
	assert.Equal(t, LangRU, ParseLanguage("DE"))
	assert.Equal(t, SegmentMass, ParseSegment("Gold"))
	assert.Equal(t, PositionSpecialist, ParsePosition("Директор"))
	assert.Equal(t, GeoPending, ParseGeoStatus("unknown"))
}
