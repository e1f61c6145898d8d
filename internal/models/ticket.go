package models

import (
	"strings"
	"time"
)

// DefaultDomesticCountry — страна по умолчанию для геозапросов,
// когда страна в обращении не заполнена.
const DefaultDomesticCountry = "Казахстан"

// kzIdentifiers — известные города и области Казахстана (кириллица и
// транслит). Используются чтобы определить «домашнее» обращение, когда
// страна не заполнена. Проверка по подстроке: "mangystau obl." содержит
// "mangystau".
var kzIdentifiers = []string{
	// Крупные города
	"алматы", "almaty", "астана", "astana", "нур-султан", "nur-sultan",
	"шымкент", "shymkent", "караганда", "karaganda", "qaraghandy",
	"актобе", "aktobe", "aqtobe", "тараз", "taraz", "павлодар", "pavlodar",
	"усть-каменогорск", "ust-kamenogorsk", "oskemen", "семей", "semey",
	"атырау", "atyrau", "костанай", "kostanay", "кызылорда", "kyzylorda",
	"актау", "aktau", "aqtau", "уральск", "uralsk", "oral",
	"петропавловск", "petropavlovsk", "petropavl", "туркестан", "turkestan",
	"кокшетау", "kokshetau", "талдыкорган", "taldykorgan", "жезказган", "zhezkazgan",
	"экибастуз", "ekibastuz", "темиртау", "temirtau", "рудный", "rudny",

	// Области
	"акмолинская", "akmola", "алматинская", "almaty obl", "атырауская", "atyrau obl",
	"актюбинская", "aktobe obl", "жамбылская", "zhambyl", "карагандинская", "karaganda obl",
	"костанайская", "kostanay obl", "кызылординская", "kyzylorda obl",
	"мангистауская", "mangystau", "mangystau obl.", "павлодарская", "pavlodar obl",
	"северо-казахстанская", "sko", "туркестанская", "turkestan obl",
	"восточно-казахстанская", "vko", "западная", "zko", "абайская", "abai",
	"улытауская", "ulytau", "жетысуская", "zhetysu",
}

// Ticket — обращение клиента, поступившее в нерабочее время
type Ticket struct {
	ID          int64
	GUID        string
	Gender      string
	BirthDate   *time.Time
	Description string
	Attachments string
	Segment     Segment
	Country     string
	Region      string
	City        string
	Street      string
	Building    string
	Location    *GeoPoint
	GeoStatus   GeoStatus
	CreatedAt   time.Time
}

// BuildAddressString собирает строку для геокодера в формате
// "Казахстан, {область}, {город}, {улица дом}". Улица и дом склеиваются
// в одну часть — так Nominatim находит адрес точнее.
func (t *Ticket) BuildAddressString() string {
	streetPart := strings.TrimSpace(strings.Join(nonEmpty(t.Street, t.Building), " "))

	country := strings.TrimSpace(t.Country)
	if country == "" {
		country = DefaultDomesticCountry
	}

	parts := nonEmpty(country, t.Region, t.City, streetPart)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts, ", ")
}

// IsAddressKnown сообщает, есть ли у обращения разрешённые координаты
func (t *Ticket) IsAddressKnown() bool {
	return t.Location != nil
}

// IsDomestic определяет «домашнее» обращение: страна равна Казахстану,
// либо, если страна не заполнена, город/область совпадает с известным
// казахстанским идентификатором.
func (t *Ticket) IsDomestic() bool {
	if c := strings.TrimSpace(t.Country); c != "" {
		return strings.EqualFold(c, DefaultDomesticCountry)
	}

	city := strings.ToLower(strings.TrimSpace(t.City))
	region := strings.ToLower(strings.TrimSpace(t.Region))
	for _, id := range kzIdentifiers {
		if (city != "" && strings.Contains(city, id)) ||
			(region != "" && strings.Contains(region, id)) {
			return true
		}
	}
	return false
}

// RequiresVIPHandling — VIP и Priority сегменты обслуживаются менеджерами
// с навыком "VIP"
func (t *Ticket) RequiresVIPHandling() bool {
	return t.Segment == SegmentVIP || t.Segment == SegmentPriority
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
