package geocoder

import (
	"strings"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Таблицы центроидов — последний рубеж геокодирования, когда внешний API
// не знает адрес. Сравнение регистронезависимое, по подстроке.

// cityCentroids — крупные города Казахстана
var cityCentroids = map[string]models.GeoPoint{
	"алматы":           {Latitude: 43.238949, Longitude: 76.945465},
	"астана":           {Latitude: 51.128207, Longitude: 71.430411},
	"караганда":        {Latitude: 49.806406, Longitude: 73.085485},
	"шымкент":          {Latitude: 42.315514, Longitude: 69.596428},
	"актобе":           {Latitude: 50.283935, Longitude: 57.166978},
	"тараз":            {Latitude: 42.901183, Longitude: 71.378309},
	"павлодар":         {Latitude: 52.287430, Longitude: 76.967454},
	"усть-каменогорск": {Latitude: 49.948759, Longitude: 82.627808},
	"семей":            {Latitude: 50.411137, Longitude: 80.227607},
	"атырау":           {Latitude: 47.106700, Longitude: 51.903538},
	"костанай":         {Latitude: 53.214773, Longitude: 63.631557},
	"кызылорда":        {Latitude: 44.842614, Longitude: 65.502530},
	"актау":            {Latitude: 43.635100, Longitude: 51.169300},
	"петропавловск":    {Latitude: 54.865559, Longitude: 69.135552},
	"туркестан":        {Latitude: 43.297222, Longitude: 68.241389},
	"кокшетау":         {Latitude: 53.283333, Longitude: 69.383333},
	"талдыкорган":      {Latitude: 45.015833, Longitude: 78.373611},
	"жезказган":        {Latitude: 47.783333, Longitude: 67.766667},
	"экибастуз":        {Latitude: 51.723667, Longitude: 75.322278},
	"темиртау":         {Latitude: 50.054722, Longitude: 72.964722},
	"нур-султан":       {Latitude: 51.128207, Longitude: 71.430411}, // прежнее название Астаны
}

// regionCentroids — области, привязанные к центроиду областного центра.
// Полезно для сёл, которых нет в результатах поиска OSM.
var regionCentroids = map[string]models.GeoPoint{
	"акмолинская":          cityCentroids["кокшетау"],
	"алматинская":          cityCentroids["алматы"],
	"атырауская":           cityCentroids["атырау"],
	"актюбинская":          cityCentroids["актобе"],
	"жамбылская":           cityCentroids["тараз"],
	"карагандинская":       cityCentroids["караганда"],
	"костанайская":         cityCentroids["костанай"],
	"кызылординская":       cityCentroids["кызылорда"],
	"мангистауская":        cityCentroids["актау"],
	"павлодарская":         cityCentroids["павлодар"],
	"северо-казахстанская": cityCentroids["петропавловск"],
	"туркестанская":        cityCentroids["туркестан"],
	"восточно-казахстанская": cityCentroids["усть-каменогорск"],
}

// CityCentroid ищет название города как подстроку адреса
func CityCentroid(address string) *models.GeoPoint {
	lowered := strings.ToLower(address)
	for city, point := range cityCentroids {
		if strings.Contains(lowered, city) {
			p := point
			return &p
		}
	}
	return nil
}

// RegionCentroid ищет название области как подстроку адреса
func RegionCentroid(address string) *models.GeoPoint {
	lowered := strings.ToLower(address)
	for region, point := range regionCentroids {
		if strings.Contains(lowered, region) {
			p := point
			return &p
		}
	}
	return nil
}
