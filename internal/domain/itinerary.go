package domain

import (
	"math"
	"time"
)

// fallbackTempC is used when a location has no reading for the requested day.
const fallbackTempC = 10.0

// Represents a single scheduled stop of the trip.
type ItineraryStop struct {
	Index   int
	Name    string
	Lat     float64
	Lon     float64
	Date    time.Time
	TempC   float64
	TempF   float64
	InRange bool
}

// Represents travel between two consecutive stops. Month is the departure month.
type ItineraryLeg struct {
	From  string
	To    string
	Month time.Month
	Miles float64
}

type Itinerary struct {
	Stops      []ItineraryStop
	Legs       []ItineraryLeg
	TotalMiles float64
}

// Travel season: stops are spread evenly from 1 April to 1 December of Year.
type Season struct {
	Year int
}

func (s Season) start() time.Time { return time.Date(s.Year, time.April, 1, 0, 0, 0, 0, time.UTC) }
func (s Season) end() time.Time   { return time.Date(s.Year, time.December, 1, 0, 0, 0, 0, time.UTC) }

// intervalDays is the whole number of days between consecutive stops.
func (s Season) intervalDays(stops int) int {
	totalDays := int(s.end().Sub(s.start()).Hours() / 24)
	gaps := stops - 1
	if gaps < 1 {
		gaps = 1
	}
	return totalDays / gaps
}

// DateFor returns the planned arrival date of stop index out of stops.
func (s Season) DateFor(index, stops int) time.Time {
	return s.start().AddDate(0, 0, index*s.intervalDays(stops))
}

func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// TemperatureOn returns the Celsius reading for the given date.
// The series is indexed by day-of-year modulo 365 (1 January is index 1).
func (l Location) TemperatureOn(date time.Time) float64 {
	idx := date.YearDay() % DaysPerYear
	// Only a missing or NaN reading falls back; a real 0 °C reading is kept.
	if idx >= len(l.Temperatures) || math.IsNaN(l.Temperatures[idx]) {
		return fallbackTempC
	}
	return l.Temperatures[idx]
}

// BuildItinerary schedules every stop of the route across the season and
// annotates it with the expected temperature.
func BuildItinerary(r Route, season Season, band TempRange) Itinerary {
	it := Itinerary{
		Stops: make([]ItineraryStop, 0, len(r)),
		Legs:  make([]ItineraryLeg, 0, max(len(r)-1, 0)),
	}

	for i, loc := range r {
		date := season.DateFor(i, len(r))
		c := loc.TemperatureOn(date)
		f := CelsiusToFahrenheit(c)
		it.Stops = append(it.Stops, ItineraryStop{
			Index:   i,
			Name:    loc.Name,
			Lat:     loc.Lat,
			Lon:     loc.Lon,
			Date:    date,
			TempC:   c,
			TempF:   f,
			InRange: band.Contains(f),
		})

		if i == 0 {
			continue
		}
		miles := Distance(r[i-1], loc)
		it.TotalMiles += miles
		it.Legs = append(it.Legs, ItineraryLeg{
			From:  r[i-1].Name,
			To:    loc.Name,
			Month: it.Stops[i-1].Date.Month(),
			Miles: miles,
		})
	}

	return it
}
