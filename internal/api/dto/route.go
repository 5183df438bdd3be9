package dto

import "time"

type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type RouteResponse struct {
	Stops      []LocationResponse `json:"stops"`
	TotalMiles float64            `json:"total_miles"`
	TempRange  TempRange          `json:"temp_range"`
	UpdatedAt  *time.Time         `json:"updated_at"`
}

// OptimizeRequest may be omitted entirely; a missing radius uses the default.
type OptimizeRequest struct {
	Radius *float64 `json:"radius"`
}

type OptimizeResponse struct {
	Route         RouteResponse `json:"route"`
	Attempts      int           `json:"attempts"`
	Radius        float64       `json:"radius"`
	Refined       bool          `json:"refined"`
	SearchedMiles float64       `json:"searched_miles"`
	ImprovedMiles float64       `json:"improved_miles"`
}

type SwapRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type TempRangeRequest struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type ItineraryStopResponse struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Date    string  `json:"date"`
	TempC   float64 `json:"temp_c"`
	TempF   float64 `json:"temp_f"`
	InRange bool    `json:"in_range"`
}

type ItineraryLegResponse struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Month string  `json:"month"`
	Miles float64 `json:"miles"`
}

type ItineraryResponse struct {
	Stops      []ItineraryStopResponse `json:"stops"`
	Legs       []ItineraryLegResponse  `json:"legs"`
	TotalMiles float64                 `json:"total_miles"`
	TempRange  TempRange               `json:"temp_range"`
}
