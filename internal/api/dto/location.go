package dto

type LocationResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}
