package models

import "fmt"

// Division is the top of the location hierarchy.
type Division struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	Name       string `json:"name"`
	Region     string `json:"region,omitempty"`
}

// Depot belongs to one Division.
type Depot struct {
	ID         int       `json:"id"`
	DocumentID string    `json:"documentId,omitempty"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	Address    string    `json:"address,omitempty"`
	Division   *Division `json:"division,omitempty"`
}

// BusStation belongs to one Depot. Latitude and Longitude are normalized
// signed decimal-degree strings.
type BusStation struct {
	ID         int       `json:"id"`
	DocumentID string    `json:"documentId,omitempty"`
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Latitude   *string   `json:"latitude,omitempty"`
	Longitude  *string   `json:"longitude,omitempty"`
	Division   *Division `json:"division,omitempty"`
	Depot      *Depot    `json:"depot,omitempty"`
}

// BusStand belongs to one BusStation. Name holds the disambiguated display name.
type BusStand struct {
	ID         int         `json:"id"`
	DocumentID string      `json:"documentId,omitempty"`
	Name       string      `json:"name"`
	Division   *Division   `json:"division,omitempty"`
	Depot      *Depot      `json:"depot,omitempty"`
	BusStation *BusStation `json:"bus_station,omitempty"`
}

// BusStandDisplayName keeps stand names unique across depots and stations
// that share a short stand name.
func BusStandDisplayName(shortName, depotName, stationName string) string {
	return fmt.Sprintf("%s (%s - %s)", shortName, depotName, stationName)
}

// Create payloads, relations are referenced by id.

type DivisionInput struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

type DepotInput struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Address  string `json:"address,omitempty"`
	Division int    `json:"division"`
}

type BusStationInput struct {
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
	Division  int     `json:"division"`
	Depot     int     `json:"depot"`
}

type BusStandInput struct {
	Name       string `json:"name"`
	Division   int    `json:"division"`
	Depot      int    `json:"depot"`
	BusStation int    `json:"bus_station"`
}
