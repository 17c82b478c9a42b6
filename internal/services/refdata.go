package services

import (
	"context"
	"fmt"

	"cctv-survey/internal/models"
	"cctv-survey/internal/strapi"

	"go.uber.org/zap"
)

// Location collections on the backend.
const (
	CollectionDivisions   = "divisions"
	CollectionDepots      = "depots"
	CollectionBusStations = "bus-stations"
	CollectionBusStands   = "bus-stands"
	CollectionBOQs        = "boqs"
)

// ReferenceData is the request-scoped bundle of location levels and
// equipment catalogs that row mapping resolves against.
type ReferenceData struct {
	Divisions   []models.Division
	Depots      []models.Depot
	BusStations []models.BusStation
	BusStands   []models.BusStand
	Catalogs    map[models.Category][]models.CatalogItem
}

// LocationCounts is the size of each hierarchy level.
type LocationCounts struct {
	Divisions   int `json:"divisions"`
	Depots      int `json:"depots"`
	BusStations int `json:"bus_stations"`
	BusStands   int `json:"bus_stands"`
}

func (r *ReferenceData) Counts() LocationCounts {
	return LocationCounts{
		Divisions:   len(r.Divisions),
		Depots:      len(r.Depots),
		BusStations: len(r.BusStations),
		BusStands:   len(r.BusStands),
	}
}

type CatalogService struct {
	client   *strapi.Client
	pageSize int
	logr     *zap.Logger
}

func NewCatalogService(client *strapi.Client, pageSize int, logr *zap.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &CatalogService{client: client, pageSize: pageSize, logr: logr}
}

// Load fetches every location level and all eleven catalogs. Any failure
// is fatal to the import that asked for it.
func (s *CatalogService) Load(ctx context.Context) (*ReferenceData, error) {
	refs, err := s.LoadLocations(ctx)
	if err != nil {
		return nil, err
	}

	refs.Catalogs = make(map[models.Category][]models.CatalogItem, len(models.Categories))
	for _, c := range models.Categories {
		items, err := s.LoadCatalog(ctx, c)
		if err != nil {
			return nil, err
		}
		refs.Catalogs[c] = items
	}

	s.logr.Debug("reference data loaded",
		zap.Int("divisions", len(refs.Divisions)),
		zap.Int("depots", len(refs.Depots)),
		zap.Int("bus_stations", len(refs.BusStations)),
		zap.Int("bus_stands", len(refs.BusStands)))

	return refs, nil
}

// LoadLocations fetches the four hierarchy levels with their parents populated.
func (s *CatalogService) LoadLocations(ctx context.Context) (*ReferenceData, error) {
	refs := &ReferenceData{}

	if _, err := s.client.List(ctx, CollectionDivisions, strapi.Query{PageSize: s.pageSize}, &refs.Divisions); err != nil {
		return nil, fmt.Errorf("load divisions: %w", err)
	}
	if _, err := s.client.List(ctx, CollectionDepots, strapi.Query{
		PageSize: s.pageSize,
		Populate: []string{"division"},
	}, &refs.Depots); err != nil {
		return nil, fmt.Errorf("load depots: %w", err)
	}
	if _, err := s.client.List(ctx, CollectionBusStations, strapi.Query{
		PageSize: s.pageSize,
		Populate: []string{"division", "depot"},
	}, &refs.BusStations); err != nil {
		return nil, fmt.Errorf("load bus stations: %w", err)
	}
	if _, err := s.client.List(ctx, CollectionBusStands, strapi.Query{
		PageSize: s.pageSize,
		Populate: []string{"division", "depot", "bus_station"},
	}, &refs.BusStands); err != nil {
		return nil, fmt.Errorf("load bus stands: %w", err)
	}

	return refs, nil
}

func (s *CatalogService) LoadCatalog(ctx context.Context, c models.Category) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if _, err := s.client.List(ctx, c.Collection(), strapi.Query{PageSize: s.pageSize}, &items); err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", c, err)
	}
	return items, nil
}
