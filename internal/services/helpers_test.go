package services

import (
	"testing"
	"time"

	"cctv-survey/internal/models"
	"cctv-survey/internal/strapi"
	"cctv-survey/internal/strapi/strapitest"

	"go.uber.org/zap"
)

type testEnv struct {
	srv      *strapitest.Server
	client   *strapi.Client
	catalogs *CatalogService
	logr     *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := strapitest.New()
	t.Cleanup(srv.Close)
	client := strapi.NewClient(srv.BaseURL(), "test-token", 5*time.Second)
	logr := zap.NewNop()
	return &testEnv{
		srv:      srv,
		client:   client,
		catalogs: NewCatalogService(client, 100, logr),
		logr:     logr,
	}
}

// seeded holds the ids of the Pune fixture hierarchy and catalog.
type seeded struct {
	division, depot, station, stand int
	camera, nvr                     int
}

// seedPune stores one complete hierarchy plus two priced catalog items.
func (e *testEnv) seedPune() seeded {
	var s seeded
	s.division = e.srv.Seed(CollectionDivisions, map[string]any{"name": "Pune", "region": "West"})[0]
	s.depot = e.srv.Seed(CollectionDepots, map[string]any{"name": "Swargate", "code": "SWARG", "division": s.division})[0]
	s.station = e.srv.Seed(CollectionBusStations, map[string]any{
		"name": "Swargate Station", "division": s.division, "depot": s.depot,
	})[0]
	s.stand = e.srv.Seed(CollectionBusStands, map[string]any{
		"name":        "Stand A (Swargate - Swargate Station)",
		"division":    s.division,
		"depot":       s.depot,
		"bus_station": s.station,
	})[0]
	s.camera = e.srv.Seed("cameras", map[string]any{"name": "Dome Camera", "price": 2500})[0]
	s.nvr = e.srv.Seed("nvrs", map[string]any{"name": "NVR 16CH", "price": "15000.50"})[0]
	return s
}

// puneRefs is the in-memory equivalent of seedPune for mapper tests.
func puneRefs() *ReferenceData {
	div := models.Division{ID: 1, Name: "Pune"}
	depot := models.Depot{ID: 2, Name: "Swargate", Division: &div}
	station := models.BusStation{ID: 3, Name: "Swargate Station", Division: &div, Depot: &depot}
	refs := &ReferenceData{
		Divisions:   []models.Division{div, {ID: 10, Name: "Satara"}},
		Depots:      []models.Depot{depot},
		BusStations: []models.BusStation{station},
		BusStands: []models.BusStand{
			{ID: 4, Name: "Stand A (Swargate - Swargate Station)"},
			{ID: 5, Name: "Stand B (Swargate - Swargate Station)"},
		},
		Catalogs: make(map[models.Category][]models.CatalogItem),
	}
	refs.Catalogs[models.CategoryCamera] = []models.CatalogItem{
		{ID: 20, Name: "Dome Camera", Price: 2500},
		{ID: 21, Name: "Bullet Camera", Price: 3200},
	}
	refs.Catalogs[models.CategoryNVR] = []models.CatalogItem{{ID: 30, Name: "NVR 16CH", Price: 15000.5}}
	refs.Catalogs[models.CategoryCable] = []models.CatalogItem{{ID: 40, Name: "CAT6 Cable", Price: 12.75}}
	return refs
}

func validBOQRow(stand string) Row {
	return Row{
		"division":    "Pune",
		"depot":       "Swargate",
		"busstation":  "Swargate Station",
		"busstand":    stand,
		"surveydate":  "15/03/2024",
		"dome camera": float64(4),
		"nvr 16ch":    float64(1),
	}
}
