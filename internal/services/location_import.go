package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"cctv-survey/internal/models"
	"cctv-survey/internal/strapi"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DefaultRegion is stored on divisions created by the bulk importer.
const DefaultRegion = "Unassigned"

// LocationRow is one line of the bulk location sheet. Headers are
// case-sensitive as named in the sheet tags.
type LocationRow struct {
	Num        int    `sheet:"-"`
	Division   string `sheet:"division" validate:"required"`
	Depot      string `sheet:"depot" validate:"required"`
	BusStation string `sheet:"busStation" validate:"required"`
	BusStand   string `sheet:"busStand" validate:"required"`
	Address    string `sheet:"Address"`
	Latitude   any    `sheet:"Latitude"`
	Longitude  any    `sheet:"Longitude"`
}

// Path renders the hierarchy of the row for log lines.
func (r LocationRow) Path() string {
	return fmt.Sprintf("%s -> %s -> %s -> %s", r.Division, r.Depot, r.BusStation, r.BusStand)
}

// LocationRowsFromSheet reads rows parsed with case-preserved headers.
func LocationRowsFromSheet(rows []SheetRow) []LocationRow {
	out := make([]LocationRow, 0, len(rows))
	for _, r := range rows {
		v := r.Values
		out = append(out, LocationRow{
			Num:        r.Num,
			Division:   cellString(v["division"]),
			Depot:      cellString(v["depot"]),
			BusStation: cellString(v["busStation"]),
			BusStand:   cellString(v["busStand"]),
			Address:    cellString(v["Address"]),
			Latitude:   v["Latitude"],
			Longitude:  v["Longitude"],
		})
	}
	return out
}

// DepotCode derives a five-character upper-case code from a depot name,
// padding short names with X.
func DepotCode(name string) string {
	code := make([]rune, 0, 5)
	for _, r := range strings.ToUpper(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			code = append(code, r)
			if len(code) == 5 {
				break
			}
		}
	}
	for len(code) < 5 {
		code = append(code, 'X')
	}
	return string(code)
}

// LocationImportService creates the Division -> Depot -> Bus Station ->
// Bus Stand chain for every sheet row, reusing whatever already exists.
type LocationImportService struct {
	client   *strapi.Client
	catalogs *CatalogService
	validate *validator.Validate
	runs     RunStore
	logr     *zap.Logger
}

func NewLocationImportService(client *strapi.Client, catalogs *CatalogService, runs RunStore, logr *zap.Logger) *LocationImportService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("sheet")
	})
	if runs == nil {
		runs = NopRunStore{}
	}
	return &LocationImportService{client: client, catalogs: catalogs, validate: v, runs: runs, logr: logr}
}

func (s *LocationImportService) Import(ctx context.Context, r io.Reader, fileName string) (*ImportSummary, error) {
	sheet, err := ReadSheet(r, fileName)
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, LocationRowsFromSheet(sheet.Rows(false)), fileName)
}

// ImportRows processes rows one at a time; levels within a row depend on
// each other and later rows reuse what earlier rows created.
func (s *LocationImportService) ImportRows(ctx context.Context, rows []LocationRow, fileName string) (*ImportSummary, error) {
	summary := newSummary(models.ImportKindLocations, fileName)
	created := &LocationCounts{}
	logs := make([]RowLog, 0, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			logs = append(logs, RowLog{Row: row.Num, Status: RowFailed, Message: row.Path() + ": " + err.Error()})
			continue
		}
		logs = append(logs, s.upsertRow(ctx, row, created))
	}

	summary.finish(logs)
	summary.Created = created

	refs, err := s.catalogs.LoadLocations(ctx)
	if err != nil {
		s.logr.Warn("failed to refresh location caches", zap.Error(err))
	} else {
		totals := refs.Counts()
		summary.Totals = &totals
	}

	if err := s.runs.SaveRun(ctx, summary); err != nil {
		s.logr.Error("failed to record import run", zap.Error(err), zap.String("run_id", summary.RunID.String()))
	}

	s.logr.Info("location import finished",
		zap.String("run_id", summary.RunID.String()),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("divisions_created", created.Divisions),
		zap.Int("depots_created", created.Depots),
		zap.Int("bus_stations_created", created.BusStations),
		zap.Int("bus_stands_created", created.BusStands))

	return summary, nil
}

func (s *LocationImportService) upsertRow(ctx context.Context, row LocationRow, created *LocationCounts) RowLog {
	path := row.Path()

	if err := s.validate.Struct(row); err != nil {
		msg := validationMessage(err)
		s.logr.Warn("location row skipped", zap.Int("row", row.Num), zap.String("path", path), zap.String("reason", msg))
		return RowLog{Row: row.Num, Status: RowSkipped, Message: path + ": " + msg}
	}

	var made []string
	fail := func(level string, err error) RowLog {
		s.logr.Error("location row failed",
			zap.Int("row", row.Num),
			zap.String("path", path),
			zap.String("level", level),
			zap.Error(err))
		return RowLog{Row: row.Num, Status: RowFailed, Message: fmt.Sprintf("%s: %s: %v", path, level, err)}
	}

	division, isNew, err := s.ensureDivision(ctx, row.Division)
	if err != nil {
		return fail("division", err)
	}
	if isNew {
		created.Divisions++
		made = append(made, "division")
	}

	depot, isNew, err := s.ensureDepot(ctx, division, row.Depot, row.Address)
	if err != nil {
		return fail("depot", err)
	}
	if isNew {
		created.Depots++
		made = append(made, "depot")
	}

	station, isNew, err := s.ensureBusStation(ctx, division, depot, row)
	if err != nil {
		return fail("bus station", err)
	}
	filled := false
	if isNew {
		created.BusStations++
		made = append(made, "bus station")
	} else if filled, err = s.fillCoordinates(ctx, station, row); err != nil {
		return fail("bus station", err)
	}

	stand, isNew, err := s.ensureBusStand(ctx, division, depot, station, row.BusStand)
	if err != nil {
		return fail("bus stand", err)
	}
	if isNew {
		created.BusStands++
		made = append(made, "bus stand")
	}

	var changes []string
	if len(made) > 0 {
		changes = append(changes, "created "+strings.Join(made, ", "))
	}
	if filled {
		changes = append(changes, "filled bus station coordinates")
	}

	if len(changes) == 0 {
		s.logr.Debug("location row already present", zap.Int("row", row.Num), zap.String("path", path))
		return RowLog{Row: row.Num, Status: RowExisting, Message: path + ": already exists", RecordID: stand.ID}
	}

	s.logr.Info("location row imported",
		zap.Int("row", row.Num),
		zap.String("path", path),
		zap.Strings("created", made),
		zap.Bool("coordinates_filled", filled))
	return RowLog{
		Row:      row.Num,
		Status:   RowImported,
		Message:  path + ": " + strings.Join(changes, "; "),
		RecordID: stand.ID,
	}
}

func (s *LocationImportService) ensureDivision(ctx context.Context, name string) (*models.Division, bool, error) {
	var found []models.Division
	q := strapi.Query{
		PageSize: 1,
		Filters:  []strapi.Filter{hierarchyLevelMatch["division"].Filter("name", name)},
	}
	if _, err := s.client.List(ctx, CollectionDivisions, q, &found); err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], false, nil
	}

	var div models.Division
	input := models.DivisionInput{Name: strings.TrimSpace(name), Region: DefaultRegion}
	if err := s.client.Create(ctx, CollectionDivisions, input, &div); err != nil {
		return nil, false, err
	}
	return &div, true, nil
}

func (s *LocationImportService) ensureDepot(ctx context.Context, division *models.Division, name, address string) (*models.Depot, bool, error) {
	var found []models.Depot
	q := strapi.Query{
		PageSize: 1,
		Filters: []strapi.Filter{
			hierarchyLevelMatch["depot"].Filter("name", name),
			strapi.Eq("division.id", division.ID),
		},
	}
	if _, err := s.client.List(ctx, CollectionDepots, q, &found); err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], false, nil
	}

	var depot models.Depot
	input := models.DepotInput{
		Name:     strings.TrimSpace(name),
		Code:     DepotCode(name),
		Address:  address,
		Division: division.ID,
	}
	if err := s.client.Create(ctx, CollectionDepots, input, &depot); err != nil {
		return nil, false, err
	}
	return &depot, true, nil
}

func (s *LocationImportService) ensureBusStation(ctx context.Context, division *models.Division, depot *models.Depot, row LocationRow) (*models.BusStation, bool, error) {
	var found []models.BusStation
	q := strapi.Query{
		PageSize: 1,
		Filters: []strapi.Filter{
			hierarchyLevelMatch["busStation"].Filter("name", row.BusStation),
			strapi.Eq("division.id", division.ID),
			strapi.Eq("depot.id", depot.ID),
		},
	}
	if _, err := s.client.List(ctx, CollectionBusStations, q, &found); err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], false, nil
	}

	input := models.BusStationInput{
		Name:      strings.TrimSpace(row.BusStation),
		Address:   row.Address,
		Latitude:  s.coordinate(row, "Latitude", row.Latitude),
		Longitude: s.coordinate(row, "Longitude", row.Longitude),
		Division:  division.ID,
		Depot:     depot.ID,
	}
	var station models.BusStation
	if err := s.client.Create(ctx, CollectionBusStations, input, &station); err != nil {
		return nil, false, err
	}
	return &station, true, nil
}

// fillCoordinates sets latitude/longitude on an existing station that has
// none, from the row. Coordinates already stored are never overwritten.
func (s *LocationImportService) fillCoordinates(ctx context.Context, station *models.BusStation, row LocationRow) (bool, error) {
	data := map[string]any{}
	if station.Latitude == nil {
		if lat := s.coordinate(row, "Latitude", row.Latitude); lat != nil {
			data["latitude"] = *lat
		}
	}
	if station.Longitude == nil {
		if lng := s.coordinate(row, "Longitude", row.Longitude); lng != nil {
			data["longitude"] = *lng
		}
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := s.client.Update(ctx, CollectionBusStations, strconv.Itoa(station.ID), data, station); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocationImportService) coordinate(row LocationRow, field string, v any) *string {
	out, recognized := normalizeCoordinate(v)
	if !recognized {
		s.logr.Warn("unrecognised coordinate format, storing as-is",
			zap.Int("row", row.Num),
			zap.String("field", field),
			zap.String("value", derefString(out)))
	}
	return out
}

// ensureBusStand looks the stand up by its short name; a create that hits
// the unique-name constraint means another path already made it.
func (s *LocationImportService) ensureBusStand(
	ctx context.Context,
	division *models.Division,
	depot *models.Depot,
	station *models.BusStation,
	shortName string,
) (*models.BusStand, bool, error) {
	var found []models.BusStand
	q := strapi.Query{
		PageSize: 1,
		Filters: []strapi.Filter{
			hierarchyLevelMatch["busStand"].Filter("name", shortName),
			strapi.Eq("division.id", division.ID),
			strapi.Eq("depot.id", depot.ID),
			strapi.Eq("bus_station.id", station.ID),
		},
	}
	if _, err := s.client.List(ctx, CollectionBusStands, q, &found); err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], false, nil
	}

	input := models.BusStandInput{
		Name:       models.BusStandDisplayName(strings.TrimSpace(shortName), depot.Name, station.Name),
		Division:   division.ID,
		Depot:      depot.ID,
		BusStation: station.ID,
	}
	var stand models.BusStand
	err := s.client.Create(ctx, CollectionBusStands, input, &stand)
	if strapi.IsUniqueViolation(err) {
		s.logr.Warn("bus stand already exists, skipping", zap.String("name", input.Name))
		return &models.BusStand{Name: input.Name}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &stand, true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return "missing " + strings.Join(missing, ", ")
}
