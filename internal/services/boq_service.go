package services

import (
	"context"
	"fmt"
	"strings"

	"cctv-survey/internal/models"
	"cctv-survey/internal/strapi"
)

// GrandTotalPageSize is how many BOQs the bulk total reads in one request.
const GrandTotalPageSize = 1000

type BOQService struct {
	client *strapi.Client
}

func NewBOQService(client *strapi.Client) *BOQService {
	return &BOQService{client: client}
}

// BOQListParams filters the BOQ listing.
type BOQListParams struct {
	Page      int
	PageSize  int
	Search    string   // substring of the bus stand name
	Divisions []string // exact division names
}

type BOQListResponse struct {
	Data       []models.BOQRecord `json:"data"`
	Pagination strapi.Pagination  `json:"pagination"`
	PageTotal  float64            `json:"page_total"`
}

// BOQPopulate expands the location references and the item inside every
// selection list, so prices are available for costing.
func BOQPopulate() []string {
	out := []string{"division", "depot", "bus_station", "bus_stand"}
	for _, c := range models.Categories {
		out = append(out, c.SelectionField()+"."+c.RefKey())
	}
	return out
}

// List returns one page of BOQs with their cost filled in.
func (s *BOQService) List(ctx context.Context, params BOQListParams) (*BOQListResponse, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}

	q := strapi.Query{
		Page:     params.Page,
		PageSize: params.PageSize,
		Populate: BOQPopulate(),
		Sort:     []string{"id:desc"},
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		q.Filters = append(q.Filters, strapi.ContainsI("bus_stand.name", search))
	}
	if len(params.Divisions) > 0 {
		q.Filters = append(q.Filters, strapi.In("division.name", params.Divisions...))
	}

	var records []models.BOQRecord
	meta, err := s.client.List(ctx, CollectionBOQs, q, &records)
	if err != nil {
		return nil, fmt.Errorf("list boqs: %w", err)
	}

	for i := range records {
		records[i].Cost = CalculateCost(&records[i])
	}

	return &BOQListResponse{
		Data:       records,
		Pagination: meta.Pagination,
		PageTotal:  GrandTotal(records),
	}, nil
}

// BOQTotal is the bulk cost over every fetched record.
type BOQTotal struct {
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
	Count     int     `json:"count"`
}

// GrandTotal fetches up to GrandTotalPageSize populated records and sums their cost.
func (s *BOQService) GrandTotal(ctx context.Context) (*BOQTotal, error) {
	records, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	total := GrandTotal(records)
	return &BOQTotal{Total: total, Formatted: FormatINR(total), Count: len(records)}, nil
}

// Records returns up to GrandTotalPageSize populated records with cost set.
func (s *BOQService) Records(ctx context.Context) ([]models.BOQRecord, error) {
	records, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Cost = CalculateCost(&records[i])
	}
	return records, nil
}

func (s *BOQService) fetchAll(ctx context.Context) ([]models.BOQRecord, error) {
	var records []models.BOQRecord
	_, err := s.client.List(ctx, CollectionBOQs, strapi.Query{
		Page:     1,
		PageSize: GrandTotalPageSize,
		Populate: BOQPopulate(),
	}, &records)
	if err != nil {
		return nil, fmt.Errorf("fetch boqs: %w", err)
	}
	return records, nil
}

// Delete removes one BOQ by id (or document id).
func (s *BOQService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, CollectionBOQs, id); err != nil {
		return fmt.Errorf("delete boq %s: %w", id, err)
	}
	return nil
}
