package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

// OpportunityFilter narrows List.  Zero values mean "any".
type OpportunityFilter struct {
	Category string
	Search   string
	Featured *bool
	Status   string
	Limit    int
}

type OpportunityRepo struct{ DB *sql.DB }

func NewOpportunityRepo(db *sql.DB) *OpportunityRepo { return &OpportunityRepo{DB: db} }

const opportunityColumns = "id,title,description,category,organization,location,deadline," +
	"requirements,benefits,application_url,is_featured,status,created_at,updated_at"

// List returns opportunities newest first.
func (r *OpportunityRepo) List(ctx context.Context, f OpportunityFilter) ([]model.Opportunity, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category=?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.Featured != nil {
		where = append(where, "is_featured=?")
		args = append(args, *f.Featured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		where = append(where, "(title LIKE ? OR description LIKE ? OR organization LIKE ?)")
		args = append(args, like, like, like)
	}

	q := "SELECT " + opportunityColumns + " FROM opportunities"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OpportunityRepo) GetByID(ctx context.Context, id uint64) (model.Opportunity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+opportunityColumns+" FROM opportunities WHERE id=? LIMIT 1", id)
	return scanOpportunity(row)
}

// Create inserts o and returns its ID.
func (r *OpportunityRepo) Create(ctx context.Context, o model.Opportunity) (uint64, error) {
	reqs, benefits, err := encodeLists(o)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO opportunities (title,description,category,organization,location,deadline,"+
			"requirements,benefits,application_url,is_featured,status,created_at,updated_at) "+
			"VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		o.Title, o.Description, o.Category, o.Organization, o.Location, o.Deadline,
		reqs, benefits, o.ApplicationURL, o.IsFeatured, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites every mutable column of o.
func (r *OpportunityRepo) Update(ctx context.Context, o model.Opportunity) error {
	reqs, benefits, err := encodeLists(o)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE opportunities SET title=?,description=?,category=?,organization=?,location=?,deadline=?,"+
			"requirements=?,benefits=?,application_url=?,is_featured=?,status=?,updated_at=? WHERE id=?",
		o.Title, o.Description, o.Category, o.Organization, o.Location, o.Deadline,
		reqs, benefits, o.ApplicationURL, o.IsFeatured, o.Status, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *OpportunityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM opportunities WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanOpportunity(s rowScanner) (model.Opportunity, error) {
	var (
		o              model.Opportunity
		reqs, benefits []byte
	)
	err := s.Scan(&o.ID, &o.Title, &o.Description, &o.Category, &o.Organization, &o.Location, &o.Deadline,
		&reqs, &benefits, &o.ApplicationURL, &o.IsFeatured, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Opportunity{}, notFound(err)
	}
	o.Requirements = []string{}
	o.Benefits = []string{}
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &o.Requirements); err != nil {
			return model.Opportunity{}, err
		}
	}
	if len(benefits) > 0 {
		if err := json.Unmarshal(benefits, &o.Benefits); err != nil {
			return model.Opportunity{}, err
		}
	}
	return o, nil
}

func encodeLists(o model.Opportunity) ([]byte, []byte, error) {
	reqs, err := json.Marshal(orEmpty(o.Requirements))
	if err != nil {
		return nil, nil, err
	}
	benefits, err := json.Marshal(orEmpty(o.Benefits))
	if err != nil {
		return nil, nil, err
	}
	return reqs, benefits, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
