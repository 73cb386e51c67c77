package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/repositories"
	"github.com/shashiranjanraj/bodega/pkg/orm"
)

// ListParams selects a page. Page 0 lists everything.
type ListParams struct {
	Page    int
	PerPage int
}

// Page is a listing, with pagination metadata when a page was requested.
type Page[T any] struct {
	Items      []T
	Pagination *orm.Pagination
}

// crud is the read and delete half shared by every model service.
type crud[T any] struct {
	model string
	repo  *repositories.Repository[T]
}

func (c crud[T]) List(ctx context.Context, p ListParams) (Page[T], error) {
	if p.Page < 1 {
		items, err := c.repo.All(ctx)
		return Page[T]{Items: items}, err
	}
	items, pagination, err := c.repo.Paginate(ctx, p.Page, p.PerPage)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Pagination: &pagination}, nil
}

// Get loads one record. Unknown and malformed ids return ErrNotFound.
func (c crud[T]) Get(ctx context.Context, id string) (*T, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	v, err := c.repo.Find(ctx, uid)
	return v, findError(err)
}

func (c crud[T]) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return deleteError(c.model, c.repo.Delete(ctx, uid))
}

// reload returns the fresh representation after a write.
func (c crud[T]) reload(ctx context.Context, id uuid.UUID) (*T, error) {
	v, err := c.repo.Find(ctx, id)
	return v, findError(err)
}

// parseID parses a path id. Anything that is not a UUID cannot exist.
func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return uid, nil
}

// refID parses a reference sent in a request body.
func refID(field, id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, invalid(field, "invalid %s id %q", field, id)
	}
	return uid, nil
}

// mustExist fails with a ValidationError on field when no row has id.
func mustExist[T any](ctx context.Context, repo *repositories.Repository[T], field string, id uuid.UUID) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return invalid(field, "%s %s does not exist", field, id)
	}
	return nil
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
