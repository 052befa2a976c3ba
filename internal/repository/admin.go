package repository

import (
	"context"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// AdminRepository stores administrator credentials.
type AdminRepository struct {
	*Repository[model.Admin, *model.Admin]
}

func NewAdminRepository(coll store.Collection) *AdminRepository {
	return &AdminRepository{
		Repository: NewRepository[model.Admin](coll, "Admin", store.Asc("createdAt")),
	}
}

// FindByLogin looks an admin up by username or email.
func (r *AdminRepository) FindByLogin(ctx context.Context, login string) (*model.Admin, error) {
	return r.FindOne(ctx, store.Eq("username", login).Or("email", login))
}
