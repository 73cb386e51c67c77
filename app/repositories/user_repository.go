package repositories

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/bodega/app/models"
)

// UserRepository reads and writes operator accounts.
type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{Repository: New[models.User]("email")}
}

// FindByEmail looks an operator up case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.Query(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
