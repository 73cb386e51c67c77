package orm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

func TestClassifySQLiteForeignKeyOnDelete(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	var brand models.Brand
	require.NoError(t, db.Where("name = ?", "Samsung").First(&brand).Error)

	err := orm.Classify(db.Delete(&brand).Error)

	var ce *orm.ConstraintError
	require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
	assert.Equal(t, orm.ForeignKey, ce.Kind)
}

func TestClassifySQLiteUnique(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	err := orm.Classify(db.Create(&models.Brand{Name: "Samsung", IsActive: true}).Error)

	var ce *orm.ConstraintError
	require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
	assert.Equal(t, orm.Unique, ce.Kind)
}

func TestClassifyPassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, orm.Classify(plain))
	assert.NoError(t, orm.Classify(nil))
}
