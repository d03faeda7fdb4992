package postgres

import (
	"context"
	"errors"
	"myUserCatalog/domain"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var userColumns = []string{"id", "name", "email", "password", "role", "created_at", "updated_at", "deleted_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestUserRepository_CreateWithAddresses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	user := &domain.User{Name: "John", Email: "john@example.com", Password: "hash", Role: domain.RoleUser}
	err := repo.Create(context.Background(), user, []domain.Address{
		{Address: "Main st 1", IsCheckpoint: true},
		{Address: "Side st 2"},
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), user.ID)
	require.Len(t, user.Addresses, 2)
	assert.Equal(t, uint(7), user.Addresses[0].UserID)
	assert.True(t, user.Addresses[0].IsCheckpoint)
	assert.False(t, user.Addresses[1].IsCheckpoint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateRollsBackWhenAddressesFail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "addresses"`).WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	user := &domain.User{Name: "John", Email: "john@example.com", Password: "hash", Role: domain.RoleUser}
	err := repo.Create(context.Background(), user, []domain.Address{{Address: "Main st 1"}})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithoutAddresses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	user := &domain.User{Name: "John", Email: "john@example.com", Password: "hash", Role: domain.RoleUser}
	require.NoError(t, repo.Create(context.Background(), user, nil))

	assert.Empty(t, user.Addresses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1 AND "users"."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "John", "john@example.com", "hash", "User", now, now, nil))
	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE "addresses"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "address", "is_checkpoint"}).AddRow(5, 1, "Main st 1", true))

	user, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "john@example.com", user.Email)
	require.Len(t, user.Addresses, 1)
	assert.Equal(t, "Main st 1", user.Addresses[0].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByID(context.Background(), 9999)

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

	user, err := repo.FindByID(context.Background(), 1)

	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_FindByEmailAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_EmailExistsIncludesDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	// no deleted_at filter, matching the unique index
	mock.ExpectQuery(`^SELECT count\(\*\) FROM "users" WHERE email = \$1$`).
		WithArgs("john@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.EmailExists(context.Background(), "john@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateReplacesAddresses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "addresses" WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	name := "Jane"
	user := &domain.User{ID: 1, Name: "John", Email: "john@example.com"}
	err := repo.Update(context.Background(), user, domain.UserFields{Name: &name}, []domain.Address{{Address: "New st 3"}})
	require.NoError(t, err)

	assert.Equal(t, "Jane", user.Name)
	require.Len(t, user.Addresses, 1)
	assert.Equal(t, uint(10), user.Addresses[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateWithoutAddressesLeavesThem(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	email := "jane@example.com"
	user := &domain.User{ID: 1, Name: "John", Email: "john@example.com"}
	require.NoError(t, repo.Update(context.Background(), user, domain.UserFields{Email: &email}, nil))

	assert.Equal(t, "jane@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRollbackLeavesUserUntouched(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "addresses" WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "addresses"`).WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	name := "Jane"
	email := "jane@example.com"
	old := []domain.Address{{ID: 3, UserID: 1, Address: "Old st 1"}}
	user := &domain.User{ID: 1, Name: "John", Email: "john@example.com", Addresses: old}

	err := repo.Update(context.Background(), user, domain.UserFields{Name: &name, Email: &email}, []domain.Address{{Address: "New st 3"}})

	assert.Error(t, err)
	assert.Equal(t, "John", user.Name)
	assert.Equal(t, "john@example.com", user.Email)
	assert.True(t, user.UpdatedAt.IsZero())
	assert.Equal(t, old, user.Addresses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteRemovesAddresses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "deleted_at"=\$1 WHERE "users"."id" = \$2 AND "users"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "addresses" WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), &domain.User{ID: 1})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	product := &domain.Product{
		Name:          "Pen",
		Description:   "Blue ink",
		Prices:        domain.NewPrices(domain.Prices{"USD": 100}),
		StockQuantity: 10,
	}
	require.NoError(t, repo.Create(context.Background(), product))

	assert.Equal(t, uint(4), product.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_FindByIDAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	product, err := repo.FindByID(context.Background(), 9999)

	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestProductRepository_FindByIDDecodesPrices(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "prices", "stock_quantity", "created_at", "updated_at"}).
			AddRow(4, "Pen", "Blue ink", []byte(`{"USD":100,"EUR":92}`), 10, now, now))

	product, err := repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, domain.Prices{"USD": 100, "EUR": 92}, product.Prices.Data())
}

func TestProductRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	stock := 0
	product := &domain.Product{ID: 4, Name: "Pen", StockQuantity: 10}
	require.NoError(t, repo.Update(context.Background(), product, domain.ProductFields{StockQuantity: &stock}))

	assert.Equal(t, 0, product.StockQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "products" WHERE "products"."id" = \$1`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), &domain.Product{ID: 4}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
