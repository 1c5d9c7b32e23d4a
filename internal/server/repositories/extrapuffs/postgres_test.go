package extrapuffs

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var at = time.Date(2026, 10, 18, 13, 5, 0, 0, time.UTC)

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT INTO extra_puffs \(id, timestamp\)\s+VALUES \(\$1, \$2\)\s+RETURNING created_at`
	mock.ExpectQuery(q).
		WithArgs("p-1", at).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(at.Add(time.Second)))

	got, err := repo.Insert(context.Background(), &models.ExtraPuff{ID: "p-1", Timestamp: at})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID != "p-1" || !got.CreatedAt.Equal(at.Add(time.Second)) {
		t.Fatalf("unexpected puff: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO extra_puffs`).WillReturnError(errors.New("duplicate key"))

	_, err := repo.Insert(context.Background(), &models.ExtraPuff{ID: "p-1", Timestamp: at})
	if err == nil || !regexp.MustCompile(`db error: .*duplicate key`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_RowRemoved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM extra_puffs WHERE id = $1`)).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), "p-1")
	if err != nil || !ok {
		t.Fatalf("want (true, nil), got (%v, %v)", ok, err)
	}
}

func TestDelete_NoSuchRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM extra_puffs`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("want (false, nil), got (%v, %v)", ok, err)
	}
}

func TestDelete_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM extra_puffs`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	_, err := repo.Delete(context.Background(), "p-1")
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "timestamp", "created_at"}).
		AddRow("p-2", at.Add(time.Hour), at.Add(time.Hour)).
		AddRow("p-1", at, at)
	mock.ExpectQuery(`SELECT id, timestamp, created_at FROM extra_puffs ORDER BY timestamp DESC`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-2" || got[1].ID != "p-1" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, timestamp, created_at FROM extra_puffs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp", "created_at"}))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, timestamp, created_at FROM extra_puffs`).
		WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background())
	if err == nil || !regexp.MustCompile(`failed to select extra puffs: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestList_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "timestamp", "created_at"}).
		AddRow("p-1", at, at).
		AddRow("p-2", at, at).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`SELECT id, timestamp, created_at FROM extra_puffs`).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	if err == nil || err.Error() != "row-err" {
		t.Fatalf("expected rows.Err 'row-err', got %v", err)
	}
}
