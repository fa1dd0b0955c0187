package tag

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT en_short, en, ko, ord FROM tags").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"en_short", "en", "ko", "ord"}).
			AddRow("dp", "Dynamic Programming", "다이나믹 프로그래밍", 9).
			AddRow("greedy", nil, "그리디 알고리즘", nil))

	tags, err := NewPostgresRepository(db).List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tags) != 2 || tags[0].Ord != 9 || tags[1].En != "" {
		t.Fatalf("unexpected tags %+v", tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresListQueryErrorReturnsEmpty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("FROM tags").WillReturnError(errors.New("relation does not exist"))

	tags, err := NewPostgresRepository(db).List(10)
	if err != nil || len(tags) != 0 {
		t.Fatalf("expected empty result, got %v %v", tags, err)
	}
}

func TestPostgresUpsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("INSERT INTO tags").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := NewPostgresRepository(db).Upsert([]Tag{
		{EnShort: "dp", En: "Dynamic Programming", Ko: "다이나믹 프로그래밍", Ord: 3},
		{EnShort: "", En: "skipped"},
		{EnShort: "math", En: "Mathematics", Ko: "수학", Ord: 1},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
