package kvstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New がエラーを返した: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`)).
		WithArgs("device-1", "user_session").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"token":"t"}`)))

	s := NewPostgresStore(db, "device-1")
	v, ok, err := s.Get(context.Background(), "user_session")
	if err != nil || !ok || string(v) != `{"token":"t"}` {
		t.Errorf("Get = %q ok:%v err:%v", v, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresStore_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New がエラーを返した: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries`)).
		WithArgs("device-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	s := NewPostgresStore(db, "device-1")
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("ok:%v err:%v, want ok:false err:nil", ok, err)
	}
}

func TestPostgresStore_GetError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New がエラーを返した: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries`)).
		WillReturnError(errors.New("connection reset"))

	s := NewPostgresStore(db, "device-1")
	if _, _, err := s.Get(context.Background(), "user_session"); err == nil {
		t.Error("DBエラーを返すべき")
	}
}

func TestPostgresStore_SetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New がエラーを返した: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries (namespace, key, value, updated_at)`)).
		WithArgs("device-1", "deviceId", []byte("abc")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db, "device-1")
	if err := s.Set(context.Background(), "deviceId", []byte("abc")); err != nil {
		t.Errorf("Set がエラーを返した: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New がエラーを返した: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`)).
		WithArgs("device-1", "user_session").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db, "device-1")
	if err := s.Delete(context.Background(), "user_session"); err != nil {
		t.Errorf("Delete がエラーを返した: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
