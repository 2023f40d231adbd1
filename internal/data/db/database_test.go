package db

import "testing"

func TestPostgresDSN(t *testing.T) {
	got := postgresDSN(Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "art",
		PostgresPassword: "pw",
		PostgresName:     "artspace",
	})
	want := "postgres://art:pw@db:5432/artspace?sslmode=disable"
	if got != want {
		t.Fatalf("dsn: want=%q got=%q", want, got)
	}
}
