package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	c := Config{Host: "db", User: "app", Password: "pw", Name: "shop", Port: "5432"}
	assert.Equal(t, "host=db user=app password=pw dbname=shop port=5432 sslmode=disable TimeZone=UTC", c.BuildDSN())

	c.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", c.BuildDSN())
}
