package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParamsDSN(t *testing.T) {
	p := Params{User: "agenda", Pass: "s3cret", Host: "db", Port: "3306", Name: "agenda_posto"}
	assert.Equal(t,
		"agenda:s3cret@tcp(db:3306)/agenda_posto?charset=utf8mb4&parseTime=true&loc=UTC",
		p.dsn())
}

func TestParamsDSN_NoPassword(t *testing.T) {
	p := Params{User: "agenda", Host: "localhost", Port: "3306", Name: "agenda_posto"}
	assert.Equal(t,
		"agenda@tcp(localhost:3306)/agenda_posto?charset=utf8mb4&parseTime=true&loc=UTC",
		p.dsn())
}

func TestParamsPoolDefaults(t *testing.T) {
	maxConns, life := Params{}.pool()
	assert.Equal(t, 10, maxConns)
	assert.Equal(t, 30*time.Minute, life)

	maxConns, life = Params{MaxConns: 50, ConnMaxLife: time.Hour}.pool()
	assert.Equal(t, 50, maxConns)
	assert.Equal(t, time.Hour, life)
}
