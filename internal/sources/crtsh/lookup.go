// internal/sources/crtsh/lookup.go
package crtsh

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"slugscout/internal/platform/errors"
)

// DefaultDSN es la réplica pública de solo lectura de crt.sh.
const DefaultDSN = "postgres://guest@crt.sh:5432/certwatch?sslmode=disable"

// NameLookup retorna los nombres DNS de certificados emitidos bajo un dominio.
// Cualquier error hace que el conector use el endpoint HTTP.
type NameLookup interface {
	Names(ctx context.Context, domain string) ([]string, error)
}

const namesQuery = `
SELECT DISTINCT lower(ci.NAME_VALUE)
FROM certificate_and_identities ci
WHERE plainto_tsquery('certwatch', $1) @@ identities(ci.CERTIFICATE)
  AND ci.NAME_TYPE = 'dNSName'
  AND lower(ci.NAME_VALUE) LIKE $2`

// PostgresLookup consulta la réplica de crt.sh con una conexión por llamada.
// La réplica corre detrás de un pooler que rechaza prepared statements,
// así que las consultas usan el protocolo simple.
type PostgresLookup struct {
	dsn     string
	timeout time.Duration
}

// NewPostgresLookup crea un lookup contra dsn con timeout por llamada.
func NewPostgresLookup(dsn string, timeout time.Duration) *PostgresLookup {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &PostgresLookup{dsn: dsn, timeout: timeout}
}

// Names ejecuta la consulta de identidades para domain.
func (l *PostgresLookup) Names(ctx context.Context, domain string) ([]string, error) {
	cfg, err := pgx.ParseConfig(l.dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "crtsh dsn: %v", err)
	}
	cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	cfg.ConnectTimeout = l.timeout

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConnectionFailed, err.Error())
	}
	defer conn.Close(context.Background())

	rows, err := conn.Query(ctx, namesQuery, domain, "%."+strings.ToLower(domain))
	if err != nil {
		return nil, errors.Wrap(err, "crtsh query")
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "crtsh rows")
	}
	return names, nil
}
