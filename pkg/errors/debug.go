package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logs. PG is set when a
// Postgres error sits anywhere in the chain, from either driver.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	PG         *PGDump  `json:"pg,omitempty"`
}

type PGDump struct {
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// Retryable reports serialization failures and deadlocks, the two errors a
// concurrent balance debit can hit under load.
func (p *PGDump) Retryable() bool {
	return p != nil && (p.Code == "40001" || p.Code == "40P01")
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.PG = pgDump(err)
	return d
}

// LogFields renders the dump as logger fields, omitting empty pg columns.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.PG == nil {
		return fields
	}
	for key, value := range map[string]string{
		"pg_code":       d.PG.Code,
		"pg_message":    d.PG.Message,
		"pg_detail":     d.PG.Detail,
		"pg_hint":       d.PG.Hint,
		"pg_table":      d.PG.Table,
		"pg_column":     d.PG.Column,
		"pg_constraint": d.PG.Constraint,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if d.PG.Retryable() {
		fields["pg_retryable"] = true
	}
	return fields
}

func pgDump(err error) *PGDump {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDump{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Hint:       pgxErr.Hint,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDump{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Hint:       pqErr.Hint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}
