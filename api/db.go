package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	//sqlite driver
	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
)

//Dialect is a supported SQL dialect. Its value is also the database/sql driver name.
type Dialect string

//Dialects
const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

//ParseDialect returns the Dialect for the given driver name
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case DialectSQLite, DialectMySQL:
		return Dialect(driver), nil
	}
	return "", fmt.Errorf("unsupported SQL driver %q (want sqlite or mysql)", driver)
}

//Open opens a database pool for the given driver and DSN and verifies it can be reached
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite && !strings.Contains(dsn, "foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		//a single writer avoids SQLITE_BUSY between concurrent transactions
		db.SetMaxOpenConns(1)
	case DialectMySQL:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return db, nil
}

//WithTx runs fn with a new transaction stored in the context under TransactionKey.
//The transaction is committed if fn returns nil and rolled back otherwise.
//If fn panics, the transaction is rolled back before the panic continues.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Description: "Could not begin transaction", Type: ErrorTypePersistence, Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, TransactionKey, tx)); err != nil {
		if rErr := tx.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) {
			return &Error{Description: "Could not rollback transaction", Type: ErrorTypePersistence, Err: fmt.Errorf("%v (after %w)", rErr, err)}
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return &Error{Description: "Could not commit transaction", Type: ErrorTypePersistence, Err: err}
	}

	return nil
}

//isDuplicate reports whether err is a unique key violation in either supported dialect
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	//SQLITE_CONSTRAINT_UNIQUE and SQLITE_CONSTRAINT_PRIMARYKEY
	var liteErr interface{ Code() int }
	if errors.As(err, &liteErr) {
		return liteErr.Code() == 2067 || liteErr.Code() == 1555
	}

	return false
}
