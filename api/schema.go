package api

import (
	"context"
	"database/sql"
	"fmt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		price REAL NOT NULL,
		stock INTEGER NOT NULL CHECK (stock >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'created',
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		isbn TEXT NOT NULL,
		qty INTEGER NOT NULL CHECK (qty > 0),
		FOREIGN KEY (order_id) REFERENCES orders(id),
		FOREIGN KEY (isbn) REFERENCES books(isbn)
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS tool_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL,
		args_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS messages_session ON messages(session_id);`,
	`CREATE INDEX IF NOT EXISTS tool_calls_session ON tool_calls(session_id);`,
	`CREATE TABLE IF NOT EXISTS operators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		hash BLOB NOT NULL,
		name TEXT NOT NULL
	);`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn VARCHAR(32) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		stock INT NOT NULL,
		CONSTRAINT books_stock_nonnegative CHECK (stock >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_id INT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'created',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		isbn VARCHAR(32) NOT NULL,
		qty INT NOT NULL,
		CONSTRAINT order_items_qty_positive CHECK (qty > 0),
		FOREIGN KEY (order_id) REFERENCES orders(id),
		FOREIGN KEY (isbn) REFERENCES books(isbn)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(64) NOT NULL,
		role VARCHAR(16) NOT NULL,
		content MEDIUMTEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX messages_session (session_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS tool_calls (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(64) NOT NULL,
		name VARCHAR(64) NOT NULL,
		args_json TEXT NOT NULL,
		result_json MEDIUMTEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX tool_calls_session (session_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS operators (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		hash VARBINARY(60) NOT NULL,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

//CreateSchema creates any missing tables for the given Dialect. It is safe to call on every start.
func CreateSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var stmts []string
	switch dialect {
	case DialectSQLite:
		stmts = sqliteSchema
	case DialectMySQL:
		stmts = mysqlSchema
	default:
		return fmt.Errorf("no schema for dialect %q", dialect)
	}

	return WithTx(ctx, db, func(ctx context.Context) error {
		tx := ctx.Value(TransactionKey).(*sql.Tx)
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return &Error{Description: "Could not create schema", Type: ErrorTypePersistence, Err: err}
			}
		}
		return nil
	})
}
