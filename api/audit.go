package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//AuditMessage is a chat message recorded for a session
type AuditMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"column:session_id" json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

//TableName implements gorm's Tabler
func (AuditMessage) TableName() string { return "messages" }

//AuditToolCall is a tool invocation recorded for a session
type AuditToolCall struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"column:session_id" json:"session_id"`
	Name       string    `json:"name"`
	ArgsJSON   string    `gorm:"column:args_json" json:"args_json"`
	ResultJSON string    `gorm:"column:result_json" json:"result_json"`
	CreatedAt  time.Time `json:"created_at"`
}

//TableName implements gorm's Tabler
func (AuditToolCall) TableName() string { return "tool_calls" }

//AuditLog appends chat messages and tool calls per session. Writes never fail the caller:
//errors are logged and dropped.
type AuditLog struct {
	db  *gorm.DB
	log *slog.Logger
}

//NewAuditLog returns an AuditLog sharing the given connection pool
func NewAuditLog(db *sql.DB, dialect Dialect, log *slog.Logger) (*AuditLog, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Dialector{Conn: db}
	case DialectMySQL:
		dialector = gormmysql.New(gormmysql.Config{Conn: db})
	default:
		return nil, fmt.Errorf("no audit log for dialect %q", dialect)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("could not open audit log: %w", err)
	}

	return &AuditLog{db: gdb, log: log}, nil
}

//Message records a chat message for the session
func (a *AuditLog) Message(ctx context.Context, sessionID, role, content string) {
	m := &AuditMessage{SessionID: sessionID, Role: role, Content: content}
	if err := a.db.WithContext(ctx).Create(m).Error; err != nil {
		a.log.Warn("could not save message", "session", sessionID, "role", role, "err", err)
	}
}

//ToolCall records a tool invocation and its result for the session
func (a *AuditLog) ToolCall(ctx context.Context, sessionID, name string, args, result interface{}) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		a.log.Warn("could not encode tool call arguments", "session", sessionID, "tool", name, "err", err)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		a.log.Warn("could not encode tool call result", "session", sessionID, "tool", name, "err", err)
		return
	}

	c := &AuditToolCall{SessionID: sessionID, Name: name, ArgsJSON: string(argsJSON), ResultJSON: string(resultJSON)}
	if err = a.db.WithContext(ctx).Create(c).Error; err != nil {
		a.log.Warn("could not save tool call", "session", sessionID, "tool", name, "err", err)
	}
}

//Messages returns the recorded messages for the session in order
func (a *AuditLog) Messages(ctx context.Context, sessionID string) ([]*AuditMessage, error) {
	msgs := make([]*AuditMessage, 0)
	if err := a.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&msgs).Error; err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query messages for session %s", sessionID), Type: ErrorTypePersistence, Err: err}
	}
	return msgs, nil
}

//ToolCalls returns the recorded tool calls for the session in order
func (a *AuditLog) ToolCalls(ctx context.Context, sessionID string) ([]*AuditToolCall, error) {
	calls := make([]*AuditToolCall, 0)
	if err := a.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&calls).Error; err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query tool calls for session %s", sessionID), Type: ErrorTypePersistence, Err: err}
	}
	return calls, nil
}
