package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"text/template"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/korylprince/library-desk-server/api"
)

type handlerResponse struct {
	Code     int
	Body     interface{}
	Operator *api.Operator
	Err      error
}

type returnHandler func(http.ResponseWriter, *http.Request) *handlerResponse

const logTemplate = "{{.Date}} {{.Method}} {{.Path}}{{if .Query}}?{{.Query}}{{end}} {{.Code}} ({{.Status}}){{if .Operator}}, Operator: {{.Operator.ID}}:{{.Operator.Email}}{{end}}{{if .Err}}, Error: {{.Err}}{{end}}\n"

var accessLog = template.Must(template.New("log").Parse(logTemplate))

type logData struct {
	Date     string
	Operator *api.Operator
	Status   string
	Code     int
	Method   string
	Path     string
	Query    string
	Err      error
}

func writeLog(writer io.Writer, r *http.Request, code int, op *api.Operator, err error) {
	if e := accessLog.Execute(writer, &logData{
		Date:     time.Now().Format("2006-01-02:15:04:05 -0700"),
		Operator: op,
		Status:   http.StatusText(code),
		Code:     code,
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    r.URL.RawQuery,
		Err:      err,
	}); e != nil {
		panic(e)
	}
}

func logMiddleware(next returnHandler, writer io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := next(w, r)
		writeLog(writer, r, resp.Code, resp.Operator, resp.Err)
	})
}

func jsonMiddleware(next returnHandler) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var resp *handlerResponse

		if r.Method != "GET" {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				resp = handleError(http.StatusBadRequest, errors.New("Could not parse Content-Type"))
				goto serve
			}
			if mediaType != "application/json" {
				resp = handleError(http.StatusBadRequest, errors.New("Content-Type not application/json"))
				goto serve
			}
		}

		resp = next(w, r)

	serve:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Code)
		e := json.NewEncoder(w)
		err := e.Encode(resp.Body)
		if err != nil {
			resp.Err = fmt.Errorf("Could not encode json: %v", err)
		}
		return resp
	}
}

//authenticate returns the Operator for the session key, or an error response
func authenticate(r *http.Request, key string, s SessionStore, db *sql.DB) (*api.Operator, *handlerResponse) {
	if key == "" {
		return nil, handleError(http.StatusUnauthorized, errors.New("X-Session-Key header empty"))
	}

	sess, err := s.Check(key)
	if err != nil {
		return nil, handleError(http.StatusInternalServerError, fmt.Errorf("Could not check session key: %v", err))
	}
	if sess == nil {
		return nil, handleError(http.StatusUnauthorized, errors.New("Could not find session"))
	}

	var op *api.Operator
	err = api.WithTx(r.Context(), db, func(ctx context.Context) (err error) {
		op, err = api.ReadOperator(ctx, sess.OperatorID)
		return err
	})
	if resp := checkAPIError(err); resp != nil {
		return nil, resp
	}
	if op == nil {
		return nil, handleError(http.StatusUnauthorized, fmt.Errorf("Could not find operator %d", sess.OperatorID))
	}

	return op, nil
}

//authMiddleware reads the Operator in its own transaction so handlers that don't use
//a request transaction never hold a connection
func authMiddleware(next returnHandler, s SessionStore, db *sql.DB) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		op, resp := authenticate(r, r.Header.Get("X-Session-Key"), s, db)
		if resp != nil {
			return resp
		}

		ctx := context.WithValue(r.Context(), api.OperatorKey, op)
		resp = next(w, r.WithContext(ctx))
		resp.Operator = op

		return resp
	}
}

//txMiddleware runs next in a transaction, committing only if the response is successful
func txMiddleware(next returnHandler, db *sql.DB) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		tx, err := db.BeginTx(r.Context(), nil)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not begin transaction: %v", err))
		}

		ctx := context.WithValue(r.Context(), api.TransactionKey, tx)
		resp := next(w, r.WithContext(ctx))

		if resp.Code >= http.StatusBadRequest {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return resp
		}

		if err = tx.Commit(); err != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not commit transaction: %v", err))
		}

		return resp
	}
}

//wsAuthMiddleware authenticates a WebSocket upgrade. Browsers can't set headers on
//WebSocket requests, so the session key may also be given as the key query parameter.
func wsAuthMiddleware(next http.Handler, s SessionStore, db *sql.DB, writer io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Session-Key")
		if key == "" {
			key = r.URL.Query().Get("key")
		}

		op, resp := authenticate(r, key, s, db)
		if resp != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(resp.Code)
			json.NewEncoder(w).Encode(resp.Body)
			writeLog(writer, r, resp.Code, nil, resp.Err)
			return
		}

		ctx := context.WithValue(r.Context(), api.OperatorKey, op)
		m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

		code := m.Code
		if r.Header.Get("Upgrade") != "" && code == http.StatusOK {
			//hijacked connections never call WriteHeader
			code = http.StatusSwitchingProtocols
		}
		writeLog(writer, r, code, op, nil)
	})
}
