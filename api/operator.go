package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

//Operator represents a desk staff member who can sign in to the assistant
type Operator struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Hash  []byte `json:"-"`
	Name  string `json:"name"`
}

//Validate validates the given Operator
func (o *Operator) Validate() error {
	if e, err := mail.ParseAddress(fmt.Sprintf("Operator <%s>", o.Email)); err != nil || e.Address != o.Email {
		if err != nil {
			return fmt.Errorf("email (%s) must be a valid email: %v", o.Email, err)
		}
		return fmt.Errorf("email (%s) must be a valid email", o.Email)
	}
	return ValidateString("name", o.Name, 255)
}

//Authenticate returns nil if password matches the Operator's password hash
func (o *Operator) Authenticate(password string) error {
	return bcrypt.CompareHashAndPassword(o.Hash, []byte(password))
}

//ChangePassword updates the password hash to the given password
func (o *Operator) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := o.Authenticate(oldPassword); err != nil {
		return &Error{Description: "Could not authenticate password", Type: ErrorTypeValidation, Err: errors.New("invalid password")}
	}

	if newPassword == "" {
		return &Error{Description: "Could not validate password", Type: ErrorTypeValidation, Err: errors.New("password cannot be empty")}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return &Error{Description: "Could not bcrypt encrypt password", Type: ErrorTypePersistence, Err: err}
	}

	o.Hash = hash

	return UpdateOperator(ctx, o)
}

//CreateOperatorWithCredentials creates a new Operator with the given information and returns its ID, or an error if one occurred
func CreateOperatorWithCredentials(ctx context.Context, email, password, name string) (id int64, err error) {
	if password == "" {
		return 0, &Error{Description: "Could not validate password", Type: ErrorTypeValidation, Err: errors.New("password cannot be empty")}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, &Error{Description: "Could not bcrypt encrypt password", Type: ErrorTypePersistence, Err: err}
	}

	return CreateOperator(ctx, &Operator{Email: email, Hash: hash, Name: name})
}

//EnsureOperator creates the Operator with the given credentials unless one with that email exists
func EnsureOperator(ctx context.Context, email, password, name string) (id int64, created bool, err error) {
	op, err := ReadOperatorByEmail(ctx, email)
	if err != nil {
		return 0, false, err
	}
	if op != nil {
		return op.ID, false, nil
	}

	id, err = CreateOperatorWithCredentials(ctx, email, password, name)
	return id, err == nil, err
}

//CreateOperator creates a new Operator with the given fields (ID is ignored and created) and returns its ID, or an error if one occurred
func CreateOperator(ctx context.Context, op *Operator) (id int64, err error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err = op.Validate(); err != nil {
		return 0, &Error{Description: "Could not validate Operator", Type: ErrorTypeValidation, Err: err}
	}

	res, err := tx.Exec("INSERT INTO operators(email, hash, name) VALUES(?, ?, ?);", op.Email, op.Hash, op.Name)
	if err != nil {
		if isDuplicate(err) {
			dup, newErr := ReadOperatorByEmail(ctx, op.Email)
			if newErr != nil {
				return 0, newErr
			}
			if dup != nil {
				return 0, &Error{Description: "Could not insert Operator", Type: ErrorTypeDuplicate, Err: err, DuplicateID: dup.ID}
			}
		}
		return 0, &Error{Description: "Could not insert Operator", Type: ErrorTypePersistence, Err: err}
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, &Error{Description: "Could not fetch Operator id", Type: ErrorTypePersistence, Err: err}
	}

	return id, nil
}

//ReadOperator returns the Operator with the given id, or nil if it doesn't exist
func ReadOperator(ctx context.Context, id int64) (*Operator, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	op := &Operator{ID: id}

	row := tx.QueryRow("SELECT email, hash, name FROM operators WHERE id=?;", id)
	err := row.Scan(&(op.Email), &(op.Hash), &(op.Name))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Operator(%d)", id), Type: ErrorTypePersistence, Err: err}
	}

	return op, nil
}

//ReadOperatorByEmail returns the Operator with the given email, or nil if it doesn't exist
func ReadOperatorByEmail(ctx context.Context, email string) (*Operator, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	op := &Operator{Email: email}

	row := tx.QueryRow("SELECT id, hash, name FROM operators WHERE email=?;", email)
	err := row.Scan(&(op.ID), &(op.Hash), &(op.Name))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query OperatorByEmail(%s)", email), Type: ErrorTypePersistence, Err: err}
	}

	return op, nil
}

//UpdateOperator updates the fields for the given Operator (using the ID field), or returns an error if one occurred
func UpdateOperator(ctx context.Context, op *Operator) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err := op.Validate(); err != nil {
		return &Error{Description: "Could not validate Operator", Type: ErrorTypeValidation, Err: err}
	}

	_, err := tx.Exec("UPDATE operators SET email=?, hash=?, name=? WHERE id=?;", op.Email, op.Hash, op.Name, op.ID)
	if err != nil {
		if isDuplicate(err) {
			dup, newErr := ReadOperatorByEmail(ctx, op.Email)
			if newErr != nil {
				return newErr
			}
			if dup != nil {
				return &Error{Description: fmt.Sprintf("Could not update Operator(%d)", op.ID), Type: ErrorTypeDuplicate, Err: err, DuplicateID: dup.ID}
			}
		}
		return &Error{Description: fmt.Sprintf("Could not update Operator(%d)", op.ID), Type: ErrorTypePersistence, Err: err}
	}

	return nil
}
