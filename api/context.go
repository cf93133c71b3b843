package api

type contextKey int

//TransactionKey is the context key for the database transaction of an operation
const TransactionKey contextKey = 0

//OperatorKey is the context key for the authenticated Operator of a request
const OperatorKey contextKey = 1
