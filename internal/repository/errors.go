// Package repository holds the MySQL data access layer: the credential
// store (users) and the expense/approval data store.  Point lookups that
// match nothing return sql.ErrNoRows so callers can use errors.Is; every
// other failure is wrapped with the operation that produced it.
package repository

import "errors"

// ErrDuplicateApproval is returned by ApprovalRepo.Create when the expense
// already has its approval row.  Callers treat it as "already done".
var ErrDuplicateApproval = errors.New("approval already exists")
