package ledger

import (
	"context"
	"errors"
	"fmt"
)

// ContractOp is the closed set of state-changing operations the deployed
// record contract supports. Keeping this an enum instead of a string-keyed
// method lookup means an unsupported operation is a compile-time problem.
type ContractOp int

const (
	OpGrantAccess ContractOp = iota
	OpRevokeAccess
)

// MethodName returns the contract method a ContractOp maps to.
func (op ContractOp) MethodName() (string, error) {
	switch op {
	case OpGrantAccess:
		return "GrantAccess", nil
	case OpRevokeAccess:
		return "RevokeAccess", nil
	default:
		return "", fmt.Errorf("unknown contract operation %d", int(op))
	}
}

func (op ContractOp) String() string {
	name, err := op.MethodName()
	if err != nil {
		return "unknown"
	}
	return name
}

// Gateway isolates all interaction with the external ledger. State-changing
// calls block until the transaction is committed; callers must treat them as
// slow and must not retry automatically on ambiguous failures.
type Gateway interface {
	// DeployRecordContract binds a record to the ledger and returns the
	// address of its access-control contract.
	DeployRecordContract(ctx context.Context, recordID, ownerAddress, storagePointer string) (string, error)

	// InvokeAccess submits a grant or revoke against a deployed contract.
	InvokeAccess(ctx context.Context, contractAddress string, op ContractOp, providerAddress string) error

	// CheckPermission reads whether accessorAddress is authorized on the
	// contract. Read-only; never mutates ledger state.
	CheckPermission(ctx context.Context, contractAddress, accessorAddress string) (bool, error)
}

// Error wraps any failure interacting with the external ledger: missing
// credential, endorsement failure, rejected submission, or timeout. The
// underlying reason is preserved for the caller.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsLedgerError reports whether err originated in the ledger gateway.
func IsLedgerError(err error) bool {
	var le *Error
	return errors.As(err, &le)
}

func wrapErr(op string, err error) error {
	return &Error{Op: op, Err: err}
}
