package chaincode

import "errors"

// Sentinel errors are wrapped as "the asset <id> <err>" so the messages read
// the same to clients while staying matchable with errors.Is.
var (
	ErrAssetExists   = errors.New("already exists")
	ErrAssetNotFound = errors.New("does not exist")

	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownTransaction = errors.New("unknown transaction")
)
