package ports

import "context"

// UnitOfWork draws transaction boundaries around repository calls.
// One Execute call is one database transaction: fn returning an error
// rolls everything back, nil commits.
//
// The context passed to fn carries the open transaction; every
// repository call inside fn must use that context.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
