package cart

import "context"

type Repository interface {
	// Load returns nil when nothing is stored for owner.
	Load(ctx context.Context, owner string) (*Contents, error)
	Save(ctx context.Context, owner string, contents *Contents) error
	Delete(ctx context.Context, owner string) error
}

// UIStore keeps the drawer flag per owner for the life of the process. An
// owner without an entry has the drawer closed.
type UIStore interface {
	Get(owner string) UIState
	Set(owner string, state UIState)
	Reset(owner string)
}
