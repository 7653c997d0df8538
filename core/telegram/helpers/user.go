package helpers

import "context"

// CurrentSession resolves a Telegram user ID to a backend session via a
// service that implements CheckSession. The generic type T allows different
// bots to supply their own session model.
func CurrentSession[T any](
	ctx context.Context,
	service interface {
		CheckSession(context.Context, int64) (T, error)
	},
	tgID int64,
) (T, error) {
	var zero T
	if service == nil {
		return zero, nil
	}
	return service.CheckSession(ctx, tgID)
}
