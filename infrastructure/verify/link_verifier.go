// Package verify confirms citation links against the catalog. Internal deep
// links must be well formed and resolve to a stored resource; external URLs
// only get a scheme check since the catalog has no authority over them.
package verify

import (
	"context"

	"go.uber.org/zap"

	"smartfetch/domain/core/valueobjects"
)

// membership is the slice of the repository the verifier needs
type membership interface {
	HasResource(ctx context.Context, id valueobjects.ResourceID) bool
}

// Verifier implements ports.LinkVerifier over the catalog
type Verifier struct {
	repo   membership
	logger *zap.Logger
}

// NewVerifier creates a link verifier backed by the given store
func NewVerifier(repo membership, logger *zap.Logger) *Verifier {
	return &Verifier{
		repo:   repo,
		logger: logger,
	}
}

// Verify reports whether the link is safe to cite. A malformed or dangling
// link is (false, nil); the error return is reserved for infrastructure
// faults, which an in-memory store cannot produce.
func (v *Verifier) Verify(ctx context.Context, link valueobjects.Link) (bool, error) {
	if link.IsResourcePath() {
		id, ok := link.ResourceID()
		if !ok {
			v.logger.Debug("link rejected: malformed resource id",
				zap.String("link", link.String()),
			)
			return false, nil
		}
		if !v.repo.HasResource(ctx, id) {
			v.logger.Debug("link rejected: id not in store",
				zap.String("link", link.String()),
				zap.String("id", id.String()),
			)
			return false, nil
		}
		return true, nil
	}

	return link.IsExternal(), nil
}
