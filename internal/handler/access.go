package handler

import (
	"context"

	"prodtrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessPolicy decides whether a restricted person may see a project's tasks.
type AccessPolicy interface {
	HasTaskRelated(ctx context.Context, personID, projectID uuid.UUID) (bool, error)
}

// checkProjectAccess lets managers through and asks the policy for everyone else.
func checkProjectAccess(c *gin.Context, policy AccessPolicy, projectID uuid.UUID) error {
	if middleware.IsManager(c) {
		return nil
	}
	personID, ok := middleware.CurrentUserID(c)
	if !ok {
		return errForbidden
	}
	allowed, err := policy.HasTaskRelated(c.Request.Context(), personID, projectID)
	if err != nil {
		return err
	}
	if !allowed {
		return errForbidden
	}
	return nil
}
