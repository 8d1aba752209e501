package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowi/backend/internal/infrastructure/logger"
	"github.com/flowi/backend/internal/interfaces/http/dto"
)

// OrganizationConfig configures organization scoping
type OrganizationConfig struct {
	// Default is used when the request carries no X-Organization-ID.
	// uuid.Nil makes the header mandatory.
	Default uuid.UUID
	Logger  *zap.Logger
}

// Organization resolves the organization a request acts for and stores it
// in both the gin context and the request context. Every ledger query is
// scoped by it.
func Organization(cfg OrganizationConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		orgID := cfg.Default
		if raw := c.GetHeader(OrganizationHeader); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil || parsed == uuid.Nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeMissingOrganization, "X-Organization-ID must be a UUID", GetRequestID(c)))
				return
			}
			orgID = parsed
		}
		if orgID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeMissingOrganization, "X-Organization-ID header is required", GetRequestID(c)))
			return
		}

		c.Set(OrganizationIDKey, orgID.String())
		ctx, _ := logger.WithOrganizationID(c.Request.Context(), logger.FromContext(c.Request.Context()), orgID.String())
		c.Request = c.Request.WithContext(ctx)

		log.Debug("organization resolved", zap.String("organization_id", orgID.String()))
		c.Next()
	}
}

// GetOrganizationID returns the organization set by Organization, or uuid.Nil
func GetOrganizationID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(OrganizationIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}
