package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// respondError maps service errors onto {"detail": ...} responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, detail := http.StatusInternalServerError, "Erreur interne du serveur"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status, detail = http.StatusConflict, "Cet email est déjà utilisé"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, detail = http.StatusUnauthorized, "Email ou mot de passe incorrect"
	case errors.Is(err, domain.ErrUserNotFound):
		status, detail = http.StatusNotFound, "Utilisateur non trouvé"
	case errors.Is(err, domain.ErrProductNotFound):
		status, detail = http.StatusNotFound, "Produit non trouvé"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, detail = http.StatusBadRequest, "Stock insuffisant"
	case errors.Is(err, domain.ErrCartNotFound):
		status, detail = http.StatusNotFound, "Panier non trouvé"
	case errors.Is(err, domain.ErrCartItemNotFound):
		status, detail = http.StatusNotFound, "Produit non trouvé dans le panier"
	case errors.Is(err, domain.ErrOrderNotFound):
		status, detail = http.StatusNotFound, "Commande non trouvée"
	case errors.Is(err, domain.ErrForbidden):
		status, detail = http.StatusForbidden, "Accès refusé"
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"detail": detail})
}

// badRequest reports a body that could not be bound
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
