package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	pkgAuth "github.com/stockroomhq/stockroom-backend/pkg/auth"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Login authenticates the single configured admin and mints an access token.
// adminHash is the argon2id hash of the configured admin password, computed
// once at startup.
func Login(cfg *config.Config, adminHash string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emailOK := subtle.ConstantTimeCompare([]byte(payload.Email), []byte(cfg.Admin.Email)) == 1
		passwordOK, err := security.VerifyPassword(payload.Password, adminHash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying credentials"))
			return
		}
		if !emailOK || !passwordOK {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token"))
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token:     token,
			ExpiresIn: cfg.JWT.ExpirationMinutes * int(time.Minute/time.Second),
		})
	}
}
