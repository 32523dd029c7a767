package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/errors"
	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/ranking"
	"github.com/zfogg/cadence/internal/repository"
	"github.com/zfogg/cadence/internal/storage"
	"github.com/zfogg/cadence/internal/util"
)

// respondError maps service and repository errors onto API errors
func respondError(c *gin.Context, err error, operation string) {
	if apiErr, ok := errors.As(err); ok {
		util.RespondWithAPIError(c, apiErr)
		return
	}
	if apiErr := errors.FromContext(err, operation); apiErr != nil {
		util.RespondWithAPIError(c, apiErr)
		return
	}

	switch {
	case stderrors.Is(err, repository.ErrSongNotFound), stderrors.Is(err, storage.ErrObjectNotFound):
		util.RespondNotFound(c, "song")
	case stderrors.Is(err, storage.ErrStorageUnavailable):
		util.RespondWithAPIError(c, errors.ServiceUnavailable("audio storage"))
	case stderrors.Is(err, repository.ErrUserNotFound):
		util.RespondWithAPIError(c, errors.Unauthorized("user does not exist"))
	case stderrors.Is(err, repository.ErrAlreadyInPlaylist),
		stderrors.Is(err, repository.ErrNotInPlaylist),
		stderrors.Is(err, repository.ErrUsernameTaken),
		stderrors.Is(err, repository.ErrEmailTaken):
		util.RespondWithAPIError(c, errors.Conflict(err.Error()))
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		util.RespondWithAPIError(c, errors.Unauthorized("incorrect password"))
	case stderrors.Is(err, auth.ErrPasswordMismatch),
		stderrors.Is(err, repository.ErrInvalidInput),
		stderrors.Is(err, ranking.ErrInvalidInput):
		util.RespondBadRequest(c, err.Error())
	default:
		util.RespondInternalError(c, "failed to "+operation, err)
	}
}

// songIDParam validates the :id path parameter, responding 400 when malformed
func songIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		util.RespondBadRequest(c, "invalid song id")
		return "", false
	}
	return id, true
}

// songsResponse wraps songs the way every listing endpoint returns them
func songsResponse(songs []models.Song) gin.H {
	if songs == nil {
		songs = []models.Song{}
	}
	return gin.H{"songs": songs, "count": len(songs)}
}
