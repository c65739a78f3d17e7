package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krishnasingh5/redis-learning/internal/album"
	"github.com/krishnasingh5/redis-learning/internal/cache"
	"github.com/krishnasingh5/redis-learning/internal/httpx"
)

const Welcome = "Welcome to the Redis_Learning Server"

type photoSource interface {
	Photos(ctx context.Context, query url.Values) (json.RawMessage, error)
}

type PhotoHandler struct {
	Album  photoSource
	Cache  *cache.Aside
	Logger *zap.Logger
}

func (h *PhotoHandler) Register(r *gin.Engine) {
	r.GET("/", h.welcome)
	r.GET("/photos", h.listByAlbum)
	r.GET("/photos/:id", h.getByID)
}

// @Summary Welcome message
// @Tags photos
// @Produce json
// @Success 200 {string} string
// @Router / [get]
func (h *PhotoHandler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, Welcome)
}

// listByAlbum serves GET /photos?albumId=<id>. Without albumId the unfiltered
// listing is proxied and cached under "photos". A repeated albumId uses the
// first value only.
//
// @Summary List photos of an album
// @Tags photos
// @Produce json
// @Param albumId query string false "album id"
// @Success 200 {array} object
// @Failure 502 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /photos [get]
func (h *PhotoHandler) listByAlbum(c *gin.Context) {
	albumID, ok := c.GetQuery("albumId")
	if !ok {
		h.serve(c, "photos", url.Values{})
		return
	}
	h.serve(c, AlbumKey(albumID), url.Values{"albumId": {albumID}})
}

// @Summary Get a photo by id
// @Tags photos
// @Produce json
// @Param id path string true "photo id"
// @Success 200 {array} object
// @Failure 502 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /photos/{id} [get]
func (h *PhotoHandler) getByID(c *gin.Context) {
	id := c.Param("id")
	h.serve(c, PhotoKey(id), url.Values{"id": {id}})
}

func (h *PhotoHandler) serve(c *gin.Context, key string, query url.Values) {
	out, err := cache.GetOrSet(c.Request.Context(), h.Cache, key, func(ctx context.Context) (json.RawMessage, error) {
		return h.Album.Photos(ctx, query)
	})
	if err != nil {
		h.fail(c, key, err)
		return
	}
	httpx.RawJSON(c, http.StatusOK, out)
}

func (h *PhotoHandler) fail(c *gin.Context, key string, err error) {
	status, msg := statusFor(err)
	if h.Logger != nil {
		h.Logger.Warn("photo lookup failed",
			zap.String("key", key),
			zap.Int("status", status),
			zap.String("request_id", httpx.RequestIDFrom(c)),
			zap.Error(err),
		)
	}
	httpx.Error(c, status, msg)
}

// statusFor maps err to a status and a fixed client message. The error text
// itself can carry the upstream URL, so it only goes to the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, album.ErrUpstream):
		return http.StatusBadGateway, "upstream unavailable"
	case errors.Is(err, cache.ErrStore):
		return http.StatusServiceUnavailable, "cache unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func AlbumKey(albumID string) string {
	return "photos?albumId=" + albumID
}

func PhotoKey(id string) string {
	return "photos?id=" + id
}
