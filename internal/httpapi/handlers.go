package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/muzz-matching/internal/api"
	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/discovery"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// Handler serves the HTTP surface of the match service.
type Handler struct {
	appCtx *app.AppContext
	now    func() time.Time
}

func NewHandler(appCtx *app.AppContext) *Handler {
	return &Handler{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	abortWith(c, err)
}

// bind decodes an optional JSON body into v.
func bind(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		return svcErr.Validation("invalid JSON body")
	}
	return nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, svcErr.Validation(name + " must be an integer")
	}
	return n, nil
}

// queryList accepts both repeated parameters and comma-separated values.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// Discover handles GET /v1/discovery.
func (h *Handler) Discover(c *gin.Context) {
	req := api.DiscoverRequest{ViewerID: viewerID(c), Exclude: queryList(c, "exclude")}

	var err error
	if req.Page, err = queryInt(c, "page"); err != nil {
		h.fail(c, err)
		return
	}
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		h.fail(c, err)
		return
	}
	if raw := c.Query("guardians_only"); raw != "" {
		if req.GuardiansOnly, err = strconv.ParseBool(raw); err != nil {
			h.fail(c, svcErr.Validation("guardians_only must be a boolean"))
			return
		}
	}
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.appCtx.Discovery.Discover(c.Request.Context(), discovery.Request{
		ViewerID:      req.ViewerID,
		Page:          req.Page,
		Limit:         req.Limit,
		Exclude:       req.Exclude,
		GuardiansOnly: req.GuardiansOnly,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DiscoverResponseOf(res, h.now()))
}

// MarkSeen handles POST /v1/discovery/seen.
func (h *Handler) MarkSeen(c *gin.Context) {
	var req api.MarkSeenRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	req.ViewerID = viewerID(c)
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.appCtx.Discovery.MarkSeen(c.Request.Context(), req.ViewerID, req.SeenUserID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}

// Swipe handles POST /v1/swipes.
func (h *Handler) Swipe(c *gin.Context) {
	var req api.SwipeRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	req.ViewerID = viewerID(c)
	req.Direction = strings.ToLower(strings.TrimSpace(req.Direction))
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}

	out, err := h.appCtx.Swipes.Record(c.Request.Context(), req.ViewerID, req.ToUserID, req.Direction, req.IsSuperLike)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if out.MatchCreated {
		status = http.StatusCreated
	}
	c.JSON(status, api.SwipeResponseOf(out))
}

// UndoSwipe handles POST /v1/swipes/undo.
func (h *Handler) UndoSwipe(c *gin.Context) {
	res, err := h.appCtx.Swipes.Undo(c.Request.Context(), viewerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.UndoResponseOf(res))
}

// ListLikedMe handles GET /v1/liked-me.
func (h *Handler) ListLikedMe(c *gin.Context) {
	req := api.LikedMeRequest{ViewerID: viewerID(c), PaginationToken: c.Query("pagination_token")}

	var err error
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		h.fail(c, err)
		return
	}
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.appCtx.Swipes.Admirers(c.Request.Context(), req.ViewerID, req.PaginationToken, req.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.LikedMeResponseOf(page, h.now()))
}

// CountLikedMe handles GET /v1/liked-me/count.
func (h *Handler) CountLikedMe(c *gin.Context) {
	n, err := h.appCtx.Swipes.CountAdmirers(c.Request.Context(), viewerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountLikedMeResponse{Count: n})
}

// Unmatch handles DELETE /v1/matches/:id.
func (h *Handler) Unmatch(c *gin.Context) {
	req := api.UnmatchRequest{ViewerID: viewerID(c), MatchID: c.Param("id")}
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.appCtx.Swipes.Unmatch(c.Request.Context(), req.ViewerID, req.MatchID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}

// Block handles POST /v1/blocks.
func (h *Handler) Block(c *gin.Context) {
	var req api.BlockRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	req.ViewerID = viewerID(c)
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.appCtx.Swipes.Block(c.Request.Context(), req.ViewerID, req.UserID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}

// AuthorizeMessage handles POST /v1/matches/:id/messages.
func (h *Handler) AuthorizeMessage(c *gin.Context) {
	var req api.AuthorizeMessageRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	req.ViewerID = viewerID(c)
	req.MatchID = c.Param("id")
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}

	d, err := h.appCtx.Guardian.AuthorizeMessage(c.Request.Context(), req.MatchID, req.ViewerID, req.Action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.AuthorizeMessageResponse{
		Allowed:          true,
		GuardianInvolved: d.GuardianInvolved,
		Audited:          d.Audited,
	})
}

// UpdatePreferences handles PUT /v1/preferences. The body is the full
// preference set; omitted fields are cleared.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	req := api.UpdatePreferencesRequest{ViewerID: viewerID(c)}
	if err := bind(c, &req.Preferences); err != nil {
		h.fail(c, err)
		return
	}
	if err := api.Validate(req); err != nil {
		h.fail(c, err)
		return
	}

	row, err := h.appCtx.Discovery.UpdatePreferences(c.Request.Context(), req.ViewerID, req.Preferences.Filters())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.PreferencesResponse{Preferences: api.PreferencesOf(row)})
}

// Health handles GET /healthz by pinging the database and Redis.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"db": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := h.appCtx.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["db"] = "unavailable"
		healthy = false
	}
	if err := h.appCtx.RedisCache.Ping(ctx); err != nil {
		checks["redis"] = "unavailable"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
