// Package admin 管理员接口：套餐查看、初始化与缓存维护
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PlansHandler 套餐管理处理器
type PlansHandler struct {
	plans    *plans.Store
	profiles *profiles.Service
	log      zerolog.Logger
}

// NewPlansHandler 创建套餐管理处理器
func NewPlansHandler(store *plans.Store, profileSvc *profiles.Service, log zerolog.Logger) *PlansHandler {
	return &PlansHandler{
		plans:    store,
		profiles: profileSvc,
		log:      log.With().Str("component", "admin").Logger(),
	}
}

// ListPlans 列出全部套餐
func (h *PlansHandler) ListPlans(c *gin.Context) {
	list, err := h.plans.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to list plans")
		return
	}
	common.RespondSuccess(c, gin.H{"plans": list})
}

// SeedPlans 表为空时写入套餐定义，重复调用不会产生新数据
func (h *PlansHandler) SeedPlans(c *gin.Context) {
	inserted, err := h.plans.EnsureDefaultPlans(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to seed plans")
		return
	}
	h.log.Info().Int("inserted", inserted).Msg("plans seeded")
	common.RespondSuccess(c, gin.H{"inserted": inserted})
}

// InvalidatePlanCache 删除单个套餐的缓存
func (h *PlansHandler) InvalidatePlanCache(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusBadRequest, "Invalid plan id")
		return
	}

	if err := h.plans.Invalidate(c.Request.Context(), uint(id)); err != nil {
		_ = c.Error(err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to invalidate plan cache")
		return
	}
	common.RespondSuccessMessage(c, "cache invalidated", gin.H{"id": id})
}

type assignPlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// AssignPlan 修改某个用户的套餐
func (h *PlansHandler) AssignPlan(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		common.RespondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req assignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "plan: this field is required")
		return
	}

	plan, err := h.profiles.AssignPlan(c.Request.Context(), uint(userID), strings.TrimSpace(req.Plan))
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			common.RespondError(c, http.StatusNotFound, "Subscription plan not found")
			return
		}
		_ = c.Error(err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to assign plan")
		return
	}
	common.RespondSuccess(c, gin.H{"user_id": userID, "plan": plan.Name})
}
