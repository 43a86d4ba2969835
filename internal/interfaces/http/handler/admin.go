package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lumina/storefront/internal/application/dashboard"
	settingsapp "github.com/lumina/storefront/internal/application/settings"
)

// AdminHandler serves the dashboard figures and store settings
type AdminHandler struct {
	BaseHandler
	dashboardService *dashboard.DashboardService
	settingsService  *settingsapp.SettingsService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(dashboardService *dashboard.DashboardService, settingsService *settingsapp.SettingsService) *AdminHandler {
	return &AdminHandler{
		dashboardService: dashboardService,
		settingsService:  settingsService,
	}
}

// Stats godoc
// @ID           getAdminStats
// @Summary      Dashboard statistics
// @Description  Revenue, order count, active products and conversion rate
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[dashboard.Stats]
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetSettings godoc
// @ID           getSettings
// @Summary      Store settings
// @Description  API keys are masked except their last four characters
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Security     BearerAuth
// @Router       /admin/settings [get]
func (h *AdminHandler) GetSettings(c *gin.Context) {
	current, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, current)
}

// SaveSettings godoc
// @ID           saveSettings
// @Summary      Save store settings
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.SaveSettingsRequest true "Settings"
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/settings [post]
func (h *AdminHandler) SaveSettings(c *gin.Context) {
	var req settingsapp.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	saved, err := h.settingsService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, saved)
}
