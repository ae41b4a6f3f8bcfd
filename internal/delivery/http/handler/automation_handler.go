package handler

import (
	"net/http"

	"fleet-reserve/internal/usecase/automation"
	"fleet-reserve/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AutomationHandler struct {
	scheduler *automation.Scheduler
}

func NewAutomationHandler(scheduler *automation.Scheduler) *AutomationHandler {
	return &AutomationHandler{scheduler: scheduler}
}

func (h *AutomationHandler) RegisterRoutes(router *gin.RouterGroup) {
	auto := router.Group("/automation")
	{
		auto.POST("/run", h.RunNow)
	}
}

// RunNow re-runs the full automation pass on demand, ignoring the clock
// windows. Used by the admin surface after fixing data or SMTP problems.
func (h *AutomationHandler) RunNow(c *gin.Context) {
	summary, err := h.scheduler.ForceRun(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Automation pass executed", summary)
}
