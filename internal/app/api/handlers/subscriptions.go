package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duesignal/duesignal/internal/app/service/statistics"
	subsvc "github.com/duesignal/duesignal/internal/app/service/subscription"
	"github.com/duesignal/duesignal/pkg/dates"
	"github.com/duesignal/duesignal/pkg/response"
)

// @Summary      Create Subscription
// @Description  Records a new tracked subscription and derives its reminder date.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateRequest true "Subscription fields"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, subsvc.ErrInvalid) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Update Subscription
// @Description  Applies field changes and recomputes the reminder date in the same write.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Param        id      path string true "Subscription ID"
// @Param        user_id query string true "Owner user ID"
// @Param        request body subscription.UpdateRequest true "Changed fields"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id} [put]
func ApiUpdateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Update(c.Request.Context(), c.Param("id"), c.Query("user_id"), &req)
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrInvalid), errors.Is(err, subsvc.ErrNotFound):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List Subscriptions
// @Description  Lists a user's subscriptions ordered by next due date.
// @Tags         Subscriptions
// @Produce      json
// @Param        user_id query string true "Owner user ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions [get]
func ApiListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "user_id is required"))
			return
		}
		subs, err := svc.ListByUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

// @Summary      Delete Subscription
// @Tags         Subscriptions
// @Produce      json
// @Param        id      path string true "Subscription ID"
// @Param        user_id query string true "Owner user ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id} [delete]
func ApiDeleteSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"), c.Query("user_id"))
		if err != nil {
			if errors.Is(err, subsvc.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      User Spend Summary
// @Description  Returns normalized monthly spend per currency and upcoming renewals.
// @Tags         Subscriptions
// @Produce      json
// @Param        user_id query string true  "Owner user ID"
// @Param        days    query int    false "Upcoming horizon in days (default 30)"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/summary [get]
func ApiUserSummary(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "user_id is required"))
			return
		}
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		summary, err := svc.UserSummary(c.Request.Context(), userID, dates.Today(time.UTC).String(), days)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(summary))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service, stats *statistics.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(svc))
	r.GET("/subscriptions", ApiListSubscriptions(svc))
	r.GET("/subscriptions/summary", ApiUserSummary(stats))
	r.PUT("/subscriptions/:id", ApiUpdateSubscription(svc))
	r.DELETE("/subscriptions/:id", ApiDeleteSubscription(svc))
}
