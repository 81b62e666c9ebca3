package server

import (
	"net/http"

	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	lifecycledomain "github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/Thapthai/app-microservice-sub000/pkg/timerange"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func itemIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil || id == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

type recordUsageBody struct {
	QtyUsed    int64  `json:"qty_used"`
	RecordedBy string `json:"recorded_by_user_id"`
}

func (s *Server) RecordUsage(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var body recordUsageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.lifecyclesvc.RecordUsage(c.Request.Context(), lifecycledomain.RecordUsageRequest{
		ItemID:     itemID,
		QtyUsed:    body.QtyUsed,
		RecordedBy: body.RecordedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

type recordReturnBody struct {
	QtyReturned int64  `json:"qty_returned"`
	Reason      string `json:"return_reason"`
	ReturnedBy  string `json:"return_by_user_id"`
	Note        string `json:"return_note"`
}

func (s *Server) RecordReturn(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var body recordReturnBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.lifecyclesvc.RecordReturn(c.Request.Context(), lifecycledomain.RecordReturnRequest{
		ItemID:      itemID,
		QtyReturned: body.QtyReturned,
		Reason:      episodedomain.ReturnReason(body.Reason),
		ReturnedBy:  body.ReturnedBy,
		Note:        body.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPendingItems(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.lifecyclesvc.ListPendingItems(c.Request.Context(), lifecycledomain.ListPendingRequest{
		Pagination:     page,
		DepartmentCode: c.Query("department_code"),
		PatientHN:      c.Query("patient_hn"),
		Status:         episodedomain.ItemStatus(c.Query("item_status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListReturnHistory(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dateFrom, err := timerange.ParseStart(c.Query("date_from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dateTo, err := timerange.ParseEnd(c.Query("date_to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.lifecyclesvc.ListReturnHistory(c.Request.Context(), lifecycledomain.ListReturnHistoryRequest{
		Pagination:     page,
		DepartmentCode: c.Query("department_code"),
		PatientHN:      c.Query("patient_hn"),
		Reason:         episodedomain.ReturnReason(c.Query("return_reason")),
		DateFrom:       dateFrom,
		DateTo:         dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) QuantityStatistics(c *gin.Context) {
	report, err := s.lifecyclesvc.QuantityStatistics(c.Request.Context(), c.Query("department_code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) CreateEpisode(c *gin.Context) {
	var req lifecycledomain.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	episode, err := s.lifecyclesvc.CreateEpisode(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, episode)
}

func (s *Server) GetEpisode(c *gin.Context) {
	episodeID, ok := itemIDParam(c)
	if !ok {
		return
	}

	episode, err := s.lifecyclesvc.GetEpisode(c.Request.Context(), episodeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, episode)
}

func (s *Server) DeleteEpisode(c *gin.Context) {
	episodeID, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := s.lifecyclesvc.DeleteEpisode(c.Request.Context(), episodeID, c.Query("deleted_by")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
