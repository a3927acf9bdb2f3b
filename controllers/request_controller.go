package controllers

import (
	"context"
	"net/http"

	"KinderTube/models"
	"KinderTube/services"

	"github.com/gin-gonic/gin"
)

var (
	requestService *services.RequestService
	historyService *services.HistoryService
)

func SetRequestService(service *services.RequestService) {
	requestService = service
}

func SetHistoryService(service *services.HistoryService) {
	historyService = service
}

type videoRequestInput struct {
	VideoID uint `json:"videoId" binding:"required"`
}

// RequestVideo: POST /children/:id/request-video от родителя, /children/request-video от ребенка
func RequestVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var childID uint
	if c.Param("id") != "" {
		if childID, ok = idParam(c, "id"); !ok {
			return
		}
	}
	var input videoRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := requestService.SubmitRequest(c.Request.Context(), who, childID, input.VideoID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "video requested", view)
}

func ResolveVideoRequest(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	childID, ok := idParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := idParam(c, "videoId")
	if !ok {
		return
	}
	var input struct {
		Action models.ApprovalAction `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := requestService.ResolveRequest(c.Request.Context(), who, childID, videoID, input.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "video approved"
	if input.Action == models.ActionReject {
		message = "video rejected"
	}
	respond(c, http.StatusOK, message, detail)
}

func RevokeVideoApproval(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	childID, ok := idParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := idParam(c, "videoId")
	if !ok {
		return
	}

	detail, err := requestService.RevokeApproval(c.Request.Context(), who, childID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "approval revoked", detail)
}

func ApprovedVideos(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	library, err := requestService.ProjectChildLibrary(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", library)
}

func MyRequests(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	requests, err := requestService.ChildRequests(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", requests)
}

func PendingRequests(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	pending, err := requestService.PendingRequests(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", pending)
}

func RecordSearch(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		Query        string `json:"query" binding:"required,max=200"`
		ResultsCount int    `json:"resultsCount" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := historyService.RecordSearch(c.Request.Context(), who, input.Query, input.ResultsCount)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "search recorded", entry)
}

func RecordWatch(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		VideoID       uint `json:"videoId" binding:"required"`
		WatchDuration int  `json:"watchDuration" binding:"min=0"`
		Completed     bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := historyService.RecordWatch(c.Request.Context(), who, input.VideoID, input.WatchDuration, input.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "watch recorded", entry)
}

func GetHistory(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	childID, ok := idParam(c, "id")
	if !ok {
		return
	}
	history, err := historyService.GetHistory(c.Request.Context(), who, childID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", history)
}

func ClearSearchHistory(c *gin.Context) {
	clearHistory(c, historyService.ClearSearch, "search history cleared")
}

func ClearWatchHistory(c *gin.Context) {
	clearHistory(c, historyService.ClearWatch, "watch history cleared")
}

func clearHistory(c *gin.Context, apply func(context.Context, models.Caller, uint) error, message string) {
	who, ok := caller(c)
	if !ok {
		return
	}
	childID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), who, childID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, message, nil)
}
