package controllers

import (
	"net/http"

	"KinderTube/models"
	"KinderTube/services"

	"github.com/gin-gonic/gin"
)

var videoService *services.VideoService

func SetVideoService(service *services.VideoService) {
	videoService = service
}

func ListVideos(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var category models.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := models.ParseCategory(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		category = parsed
	}
	page, err := videoService.ListPublic(c.Request.Context(), who, models.VideoFilter{
		Category: category,
		Search:   c.Query("search"),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 12),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", page)
}

func MyVideos(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	videos, err := videoService.ListMine(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", videos)
}

func UploadVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input struct {
		Title       string   `json:"title" binding:"required,max=100"`
		Description string   `json:"description" binding:"max=500"`
		Category    string   `json:"category" binding:"category"`
		AgeMin      int      `json:"ageMin" binding:"min=0,max=18"`
		AgeMax      int      `json:"ageMax" binding:"min=0,max=18"`
		Tags        []string `json:"tags"`
		Thumbnail   string   `json:"thumbnail"`
		Duration    int      `json:"duration" binding:"min=0"`
		IsPublic    *bool    `json:"isPublic"`
		Filename    string   `json:"filename" binding:"required"`
		ContentType string   `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := videoService.Upload(c.Request.Context(), who, services.UploadInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    models.Category(input.Category),
		AgeMin:      input.AgeMin,
		AgeMax:      input.AgeMax,
		Tags:        input.Tags,
		Thumbnail:   input.Thumbnail,
		Duration:    input.Duration,
		IsPublic:    input.IsPublic,
		Filename:    input.Filename,
		ContentType: input.ContentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "video uploaded, waiting for moderation", result)
}

func GetVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	video, err := videoService.Get(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", video)
}

func UpdateVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Category    *string  `json:"category" binding:"omitempty,category"`
		AgeMin      *int     `json:"ageMin"`
		AgeMax      *int     `json:"ageMax"`
		Tags        []string `json:"tags"`
		Thumbnail   *string  `json:"thumbnail"`
		IsPublic    *bool    `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	update := services.VideoUpdate{
		Title:       input.Title,
		Description: input.Description,
		AgeMin:      input.AgeMin,
		AgeMax:      input.AgeMax,
		Tags:        input.Tags,
		Thumbnail:   input.Thumbnail,
		IsPublic:    input.IsPublic,
	}
	if input.Category != nil {
		category := models.Category(*input.Category)
		update.Category = &category
	}

	video, err := videoService.Update(c.Request.Context(), who, id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "video updated", video)
}

func DeleteVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := videoService.Delete(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "video deleted", nil)
}

func LikeVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := videoService.Like(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", result)
}

func AddComment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Text string `json:"text" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	comment, err := videoService.AddComment(c.Request.Context(), who, id, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "comment added", comment)
}

func ListComments(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	comments, err := videoService.Comments(c.Request.Context(), who, id, intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", comments)
}

// StreamVideo редиректит на временную ссылку в хранилище
func StreamVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	url, err := videoService.Stream(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func ModerateVideo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	video, err := videoService.Moderate(c.Request.Context(), who, id, *input.Approved)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "video moderated", video)
}
