// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-gallery-api/internal/application/gallery"
	"ai-gallery-api/internal/application/generation"
	"ai-gallery-api/internal/interfaces/http/dto"
)

// ImageHandler 图像处理器
type ImageHandler struct {
	generationService *generation.Service
	galleryService    *gallery.Service
}

// NewImageHandler 创建图像处理器
func NewImageHandler(generationService *generation.Service, galleryService *gallery.Service) *ImageHandler {
	return &ImageHandler{
		generationService: generationService,
		galleryService:    galleryService,
	}
}

// Generate 生成图像
// @Summary 生成图像
// @Description 按提示词生成图像并登记到画廊
// @Tags Images
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "生成请求"
// @Success 201 {object} dto.Response[dto.ImageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/images/generate [post]
func (h *ImageHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	image, err := h.generationService.Generate(ctx, currentUserID(c), req.Prompt)
	if err != nil {
		respondError(ctx, c, err, "image generation failed")
		return
	}

	dto.Created(c, dto.ToImageResponse(image))
}

// List 图像列表
// @Summary 画廊图像列表
// @Description 按创建时间倒序分页获取公开图像
// @Tags Images
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ImageListResponse]
// @Router /v1/images [get]
func (h *ImageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "12"))

	result, err := h.galleryService.ListImages(ctx, page, pageSize)
	if err != nil {
		respondError(ctx, c, err, "failed to list images")
		return
	}

	dto.SuccessWithPage(c, dto.ToImageListResponse(result.Items), dto.ToImagePageMeta(result))
}

// Search 检索图像
// @Summary 检索图像
// @Description 按关键词检索公开图像的提示词与标签
// @Tags Images
// @Produce json
// @Param q query string true "关键词"
// @Param limit query int false "返回条数"
// @Success 200 {object} dto.Response[dto.ImageListResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/images/search [get]
func (h *ImageHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	images, err := h.galleryService.Search(ctx, c.Query("q"), limit)
	if err != nil {
		respondError(ctx, c, err, "search failed")
		return
	}

	dto.Success(c, dto.ToImageListResponse(images))
}

// Get 图像详情
// @Summary 图像详情
// @Description 获取单张图像并累加浏览计数
// @Tags Images
// @Produce json
// @Param id path string true "图像 ID"
// @Success 200 {object} dto.Response[dto.ImageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/images/{id} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	image, err := h.galleryService.GetImage(ctx, c.Param("id"))
	if err != nil {
		respondError(ctx, c, err, "failed to get image")
		return
	}

	dto.Success(c, dto.ToImageResponse(image))
}

// ToggleLike 切换点赞
// @Summary 切换点赞
// @Description 切换当前用户对图像的点赞状态
// @Tags Images
// @Produce json
// @Param id path string true "图像 ID"
// @Success 200 {object} dto.Response[dto.ImageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/images/{id}/like [put]
func (h *ImageHandler) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()

	image, err := h.galleryService.ToggleLike(ctx, currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(ctx, c, err, "failed to toggle like")
		return
	}

	dto.Success(c, dto.ToImageResponse(image))
}

// Delete 删除图像
// @Summary 删除图像
// @Description 删除图像及其评论与存储副本，仅创建者可删除
// @Tags Images
// @Produce json
// @Param id path string true "图像 ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/images/{id} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.galleryService.DeleteImage(ctx, currentUserID(c), c.Param("id")); err != nil {
		respondError(ctx, c, err, "failed to delete image")
		return
	}

	dto.NoContent(c)
}
