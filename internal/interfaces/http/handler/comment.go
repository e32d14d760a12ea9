// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"ai-gallery-api/internal/application/gallery"
	"ai-gallery-api/internal/interfaces/http/dto"
)

// CommentHandler 评论处理器
type CommentHandler struct {
	galleryService *gallery.Service
}

// NewCommentHandler 创建评论处理器
func NewCommentHandler(galleryService *gallery.Service) *CommentHandler {
	return &CommentHandler{galleryService: galleryService}
}

// Add 添加评论
// @Summary 添加评论
// @Description 为图像添加评论
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "图像 ID"
// @Param body body dto.AddCommentRequest true "评论内容"
// @Success 201 {object} dto.Response[dto.CommentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/images/{id}/comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.galleryService.AddComment(ctx, currentUserID(c), c.Param("id"), req.Text)
	if err != nil {
		respondError(ctx, c, err, "failed to add comment")
		return
	}

	dto.Created(c, dto.ToCommentResponse(comment))
}

// List 评论列表
// @Summary 评论列表
// @Description 获取图像的全部评论
// @Tags Comments
// @Produce json
// @Param id path string true "图像 ID"
// @Success 200 {object} dto.Response[dto.CommentListResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/images/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	comments, err := h.galleryService.ListComments(ctx, c.Param("id"))
	if err != nil {
		respondError(ctx, c, err, "failed to list comments")
		return
	}

	dto.Success(c, dto.ToCommentListResponse(comments))
}

// Delete 删除评论
// @Summary 删除评论
// @Description 删除评论，评论作者或图像创建者可删除
// @Tags Comments
// @Produce json
// @Param cid path string true "评论 ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/comments/{cid} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.galleryService.DeleteComment(ctx, currentUserID(c), c.Param("cid")); err != nil {
		respondError(ctx, c, err, "failed to delete comment")
		return
	}

	dto.NoContent(c)
}
