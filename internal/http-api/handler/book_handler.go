package handler

import (
	"context"
	"net/http"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/response"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	// Public routes
	rg.GET("", h.List)
	rg.GET("/search", h.SearchExternal)
	rg.GET("/:book_id", h.Get)

	// Admin-only routes
	admin := rg.Group("", authMW, middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:book_id", h.Update)
	admin.DELETE("/:book_id", h.Delete)
}

func (h *BookHandler) Create(c *gin.Context) {
	var in dto.CreateBookDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.Create(ctx, in)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusCreated, "Book added successfully", dto.FromBookModel(*book))
}

func (h *BookHandler) List(c *gin.Context) {
	var q dto.BookQueryDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.svc.List(ctx, q)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	data := make([]dto.BookResponse, 0, len(page.Books))
	for _, b := range page.Books {
		data = append(data, dto.FromBookModel(b))
	}

	response.Success(c, http.StatusOK, "Books retrieved successfully", dto.PaginatedBooksResponse{
		Data:       data,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.GetByID(ctx, c.Param("book_id"))
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", dto.FromBookModel(*book))
}

func (h *BookHandler) Update(c *gin.Context) {
	var in dto.UpdateBookDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.Update(ctx, c.Param("book_id"), in)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", dto.FromBookModel(*book))
}

func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("book_id")); err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", nil)
}

func (h *BookHandler) SearchExternal(c *gin.Context) {
	var q dto.ExternalSearchDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.svc.SearchExternal(ctx, q.Query, q.Limit)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "External books retrieved successfully", result)
}
