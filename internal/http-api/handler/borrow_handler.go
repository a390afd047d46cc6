package handler

import (
	"context"
	"net/http"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/response"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type BorrowHandler struct {
	svc service.BookService
}

func NewBorrowHandler(svc service.BookService) *BorrowHandler {
	return &BorrowHandler{svc: svc}
}

// RegisterRoutes attaches the borrow lifecycle endpoints to the api group.
// All of them require an authenticated caller.
func (h *BorrowHandler) RegisterRoutes(api *gin.RouterGroup, authMW gin.HandlerFunc) {
	api.POST("/books/:book_id/borrow", authMW, h.Borrow)
	api.POST("/borrowed-books/:borrow_id/return", authMW, h.Return)
	api.GET("/me/borrowed-books", authMW, h.ListMine)
}

func (h *BorrowHandler) Borrow(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var in dto.BorrowBookDTO
	if err := c.ShouldBindJSON(&in); err != nil && err.Error() != "EOF" {
		// an empty body is fine, notes are optional
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.svc.Borrow(ctx, c.Param("book_id"), userID.(string), in.Notes)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusCreated, "Book borrowed successfully", toBorrowResponse(record))
}

func (h *BorrowHandler) Return(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.svc.Return(ctx, c.Param("borrow_id"), userID.(string))
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Book returned successfully", toBorrowResponse(record))
}

func (h *BorrowHandler) ListMine(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.svc.GetBorrowedBooks(ctx, userID.(string))
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	items := make([]dto.BorrowedBookResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toBorrowResponse(&r))
	}

	response.Success(c, http.StatusOK, "Borrowed books retrieved successfully", dto.BorrowedBooksListResponse{
		Items: items,
		Total: len(items),
	})
}

func toBorrowResponse(record *models.BorrowedBook) dto.BorrowedBookResponse {
	var book models.Book
	if record.Book != nil {
		book = *record.Book
	}
	return dto.FromBorrowModel(*record, book)
}
