package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/models"
	"friendship-service/pkg/response"
)

// MessageAPI is the domain surface the message handlers forward to.
type MessageAPI interface {
	SendMessage(ctx context.Context, msg *models.Message) error
	ReceiveMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	GetMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// AttachmentUploader stores an uploaded file and returns its URL.
type AttachmentUploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type MessageHandler struct {
	messages    MessageAPI
	attachments AttachmentUploader
}

func NewMessageHandler(messages MessageAPI, attachments AttachmentUploader) *MessageHandler {
	return &MessageHandler{messages: messages, attachments: attachments}
}

type sendMessageInput struct {
	Receiver      string `json:"receiver" binding:"required"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl"`
}

type ackMessageInput struct {
	ID      string `json:"id"`
	Sender  string `json:"sender" binding:"required"`
	Content string `json:"content"`
}

// Send godoc
// @Summary Send a message to a friend
// @Tags messages
// @Accept json
// @Produce json
// @Param message body handlers.sendMessageInput true "Message"
// @Success 201 {object} models.Message
// @Failure 403 {object} map[string]interface{}
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	caller := c.GetString("email")
	var input sendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	msg := &models.Message{
		SenderEmail:   caller,
		ReceiverEmail: input.Receiver,
		Content:       input.Content,
		AttachmentURL: input.AttachmentURL,
	}
	if err := h.messages.SendMessage(c.Request.Context(), msg); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Acknowledge godoc
// @Summary Confirm receipt of a message; mirrors MessageReceived to the sender
// @Tags messages
// @Accept json
// @Produce json
// @Param message body handlers.ackMessageInput true "Received message"
// @Success 200 {object} models.Message
// @Failure 403 {object} map[string]interface{}
// @Router /messages/ack [post]
func (h *MessageHandler) Acknowledge(c *gin.Context) {
	caller := c.GetString("email")
	var input ackMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	msg := &models.Message{
		ID:            input.ID,
		SenderEmail:   input.Sender,
		ReceiverEmail: caller,
		Content:       input.Content,
	}
	if err := h.messages.ReceiveMessage(c.Request.Context(), msg); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Conversation godoc
// @Summary List the conversation between the caller and another user
// @Tags messages
// @Produce json
// @Param with query string true "Counterpart email"
// @Success 200 {array} models.Message
// @Router /messages [get]
func (h *MessageHandler) Conversation(c *gin.Context) {
	caller := c.GetString("email")
	with := c.Query("with")
	if with == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "with parameter is required"})
		return
	}

	msgs, err := h.messages.GetMessagesBetween(c.Request.Context(), caller, with)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Get godoc
// @Summary Fetch a single message by id
// @Tags messages
// @Produce json
// @Param id path string true "Message id"
// @Success 200 {object} models.Message
// @Failure 404 {object} map[string]interface{}
// @Router /messages/{id} [get]
func (h *MessageHandler) Get(c *gin.Context) {
	msg, err := h.messages.GetMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Delete godoc
// @Summary Delete a message (explicit delete is the only way history shrinks)
// @Tags messages
// @Produce json
// @Param id path string true "Message id"
// @Success 200
// @Failure 404 {object} map[string]interface{}
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messages.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

// UploadAttachment godoc
// @Summary Upload a message attachment, returning its URL
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Attachment"
// @Success 201 {object} map[string]interface{}
// @Router /messages/attachments [post]
func (h *MessageHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.attachments.Upload(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
