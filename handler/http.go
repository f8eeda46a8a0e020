package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"meeting-backend/dto"
	"meeting-backend/service"
)

// HeaderUserID carries the authenticated caller, set by the gateway in front
// of this service.
const HeaderUserID = "X-User-Id"

type HTTPHandler struct {
	meetings     *service.MeetingService
	participants *service.ParticipantService
	waiting      *service.WaitingService
	recordings   *service.RecordingService
}

func NewHTTPHandler(
	meetings *service.MeetingService,
	participants *service.ParticipantService,
	waiting *service.WaitingService,
	recordings *service.RecordingService,
) *HTTPHandler {
	return &HTTPHandler{
		meetings:     meetings,
		participants: participants,
		waiting:      waiting,
		recordings:   recordings,
	}
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/meetings", h.createMeeting)
	api.GET("/meetings/:meetingId", h.getMeeting)
	api.PUT("/meetings/:meetingId", h.updateMeeting)
	api.DELETE("/meetings/:meetingId", h.deleteMeeting)

	api.POST("/meetings/:meetingId/join", h.join)
	api.POST("/meetings/:meetingId/leave", h.leave)
	api.GET("/meetings/:meetingId/participants", h.listParticipants)
	api.PUT("/meetings/:meetingId/media", h.updateMedia)
	api.PUT("/meetings/:meetingId/role", h.setRole)
	api.POST("/meetings/:meetingId/mute", h.forceMute)
	api.POST("/meetings/:meetingId/kick", h.kick)

	api.GET("/meetings/:meetingId/waiting", h.listWaiting)
	api.POST("/meetings/:meetingId/waiting/decision", h.decideAdmission)

	api.POST("/meetings/:meetingId/recordings", h.startRecording)
	api.POST("/meetings/:meetingId/recordings/stop", h.stopRecording)
}

func (h *HTTPHandler) createMeeting(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetings.Create(c.Request.Context(), callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meeting)
}

func (h *HTTPHandler) getMeeting(c *gin.Context) {
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := h.meetings.Get(c.Request.Context(), meetingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (h *HTTPHandler) updateMeeting(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetings.Update(c.Request.Context(), meetingID, callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (h *HTTPHandler) deleteMeeting(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}

	if err := h.meetings.Delete(c.Request.Context(), meetingID, callerID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) join(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.participants.Join(c.Request.Context(), meetingID, callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Status == service.JoinStatusWaiting {
		c.JSON(http.StatusAccepted, gin.H{"status": result.Status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": result.Status, "participant": result.Participant})
}

func (h *HTTPHandler) leave(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.Leave(c.Request.Context(), meetingID, callerID, req.SessionID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) listParticipants(c *gin.Context) {
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}

	participants, err := h.participants.ListParticipants(c.Request.Context(), meetingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (h *HTTPHandler) updateMedia(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.MediaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.participants.UpdateMediaState(c.Request.Context(), meetingID, callerID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

func (h *HTTPHandler) setRole(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.SetRole(c.Request.Context(), meetingID, callerID, req.SessionID, req.Moderator); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) forceMute(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.ForceMuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.ForceMute(c.Request.Context(), meetingID, callerID, req.SessionID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) kick(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.KickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.participants.Kick(c.Request.Context(), meetingID, callerID, req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) listWaiting(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}

	waiting, err := h.waiting.ListWaiting(c.Request.Context(), meetingID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waiting": waiting})
}

func (h *HTTPHandler) decideAdmission(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}
	var req dto.AdmissionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.waiting.Decide(c.Request.Context(), meetingID, callerID, req.UserID, req.Accept)
	if err != nil {
		writeError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"status": "rejected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": result.Status, "participant": result.Participant})
}

func (h *HTTPHandler) startRecording(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	meetingID, ok := meetingID(c)
	if !ok {
		return
	}

	recording, err := h.recordings.Start(c.Request.Context(), meetingID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recording)
}

func (h *HTTPHandler) stopRecording(c *gin.Context) {
	callerID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.StopRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recording, err := h.recordings.Stop(c.Request.Context(), req.RecordingID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recording)
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader(HeaderUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + HeaderUserID + " header"})
		return uuid.Nil, false
	}
	return id, true
}

func meetingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("meetingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.IsDependencyFailure(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
