package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"chatsync/entity"
	"chatsync/internal/lib/api/response"
)

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	render.JSON(w, r, response.Ok(s.st.listConversations(status)))
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Conversation struct {
			AccountID  string `json:"account_id"`
			CustomerID string `json:"customer_id"`
		} `json:"conversation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body"))
		return
	}

	conv := s.st.createConversation(req.Conversation.AccountID, req.Conversation.CustomerID)
	render.JSON(w, r, response.Ok(conv))
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	render.JSON(w, r, response.Ok(s.st.listMessages(id)))
}

func (s *Server) closeConversation(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, entity.ConversationClosed)
}

func (s *Server) reopenConversation(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, entity.ConversationOpen)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id := chi.URLParam(r, "id")
	ok := s.st.update(id, func(c *entity.Conversation) {
		c.Status = status
	})
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Conversation not found"))
		return
	}
	render.JSON(w, r, response.Ok(map[string]string{"id": id, "status": status}))
}

func (s *Server) markPriority(w http.ResponseWriter, r *http.Request) {
	s.setPriority(w, r, entity.PriorityHigh)
}

func (s *Server) removePriority(w http.ResponseWriter, r *http.Request) {
	s.setPriority(w, r, entity.PriorityNormal)
}

func (s *Server) setPriority(w http.ResponseWriter, r *http.Request, priority string) {
	id := chi.URLParam(r, "id")
	ok := s.st.update(id, func(c *entity.Conversation) {
		c.Priority = priority
	})
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Conversation not found"))
		return
	}
	render.JSON(w, r, response.Ok(map[string]string{"id": id, "priority": priority}))
}

func (s *Server) assignUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body"))
		return
	}

	ok := s.st.update(id, func(c *entity.Conversation) {
		c.AssigneeID = req.UserID
	})
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Conversation not found"))
		return
	}
	render.JSON(w, r, response.Ok(map[string]string{"id": id, "assignee_id": req.UserID}))
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.Ok(map[string]string{
		"id":         uuid.NewString(),
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}))
}

func (s *Server) listCustomerConversations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	render.JSON(w, r, response.Ok(s.st.listCustomerConversations(id)))
}
