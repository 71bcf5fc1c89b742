// Package httpapi exposes the REST surface consumed by the SPA client:
// account endpoints, conversation history, and the send-message entry
// point that feeds the delivery service.
package httpapi

import (
	"chat-wire/auth"
	"chat-wire/errors"
	"chat-wire/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	log            *slog.Logger
	authService    services.IAuthService
	chatService    services.IChatService
	cookieDuration time.Duration
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, cookieDuration time.Duration) *Server {
	return &Server{
		log:            log,
		authService:    authService,
		chatService:    chatService,
		cookieDuration: cookieDuration,
	}
}

// Router wires every HTTP route: the public auth endpoints, the
// JWT-protected chat endpoints, the realtime handshake, and the hosted
// uploads directory.
func (s *Server) Router(gateway http.Handler, uploadsDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/check", auth.Middleware(http.HandlerFunc(s.handleCheck)))
	mux.Handle("PUT /api/auth/update-profile", auth.Middleware(http.HandlerFunc(s.handleUpdateProfile)))

	mux.Handle("GET /api/chat/users", auth.Middleware(http.HandlerFunc(s.handleUsers)))
	mux.Handle("GET /api/chat/{id}", auth.Middleware(http.HandlerFunc(s.handleHistory)))
	mux.Handle("POST /api/chat/send/{id}", auth.Middleware(http.HandlerFunc(s.handleSend)))

	mux.Handle("GET /ws", gateway)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Avatar string `json:"avatar"`
}

type sendMessageRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	user, token, err := s.authService.Signup(req.FullName, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.setSessionCookie(w, token)
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	user, token, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.setSessionCookie(w, token)
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	user, err := s.authService.Me(userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserID(r.Context())
	user, err := s.authService.UpdateProfile(r.Context(), userID, req.Avatar)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	users, err := s.chatService.Users(userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	messages, err := s.chatService.History(userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messages)
}

// handleSend is the REST submit path: the response body is the sender's
// copy of the persisted message, the receiver gets the realtime push.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	senderID, _ := auth.UserID(r.Context())
	message, err := s.chatService.Deliver(r.Context(), senderID, r.PathValue("id"), req.Text, req.Image)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, message)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token services.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token.String(),
		Path:     "/",
		MaxAge:   int(s.cookieDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
