package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/task-service/internal/export"
	"github.com/Dan9191/task-service/internal/middleware"
	"github.com/Dan9191/task-service/internal/models"
	"github.com/Dan9191/task-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc *service.Service
	db  Pinger
	log *logrus.Logger
}

func NewHandler(svc *service.Service, db Pinger, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, db: db, log: log}
}

// Router wires every route. limiter may be nil, which disables rate limiting
// on /signup and /login; proxies decides whose X-Forwarded-For is believed.
func (h *Handler) Router(limiter middleware.Limiter, proxies middleware.TrustedProxies, corsOrigin string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.log))

	limit := func(next http.HandlerFunc) http.Handler { return next }
	if limiter != nil {
		rl := middleware.RateLimit(limiter, proxies, h.log)
		limit = func(next http.HandlerFunc) http.Handler { return rl(next) }
	}

	// Public routes
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.Handle("/signup", limit(h.Signup)).Methods("POST")
	r.Handle("/login", limit(h.Login)).Methods("POST")
	r.HandleFunc("/auth", h.Auth).Methods("POST")

	// Task routes
	taskRouter := r.PathPrefix("/").Subrouter()
	taskRouter.Use(middleware.AuthMiddleware(h.svc, h.log))
	taskRouter.HandleFunc("/createTask", h.CreateTask).Methods("POST")
	taskRouter.HandleFunc("/updateTask/{id}", h.UpdateTask).Methods("PUT")
	taskRouter.HandleFunc("/deleteTask/{id}", h.DeleteTask).Methods("DELETE")
	taskRouter.HandleFunc("/tasks/{ownerId}", h.ListTasks).Methods("GET")
	taskRouter.HandleFunc("/tasks/{ownerId}/export", h.ExportTasks).Methods("GET")

	// Preflight requests are answered before routing.
	return middleware.CORS(corsOrigin)(r)
}

// Root is the default route
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"msg": "hi"})
}

// Health pings the database
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.WithError(err).Error("Health check failed")
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	token, err := h.svc.Signup(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.respondWithError(w, err, "Error during signup")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Successfully Registered", "token": token})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	token, err := h.svc.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.respondWithError(w, err, "Error during login")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Login Successful", "token": token})
}

type authRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	User  *models.Identity `json:"user"`
	Valid bool             `json:"valid"`
}

// Auth reports whether the posted token is valid and whose it is
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	// A malformed body is treated like an empty token.
	_ = json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()

	id, ok := h.svc.VerifyToken(req.Token)
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, authResponse{User: nil, Valid: false})
		return
	}
	respondWithJSON(w, http.StatusCreated, authResponse{User: &id, Valid: true})
}

// CreateTask handles task creation
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.svc.CreateTask(r.Context(), task)
	if err != nil {
		h.respondWithError(w, err, "Error creating task")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"message": "Task created successfully", "task": created})
}

// UpdateTask applies a partial update to a task
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	patch, err := models.DecodeTaskPatch(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.respondWithError(w, err, "Error updating task")
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), id, patch)
	if err != nil {
		h.respondWithError(w, err, "Error updating task")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"message": "Task updated successfully", "task": task})
}

// DeleteTask removes a task
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		h.respondWithError(w, err, "Error deleting task")
		return
	}
	respondWithMessage(w, http.StatusOK, "Task deleted successfully")
}

// ListTasks returns every task created by ownerId
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	tasks, err := h.svc.CollectTasksByOwner(r.Context(), ownerID)
	if err != nil {
		h.respondWithError(w, err, "Error retrieving tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// ExportTasks returns ownerId's tasks as an XML document
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	tasks, err := h.svc.CollectTasksByOwner(r.Context(), ownerID)
	if err != nil {
		h.respondWithError(w, err, "Error exporting tasks")
		return
	}
	body, err := export.TasksXML(ownerID, tasks)
	if err != nil {
		h.respondWithError(w, err, "Error exporting tasks")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.xml"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// respondWithError maps service errors to status codes. Unclassified errors
// are logged and answered with a generic 500.
func (h *Handler) respondWithError(w http.ResponseWriter, err error, logMsg string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, models.ErrValidation):
		respondWithMessage(w, http.StatusBadRequest, "Invalid request payload")
	case errors.Is(err, models.ErrDuplicateUsername):
		respondWithMessage(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, models.ErrBadCredentials):
		respondWithMessage(w, http.StatusUnauthorized, "Bad Credentials")
	case errors.Is(err, models.ErrAuthInvalid):
		respondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, models.ErrForbidden):
		respondWithMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, models.ErrNotFound):
		respondWithMessage(w, http.StatusNotFound, "Task not found")
	default:
		h.log.WithError(err).Error(logMsg)
		respondWithMessage(w, http.StatusInternalServerError, "Server Internal Error")
	}
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
