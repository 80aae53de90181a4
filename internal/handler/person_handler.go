package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"prodtrack/internal/auth"
	"prodtrack/internal/middleware"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
	"prodtrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PersonFinder looks people up for authentication.
type PersonFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Person, error)
}

// PersonTaskService lists the open tasks of a person.
type PersonTaskService interface {
	TasksForPerson(ctx context.Context, personID string, projectIDs []uuid.UUID) ([]model.TaskView, error)
}

// ProjectLister gives the projects a task listing covers by default.
type ProjectLister interface {
	OpenIDs(ctx context.Context) ([]uuid.UUID, error)
}

var (
	_ PersonFinder      = (*repository.PersonRepository)(nil)
	_ PersonTaskService = (*service.PersonTaskAggregator)(nil)
	_ ProjectLister     = (*repository.ProjectRepository)(nil)
)

type PersonHandler struct {
	persons   PersonFinder
	tasks     PersonTaskService
	projects  ProjectLister
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewPersonHandler(persons PersonFinder, tasks PersonTaskService, projects ProjectLister, jwtSecret string, jwtExpiry time.Duration) *PersonHandler {
	return &PersonHandler{
		persons:   persons,
		tasks:     tasks,
		projects:  projects,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
	}
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PersonResponse представляет данные пользователя в ответе
type PersonResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AuthResponse представляет ответ с токеном
type AuthResponse struct {
	Token  string         `json:"token"`
	Person PersonResponse `json:"person"`
}

// Login проверяет пароль и выдает JWT
//
//	@Summary	Log in
//	@Tags		Persons
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	AuthResponse
//	@Failure	401		{object}	map[string]string
//	@Router		/login [post]
func (h *PersonHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	person, err := h.persons.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		respondError(c, err)
		return
	}
	if person == nil || !person.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.HashedPassword), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, person.ID.String(), person.Role, h.jwtExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		Person: PersonResponse{
			ID:        person.ID.String(),
			FirstName: person.FirstName,
			LastName:  person.LastName,
			Email:     person.Email,
			Role:      person.Role,
		},
	})
}

// GetTasks возвращает незавершенные задачи человека
//
//	@Summary	Open tasks of a person
//	@Tags		Persons
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id			path	string		true	"Person ID"
//	@Param		project_id	query	[]string	false	"Restrict to these projects"
//	@Success	200			{array}	model.TaskView
//	@Router		/persons/{id}/tasks [get]
func (h *PersonHandler) GetTasks(c *gin.Context) {
	personID := c.Param("id")

	// Обычный пользователь видит только свои задачи
	if !middleware.IsManager(c) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok || userID.String() != strings.ToLower(personID) {
			respondError(c, errForbidden)
			return
		}
	}

	h.respondTasks(c, personID)
}

// GetMyTasks возвращает незавершенные задачи текущего пользователя
func (h *PersonHandler) GetMyTasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	h.respondTasks(c, userID.String())
}

func (h *PersonHandler) respondTasks(c *gin.Context, personID string) {
	projectIDs, err := h.projectIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.tasks.TasksForPerson(c.Request.Context(), personID, projectIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.TaskView{}
	}
	c.JSON(http.StatusOK, tasks)
}

// projectIDs reads the project_id filter, defaulting to every open project.
func (h *PersonHandler) projectIDs(c *gin.Context) ([]uuid.UUID, error) {
	raw := c.QueryArray("project_id")
	if len(raw) == 0 {
		return h.projects.OpenIDs(c.Request.Context())
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := repository.ParseID(r, repository.ErrProjectNotFound)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
