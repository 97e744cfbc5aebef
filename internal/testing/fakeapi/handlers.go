package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/urbanflow/client/internal/models"
)

func (s *Server) postLogin(c *gin.Context) {

	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Malformed credentials."})
		return
	}

	s.lock.Lock()
	acct, ok := s.accounts[strings.ToLower(request.Email)]
	s.lock.Unlock()

	if !ok || acct.password != request.Password {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "No active account found with the given credentials",
		})
		return
	}

	s.respondWithTokens(c, http.StatusOK, acct.user)
}

func (s *Server) postRegister(c *gin.Context) {

	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Email) == 0 || len(request.Password) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"email":    []string{"This field is required."},
			"password": []string{"This field is required."},
		})
		return
	}

	email := strings.ToLower(request.Email)

	s.lock.Lock()
	if _, exists := s.accounts[email]; exists {
		s.lock.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{
			"email": []string{"user with this email already exists."},
		})
		return
	}
	user := s.addAccount(email, request.Password, models.User{
		Username:  request.Username,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Role:      request.Role,
	})
	s.lock.Unlock()

	s.respondWithTokens(c, http.StatusCreated, user)
}

func (s *Server) respondWithTokens(c *gin.Context, status int, user models.User) {

	access, err := s.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(status, models.AuthResponse{
		Access:  access,
		Refresh: uuid.NewString(),
		User:    user,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet("user"))
}

func (s *Server) getProjects(c *gin.Context) {

	status := c.Query("status")

	s.lock.Lock()
	results := []gin.H{}
	for _, project := range s.projects {
		if len(status) > 0 && project["status"] != status {
			continue
		}
		results = append(results, project)
	}
	s.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) findProject(id string) (gin.H, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, project := range s.projects {
		if project["id"] == id {
			return project, true
		}
	}
	return nil, false
}

func (s *Server) getProject(c *gin.Context) {
	project, ok := s.findProject(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) postProject(c *gin.Context) {

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project payload"})
		return
	}

	if title, _ := payload["title"].(string); len(title) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"title": []string{"This field is required."}})
		return
	}

	project := gin.H{}
	for key, value := range payload {
		project[key] = value
	}
	project["id"] = uuid.NewString()
	project["status"] = models.ProjectStatusProposed

	s.lock.Lock()
	s.projects = append(s.projects, project)
	s.lock.Unlock()

	c.JSON(http.StatusCreated, project)
}

func (s *Server) getProjectSentiment(c *gin.Context) {
	if _, ok := s.findProject(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":  c.Param("id"),
		"positive": 12,
		"neutral":  4,
		"negative": 2,
	})
}

func (s *Server) getProjectDashboard(c *gin.Context) {
	if _, ok := s.findProject(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":        c.Param("id"),
		"feedback_count": 18,
		"average_rating": 4.2,
	})
}

func (s *Server) getProjectFeedback(c *gin.Context) {
	if _, ok := s.findProject(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, []gin.H{
		{"project": c.Param("id"), "comment": "Long overdue", "rating": 5},
	})
}

func (s *Server) postFeedback(c *gin.Context) {

	var request models.FeedbackRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Project) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"project": []string{"This field is required."}})
		return
	}

	if _, ok := s.findProject(request.Project); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      uuid.NewString(),
		"project": request.Project,
		"comment": request.Comment,
		"rating":  request.Rating,
	})
}

func (s *Server) getBuildings(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{"id": BuildingID, "name": "Central Library", "floors": 4},
	})
}

func (s *Server) getBuilding(c *gin.Context) {
	if c.Param("id") != BuildingID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": BuildingID, "name": "Central Library", "floors": 4})
}

func (s *Server) getDashboard(c *gin.Context) {
	s.lock.Lock()
	total := len(s.projects)
	s.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"district":       c.Query("district"),
		"total_projects": total,
	})
}

func (s *Server) getStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"projects": 2,
		"feedback": 18,
		"users":    1,
	})
}

func (s *Server) getPayments(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{})
}
