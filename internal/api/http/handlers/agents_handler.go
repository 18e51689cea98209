package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deskhive/ticketing/internal/api/dto"
	"github.com/deskhive/ticketing/internal/domain"
	"github.com/deskhive/ticketing/internal/service"
	apperrors "github.com/deskhive/ticketing/pkg/util"
)

// AgentsHandler exposes agent registration and login.
type AgentsHandler struct {
	auth *service.AuthService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(authService *service.AuthService) *AgentsHandler {
	return &AgentsHandler{auth: authService}
}

// Register POST /auth/agents/register.
func (h *AgentsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	agent, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": agentResponse(agent)})
}

// Login POST /auth/agents/login.
func (h *AgentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, expiresAt, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}})
}

func agentResponse(agent *domain.Agent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:        agent.ID,
		Name:      agent.Name,
		Email:     agent.Email,
		CreatedAt: agent.CreatedAt,
	}
}
