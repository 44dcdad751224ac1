package intake

import (
	"encoding/json"

	"github.com/doctorvirtual/api/model"
	"github.com/doctorvirtual/api/services"
	"github.com/doctorvirtual/api/utils/middleware"
	"github.com/doctorvirtual/api/utils/response"
	"github.com/doctorvirtual/api/utils/session"
	"github.com/doctorvirtual/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IntakeHandler collects the structured patient context.
type IntakeHandler struct {
	db        *gorm.DB
	sessions  *session.Manager
	validator *validation.Validator
	log       *zap.Logger
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(db *gorm.DB, sessions *session.Manager, log *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		db:        db,
		sessions:  sessions,
		validator: validation.NewValidator(),
		log:       log,
	}
}

// IntakeRequest carries the intake form fields. Everything is free text
// and optional; the injected block renders empty fields as empty lines.
type IntakeRequest struct {
	Name     string `json:"name" form:"name" validate:"max=200"`
	Age      string `json:"age" form:"age" validate:"max=20"`
	Gender   string `json:"gender" form:"gender" validate:"max=50"`
	Symptoms string `json:"symptoms" form:"symptoms" validate:"max=2000"`
	Duration string `json:"duration" form:"duration" validate:"max=200"`
}

// Page serves the intake form.
func (h *IntakeHandler) Page(c *fiber.Ctx) error {
	return c.SendFile("./web/static/intake.html")
}

// Submit stores the intake into the session, re-arming the one-shot
// injection, then sends the caller on to chat. For authenticated users the
// submission is also recorded server-side for later prefill; that write is
// best-effort.
func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	var req IntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	sess := h.sessions.Load(c)
	services.SubmitIntake(sess, session.Intake{
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Symptoms: req.Symptoms,
		Duration: req.Duration,
	})

	if err := h.sessions.Save(c, sess); err != nil {
		return response.InternalServerError(c, "Failed to persist session")
	}

	if sess.IsAuthenticated() {
		h.persistRecord(c, sess.UserID, sess.Intake)
	}

	if c.Accepts("html", "json") == "json" {
		return response.SuccessWithMessage(c, "Intake recorded", fiber.Map{"redirect": "/chat"})
	}
	return c.Redirect("/chat", fiber.StatusFound)
}

// Latest returns the newest stored intake for the authenticated user, for
// prefill on a fresh session.
func (h *IntakeHandler) Latest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var record model.IntakeRecord
	if err := h.db.Where("user_id = ?", user.ID).Order("created_at DESC").First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "No intake on file")
		}
		return response.InternalServerError(c, "Failed to load intake")
	}

	var fields session.Intake
	if err := json.Unmarshal(record.Fields, &fields); err != nil {
		return response.InternalServerError(c, "Failed to decode intake")
	}
	return response.Success(c, fields)
}

func (h *IntakeHandler) persistRecord(c *fiber.Ctx, userID uint, intake *session.Intake) {
	payload, err := json.Marshal(intake)
	if err != nil {
		h.log.Warn("intake record marshal failed", zap.Error(err))
		return
	}

	record := model.IntakeRecord{
		UserID: userID,
		Fields: payload,
	}
	if err := h.db.Create(&record).Error; err != nil {
		h.log.Warn("intake record persist failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}
