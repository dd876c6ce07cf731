package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// APIResponse is the uniform JSON envelope of the /api surface. Domain
// failures ride in it with HTTP 200; only unexpected errors map to 5xx.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Commands bundles the verification state machine handlers the HTTP
// surface dispatches into.
type Commands struct {
	IssueSignupCode         *IssueSignupCodeHandler
	ConfirmSignupCode       *ConfirmSignupCodeHandler
	ResendSignupCode        *ResendSignupCodeHandler
	InitializePasswordReset *InitializePasswordResetHandler
	VerifyPasswordResetCode *VerifyPasswordResetCodeHandler
	FinalizePasswordReset   *FinalizePasswordResetHandler
}

func (c Commands) validate() {
	if c.IssueSignupCode == nil || c.ConfirmSignupCode == nil || c.ResendSignupCode == nil ||
		c.InitializePasswordReset == nil || c.VerifyPasswordResetCode == nil || c.FinalizePasswordReset == nil {
		panic("identity: controller is missing command handlers")
	}
}

// Controller exposes the account API over fiber.
type Controller struct {
	Logger   Logger
	Auther   Authenticator
	Commands Commands
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewController(auther Authenticator, commands Commands, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:   defLogger{},
		Auther:   auther,
		Commands: commands,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("identity: controller is missing an authenticator")
	}
	c.Commands.validate()

	return c
}

// RegisterRoutes mounts the /api surface.
func (a *Controller) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/register", a.Register)
	api.Post("/verify-otp", a.VerifyOTP)
	api.Post("/resend-otp", a.ResendOTP)
	api.Post("/login", a.Login)
	api.Post("/forgot-password", a.ForgotPassword)
	api.Post("/verify-reset-otp", a.VerifyResetOTP)
	api.Post("/reset-password", a.ResetPassword)
}

// RegisterRequest payload
type RegisterRequest struct {
	FullName string `form:"fullname" json:"fullname"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.IssueSignupCode.Execute(ctx.UserContext(), IssueSignupCodeMessage{
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
	})

	switch {
	case err == nil:
		return a.ok(ctx, "OTP sent to your email.")
	case HasTextCode(err, TextCodeDuplicateAccount):
		return a.fail(ctx, "Email already registered.")
	default:
		return a.internal(ctx, err)
	}
}

// VerifyOTPRequest payload
type VerifyOTPRequest struct {
	Email string `form:"email" json:"email"`
	OTP   string `form:"otp" json:"otp"`
}

func (r VerifyOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required),
	)
}

func (a *Controller) VerifyOTP(ctx *fiber.Ctx) error {
	payload := new(VerifyOTPRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.ConfirmSignupCode.Execute(ctx.UserContext(), ConfirmSignupCodeMessage{
		Email: payload.Email,
		Code:  payload.OTP,
	})

	switch {
	case err == nil:
		return a.ok(ctx, "OTP verified. Proceed to details page.")
	case HasTextCode(err, TextCodeAccountNotFound):
		return a.fail(ctx, "User not found.")
	case HasTextCode(err, TextCodeCodeMismatch):
		return a.fail(ctx, "Incorrect OTP.")
	default:
		return a.internal(ctx, err)
	}
}

// ResendOTPRequest payload
type ResendOTPRequest struct {
	Email string `form:"email" json:"email"`
}

func (r ResendOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *Controller) ResendOTP(ctx *fiber.Ctx) error {
	payload := new(ResendOTPRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.ResendSignupCode.Execute(ctx.UserContext(), ResendSignupCodeMessage{
		Email: payload.Email,
	})

	switch {
	case err == nil:
		return a.ok(ctx, "New OTP sent successfully!")
	case HasTextCode(err, TextCodeAccountNotFound):
		return a.fail(ctx, "User not found.")
	default:
		return a.internal(ctx, err)
	}
}

// LoginRequest payload. The identifier field is named username for
// compatibility with existing clients; its value is the account email.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) Login(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	token, err := a.Auther.Login(ctx.UserContext(), payload.Username, payload.Password)

	switch {
	case err == nil:
		return ctx.JSON(APIResponse{Success: true, Token: token})
	case HasTextCode(err, TextCodeAccountNotFound):
		return a.fail(ctx, "User not found.")
	case HasTextCode(err, TextCodeBadCredentials):
		return a.fail(ctx, "Incorrect password.")
	case HasTextCode(err, TextCodeNotVerified):
		return a.fail(ctx, "Please verify your OTP first.")
	default:
		return a.internal(ctx, err)
	}
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *Controller) ForgotPassword(ctx *fiber.Ctx) error {
	payload := new(ForgotPasswordRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.InitializePasswordReset.Execute(ctx.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	})

	switch {
	case err == nil:
		return a.ok(ctx, "Password reset OTP sent to your email.")
	case HasTextCode(err, TextCodeAccountNotFound):
		return a.fail(ctx, "No account found with this email.")
	default:
		return a.internal(ctx, err)
	}
}

// VerifyResetOTPRequest payload
type VerifyResetOTPRequest struct {
	Email string `form:"email" json:"email"`
	OTP   string `form:"otp" json:"otp"`
}

func (r VerifyResetOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required),
	)
}

func (a *Controller) VerifyResetOTP(ctx *fiber.Ctx) error {
	payload := new(VerifyResetOTPRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.VerifyPasswordResetCode.Execute(ctx.UserContext(), VerifyPasswordResetCodeMessage{
		Email: payload.Email,
		Code:  payload.OTP,
	})

	switch {
	case err == nil:
		return a.ok(ctx, "OTP verified. Proceed to reset password.")
	case HasTextCode(err, TextCodeAccountNotFound):
		return a.fail(ctx, "User not found.")
	case HasTextCode(err, TextCodeCodeMismatch):
		return a.fail(ctx, "Invalid OTP.")
	default:
		return a.internal(ctx, err)
	}
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Email       string `form:"email" json:"email"`
	NewPassword string `form:"new_password" json:"new_password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *Controller) ResetPassword(ctx *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.fail(ctx, "Invalid request payload.")
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err.Error())
	}

	err := a.Commands.FinalizePasswordReset.Execute(ctx.UserContext(), FinalizePasswordResetMessage{
		Email:       payload.Email,
		NewPassword: payload.NewPassword,
	})

	if err != nil {
		return a.internal(ctx, err)
	}

	return a.ok(ctx, "Password reset successful! You can login now.")
}

func (a *Controller) ok(ctx *fiber.Ctx, message string) error {
	return ctx.JSON(APIResponse{Success: true, Message: message})
}

func (a *Controller) fail(ctx *fiber.Ctx, message string) error {
	return ctx.JSON(APIResponse{Success: false, Message: message})
}

func (a *Controller) internal(ctx *fiber.Ctx, err error) error {
	a.Logger.Error("request failed: %v", err)
	return ctx.Status(fiber.StatusInternalServerError).
		JSON(APIResponse{Success: false, Message: "Something went wrong. Please try again."})
}
