package account

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-account/middleware/authgate"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the body returned for every failed API call.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// MessageResponse is the body for operations that return no record.
type MessageResponse struct {
	Message string `json:"message"`
}

const (
	MsgPasswordChanged     = "Password changed successfully"
	MsgProfileUpdated      = "Profile updated successfully"
	MsgAccountDeactivated  = "Account deactivated successfully"
	MsgAccountReactivated  = "Account reactivated successfully"
	MsgDeletionScheduled   = "Account scheduled for deletion"
	MsgRegistrationSuccess = "User registered successfully"
)

// AccountView is the public projection of an Account record.
type AccountView struct {
	ID            string   `json:"id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone_number,omitempty"`
	DateOfBirth   string   `json:"date_of_birth,omitempty"`
	Enabled       bool     `json:"enabled"`
	EmailVerified bool     `json:"email_verified"`
	PhoneVerified bool     `json:"phone_verified"`
	Roles         []string `json:"roles,omitempty"`
}

func NewAccountView(record *Account) AccountView {
	view := AccountView{
		ID:            record.ID.String(),
		FirstName:     record.FirstName,
		LastName:      record.LastName,
		Email:         record.Email,
		Phone:         record.Phone,
		Enabled:       record.Enabled,
		EmailVerified: record.EmailVerified,
		PhoneVerified: record.PhoneVerified,
		Roles:         record.Authorities(),
	}

	if record.DateOfBirth != nil {
		view.DateOfBirth = record.DateOfBirth.Format("2006-01-02")
	}

	return view
}

type AccountControllerRoutes struct {
	Login      string
	Register   string
	Refresh    string
	Me         string
	Password   string
	Deactivate string
	Reactivate string
	Delete     string
}

type AccountController struct {
	Debug        bool
	Logger       Logger
	Lifecycle    *Lifecycle
	Auther       *Authenticator
	Repo         RepositoryManager
	Routes       *AccountControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AccountControllerOption func(*AccountController) *AccountController

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

func WithControllerLifecycle(lifecycle *Lifecycle) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Lifecycle = lifecycle
		return c
	}
}

func WithControllerAuthenticator(auther *Authenticator) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger: defLogger{},
		Routes: &AccountControllerRoutes{
			Login:      "/auth/login",
			Register:   "/auth/register",
			Refresh:    "/auth/refresh",
			Me:         "/users/me",
			Password:   "/users/me/password",
			Deactivate: "/users/me/deactivate",
			Reactivate: "/users/me/reactivate",
			Delete:     "/users/me/delete",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.HandleError
	}

	if c.Lifecycle == nil {
		panic("Missing Lifecycle in account controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in account controller...")
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	return c
}

// RegisterAccountRoutes mounts the API under the router's current group,
// usually /api/v1.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) *AccountController {
	controller := NewAccountController(opts...)

	app.Post(controller.Routes.Login, controller.Login).SetName("auth.login")
	app.Post(controller.Routes.Register, controller.Register).SetName("auth.register")
	app.Post(controller.Routes.Refresh, controller.Refresh).SetName("auth.refresh")

	app.Get(controller.Routes.Me, controller.Me).SetName("users.me.get")
	app.Put(controller.Routes.Me, controller.UpdateProfile).SetName("users.me.put")
	app.Put(controller.Routes.Password, controller.ChangePassword).SetName("users.me.password")
	app.Post(controller.Routes.Deactivate, controller.Deactivate).SetName("users.me.deactivate")
	app.Post(controller.Routes.Reactivate, controller.Reactivate).SetName("users.me.reactivate")
	app.Delete(controller.Routes.Delete, controller.RequestDeletion).SetName("users.me.delete")

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (a *AccountController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse login payload"))
	}

	if payload.Identifier == "" || payload.Password == "" {
		return a.ErrorHandler(ctx, goerrors.New("identifier and password are required", goerrors.CategoryValidation))
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		a.Logger.Error("login error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	})
}

func (a *AccountController) Register(ctx router.Context) error {
	payload := new(RegistrationMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse registration payload"))
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	record, err := a.Lifecycle.Register(ctx.Context(), *payload)
	if err != nil {
		a.Logger.Error("register error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, NewAccountView(record))
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *AccountController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse refresh payload"))
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		a.Logger.Error("refresh error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	})
}

func (a *AccountController) Me(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	record, err := a.Repo.Accounts().GetByIdentifier(ctx.Context(), subject)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, NewAccountView(record))
}

func (a *AccountController) UpdateProfile(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ProfileUpdateMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse profile payload"))
	}

	record, err := a.Lifecycle.UpdateProfile(ctx.Context(), subject, *payload)
	if err != nil {
		a.Logger.Error("profile update error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, NewAccountView(record))
}

func (a *AccountController) ChangePassword(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ChangePasswordMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse password payload"))
	}

	if err := a.Lifecycle.ChangePassword(ctx.Context(), subject, *payload); err != nil {
		a.Logger.Error("change password error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: MsgPasswordChanged})
}

func (a *AccountController) Deactivate(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Lifecycle.Deactivate(ctx.Context(), subject); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: MsgAccountDeactivated})
}

func (a *AccountController) Reactivate(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Lifecycle.Reactivate(ctx.Context(), subject); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: MsgAccountReactivated})
}

func (a *AccountController) RequestDeletion(ctx router.Context) error {
	subject, err := a.subject(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Lifecycle.RequestDeletion(ctx.Context(), subject); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, MessageResponse{Message: MsgDeletionScheduled})
}

// subject pulls the authenticated principal that the gate middleware
// stored on the request context.
func (a *AccountController) subject(ctx router.Context) (string, error) {
	principal, ok := authgate.PrincipalFromContext(ctx.Context())
	if !ok || principal.Subject == "" {
		return "", goerrors.New("missing authenticated principal", goerrors.CategoryAuth).
			WithCode(http.StatusUnauthorized)
	}
	return principal.Subject, nil
}

// HandleError renders any error as an ErrorResponse, mapping categorized
// errors to their HTTP status and text code.
func (a *AccountController) HandleError(ctx router.Context, err error) error {
	status := http.StatusInternalServerError
	code := ""
	message := "Internal server error"

	var domainErr *goerrors.Error
	if goerrors.As(err, &domainErr) {
		status = statusForError(domainErr)
		code = domainErr.TextCode
		message = domainErr.Message
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT ERROR ======")
		fmt.Println(print.MaybePrettyJSON(ErrorResponse{Status: status, Code: code, Message: err.Error()}))
		fmt.Println("============================")
	}

	return ctx.JSON(status, ErrorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func statusForError(err *goerrors.Error) int {
	if err.Code > 0 {
		return err.Code
	}

	switch err.Category {
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
