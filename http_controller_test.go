package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/goliatone/go-account"
	"github.com/goliatone/go-account/middleware/authgate"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// controllerContext overrides the mock methods the controller touches:
// Bind unmarshals the staged body, JSON captures the response.
type controllerContext struct {
	*router.MockContext
	reqCtx context.Context
	body   []byte

	jsonStatus int
	jsonBody   any
}

func newControllerContext(payload any) *controllerContext {
	ctx := &controllerContext{
		MockContext: router.NewMockContext(),
		reqCtx:      context.Background(),
	}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		ctx.body = body
	}

	return ctx
}

func (c *controllerContext) withPrincipal(subject string) *controllerContext {
	c.reqCtx = authgate.WithPrincipal(c.reqCtx, authgate.Principal{
		Subject: subject,
		Enabled: true,
	})
	return c
}

func (c *controllerContext) Context() context.Context { return c.reqCtx }

func (c *controllerContext) SetContext(ctx context.Context) { c.reqCtx = ctx }

func (c *controllerContext) Bind(i any) error {
	return json.Unmarshal(c.body, i)
}

func (c *controllerContext) JSON(status int, body any) error {
	c.jsonStatus = status
	c.jsonBody = body
	return nil
}

type controllerHarness struct {
	repo       account.RepositoryManager
	lifecycle  *account.Lifecycle
	controller *account.AccountController
}

func setupController(t *testing.T) *controllerHarness {
	t.Helper()

	repo, _ := setupRepoManager(t)
	lifecycle := newTestLifecycle(repo)

	tokens := newTestTokenService(t)
	provider := account.NewAccountProvider(repo.Accounts()).WithHasher(plainHasher{})
	auther := account.NewAuthenticator(provider, tokens)

	controller := account.NewAccountController(
		account.WithControllerLifecycle(lifecycle),
		account.WithControllerAuthenticator(auther),
		account.WithControllerRepo(repo),
	)

	return &controllerHarness{
		repo:       repo,
		lifecycle:  lifecycle,
		controller: controller,
	}
}

func (h *controllerHarness) register(t *testing.T, n int) (*account.Account, account.RegistrationMessage) {
	t.Helper()

	msg := validRegistration(n)
	record, err := h.lifecycle.Register(context.Background(), msg)
	require.NoError(t, err)
	return record, msg
}

func TestControllerRegister(t *testing.T) {
	h := setupController(t)

	ctx := newControllerContext(validRegistration(1))
	require.NoError(t, h.controller.Register(ctx))

	assert.Equal(t, http.StatusCreated, ctx.jsonStatus)

	view, ok := ctx.jsonBody.(account.AccountView)
	require.True(t, ok)
	assert.Equal(t, "jane.doe1@example.com", view.Email)
	assert.True(t, view.Enabled)
	assert.Equal(t, []string{account.RoleUser}, view.Roles)

	t.Run("duplicate email becomes an error response", func(t *testing.T) {
		ctx := newControllerContext(validRegistration(1))
		require.NoError(t, h.controller.Register(ctx))

		body, ok := ctx.jsonBody.(account.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, ctx.jsonStatus, body.Status)
		assert.Equal(t, "EMAIL_ALREADY_EXISTS", body.Code)
	})
}

func TestControllerLogin(t *testing.T) {
	h := setupController(t)
	_, msg := h.register(t, 1)

	ctx := newControllerContext(account.LoginRequest{
		Identifier: msg.Email,
		Password:   msg.Password,
	})

	require.NoError(t, h.controller.Login(ctx))
	assert.Equal(t, http.StatusOK, ctx.jsonStatus)

	resp, ok := ctx.jsonBody.(account.LoginResponse)
	require.True(t, ok)
	assert.Equal(t, account.TokenTypeBearer, resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	t.Run("bad credentials", func(t *testing.T) {
		ctx := newControllerContext(account.LoginRequest{
			Identifier: msg.Email,
			Password:   "Wrong!Passw0rd",
		})

		require.NoError(t, h.controller.Login(ctx))
		assert.Equal(t, http.StatusUnauthorized, ctx.jsonStatus)

		body, ok := ctx.jsonBody.(account.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "BAD_CREDENTIALS", body.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctx := newControllerContext(account.LoginRequest{})

		require.NoError(t, h.controller.Login(ctx))
		assert.Equal(t, http.StatusBadRequest, ctx.jsonStatus)
	})
}

func TestControllerRefresh(t *testing.T) {
	h := setupController(t)
	_, msg := h.register(t, 1)

	loginCtx := newControllerContext(account.LoginRequest{
		Identifier: msg.Email,
		Password:   msg.Password,
	})
	require.NoError(t, h.controller.Login(loginCtx))
	pair := loginCtx.jsonBody.(account.LoginResponse)

	ctx := newControllerContext(account.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, h.controller.Refresh(ctx))

	assert.Equal(t, http.StatusOK, ctx.jsonStatus)

	resp := ctx.jsonBody.(account.LoginResponse)
	assert.Equal(t, pair.RefreshToken, resp.RefreshToken, "refresh token is echoed unchanged")
	assert.NotEmpty(t, resp.AccessToken)

	t.Run("access token is rejected", func(t *testing.T) {
		ctx := newControllerContext(account.RefreshRequest{RefreshToken: pair.AccessToken})
		require.NoError(t, h.controller.Refresh(ctx))
		assert.Equal(t, http.StatusUnauthorized, ctx.jsonStatus)
	})
}

func TestControllerMe(t *testing.T) {
	h := setupController(t)
	record, msg := h.register(t, 1)

	ctx := newControllerContext(nil).withPrincipal(msg.Email)
	require.NoError(t, h.controller.Me(ctx))

	assert.Equal(t, http.StatusOK, ctx.jsonStatus)

	view := ctx.jsonBody.(account.AccountView)
	assert.Equal(t, record.ID.String(), view.ID)
	assert.Equal(t, msg.Email, view.Email)

	t.Run("without principal", func(t *testing.T) {
		ctx := newControllerContext(nil)
		require.NoError(t, h.controller.Me(ctx))
		assert.Equal(t, http.StatusUnauthorized, ctx.jsonStatus)
	})
}

func TestControllerUpdateProfile(t *testing.T) {
	h := setupController(t)
	_, msg := h.register(t, 1)

	ctx := newControllerContext(account.ProfileUpdateMessage{FirstName: "Janet"}).
		withPrincipal(msg.Email)

	require.NoError(t, h.controller.UpdateProfile(ctx))
	assert.Equal(t, http.StatusOK, ctx.jsonStatus)

	view := ctx.jsonBody.(account.AccountView)
	assert.Equal(t, "Janet", view.FirstName)
	assert.Equal(t, "Doe", view.LastName)
}

func TestControllerChangePassword(t *testing.T) {
	h := setupController(t)
	_, msg := h.register(t, 1)

	ctx := newControllerContext(account.ChangePasswordMessage{
		CurrentPassword: msg.Password,
		NewPassword:     "An0ther!Passw0rd",
		ConfirmPassword: "An0ther!Passw0rd",
	}).withPrincipal(msg.Email)

	require.NoError(t, h.controller.ChangePassword(ctx))
	assert.Equal(t, http.StatusOK, ctx.jsonStatus)
	assert.Equal(t, account.MessageResponse{Message: account.MsgPasswordChanged}, ctx.jsonBody)
}

func TestControllerActivationEndpoints(t *testing.T) {
	h := setupController(t)
	_, msg := h.register(t, 1)

	deactivate := newControllerContext(nil).withPrincipal(msg.Email)
	require.NoError(t, h.controller.Deactivate(deactivate))
	assert.Equal(t, http.StatusOK, deactivate.jsonStatus)
	assert.Equal(t, account.MessageResponse{Message: account.MsgAccountDeactivated}, deactivate.jsonBody)

	again := newControllerContext(nil).withPrincipal(msg.Email)
	require.NoError(t, h.controller.Deactivate(again))
	body := again.jsonBody.(account.ErrorResponse)
	assert.Equal(t, "ACCOUNT_ALREADY_DEACTIVATED", body.Code)

	reactivate := newControllerContext(nil).withPrincipal(msg.Email)
	require.NoError(t, h.controller.Reactivate(reactivate))
	assert.Equal(t, account.MessageResponse{Message: account.MsgAccountReactivated}, reactivate.jsonBody)
}

func TestControllerRequestDeletion(t *testing.T) {
	h := setupController(t)
	record, msg := h.register(t, 1)

	ctx := newControllerContext(nil).withPrincipal(msg.Email)
	require.NoError(t, h.controller.RequestDeletion(ctx))

	assert.Equal(t, http.StatusAccepted, ctx.jsonStatus)
	assert.Equal(t, account.MessageResponse{Message: account.MsgDeletionScheduled}, ctx.jsonBody)

	loaded, err := h.repo.Accounts().GetByIdentifier(context.Background(), record.ID.String())
	require.NoError(t, err)
	assert.True(t, loaded.MarkedForDeletion)
}
