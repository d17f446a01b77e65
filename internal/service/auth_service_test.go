package service

import (
	"context"
	"testing"

	"github.com/clehider/BazarMundoVictor/internal/config"
	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func newAuthService(t *testing.T) (AuthService, repository.UsuarioRepository) {
	t.Helper()
	repo := repository.NewUsuarioRepository(kvstore.NewMemory())
	cfg := &config.Config{JWTSecret: "secreto-de-prueba", JWTExpirationHours: 8}
	return NewAuthService(repo, cfg), repo
}

func crearAdmin(t *testing.T, svc AuthService) dto.UsuarioResponse {
	t.Helper()
	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email:    "admin@mundovictor.com",
		Nombre:   "Admin",
		Password: "contraseña-larga",
		Rol:      "admin",
	})
	require.NoError(t, err)
	return *resp
}

func TestLoginEmiteTokenConClaims(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin := crearAdmin(t, svc)

	resp, err := svc.Login(ctx, dto.LoginRequest{
		Email:    "admin@mundovictor.com",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, admin.ID, resp.User.ID)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("secreto-de-prueba"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, admin.ID, claims["user_id"])
	assert.Equal(t, "admin@mundovictor.com", claims["email"])
	assert.Equal(t, "admin", claims["rol"])
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	crearAdmin(t, svc)

	_, err := svc.Login(ctx, dto.LoginRequest{
		Email: "admin@mundovictor.com", Password: "incorrecta",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	_, err = svc.Login(ctx, dto.LoginRequest{
		Email: "nadie@mundovictor.com", Password: "contraseña-larga",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestLoginUsuarioInactivo(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin := crearAdmin(t, svc)

	inactivo := false
	_, err := svc.ActualizarUsuario(ctx, mustUUID(t, admin.ID), dto.ActualizarUsuarioRequest{Activo: &inactivo})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{
		Email: "admin@mundovictor.com", Password: "contraseña-larga",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestLoginActualizaLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAuthService(t)
	admin := crearAdmin(t, svc)

	_, err := svc.Login(ctx, dto.LoginRequest{
		Email: "admin@mundovictor.com", Password: "contraseña-larga",
	})
	require.NoError(t, err)

	u, err := repo.FindByID(ctx, mustUUID(t, admin.ID))
	require.NoError(t, err)
	assert.NotNil(t, u.LastLogin)
}

func TestCrearUsuarioEmailDuplicado(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	crearAdmin(t, svc)

	_, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Email:    "admin@mundovictor.com",
		Nombre:   "Otro",
		Password: "otra-contraseña",
		Rol:      "vendedor",
	})
	assert.ErrorIs(t, err, repository.ErrEmailDuplicado)
}

func TestActualizarUsuarioCambiaPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin := crearAdmin(t, svc)

	_, err := svc.ActualizarUsuario(ctx, mustUUID(t, admin.ID), dto.ActualizarUsuarioRequest{
		Password: "nueva-contraseña",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{
		Email: "admin@mundovictor.com", Password: "contraseña-larga",
	})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	resp, err := svc.Login(ctx, dto.LoginRequest{
		Email: "admin@mundovictor.com", Password: "nueva-contraseña",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}
